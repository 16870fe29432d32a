package aggregates

import (
	"sync"
	"time"

	"flowbuilder/domain/config"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/registry"
	"flowbuilder/domain/core/selection"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/domain/events"
)

// Session is one editing session: a flow and the node selected in it.
type Session struct {
	flow      *Flow
	selection *selection.Controller

	mu     sync.Mutex
	events []events.DomainEvent
}

// NewSession opens a session over a new, empty flow
func NewSession(name string, reg *registry.Registry, cfg *config.DomainConfig) (*Session, error) {
	flow, err := NewFlow(name, reg, cfg)
	if err != nil {
		return nil, err
	}
	return &Session{
		flow:      flow,
		selection: selection.NewController(),
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the id of the session's flow
func (s *Session) ID() valueobjects.FlowID {
	return s.flow.ID()
}

// Name returns the flow name
func (s *Session) Name() string {
	return s.flow.Name()
}

// Flow returns the flow owned by the session
func (s *Session) Flow() *Flow {
	return s.flow
}

// Selection returns the session's selection controller
func (s *Session) Selection() *selection.Controller {
	return s.selection
}

// SelectNode makes nodeID the active node. The id is not checked against the flow.
func (s *Session) SelectNode(nodeID valueobjects.NodeID) {
	s.selection.Select(nodeID)
	s.addEvent(events.NewNodeSelected(s.flow.ID(), s.flow.Version(), nodeID, time.Now()))
}

// ClearSelection returns to the node palette
func (s *Session) ClearSelection() {
	if s.selection.Clear() {
		s.addEvent(events.NewSelectionCleared(s.flow.ID(), s.flow.Version(), time.Now()))
	}
}

// SelectedNode returns the node the editing view is bound to
func (s *Session) SelectedNode() (*entities.Node, bool) {
	nodeID, ok := s.selection.Current()
	if !ok {
		return nil, false
	}
	node, err := s.flow.GetNode(nodeID)
	if err != nil {
		return nil, false
	}
	return node, true
}

// Panel reports which side panel the presentation layer shows
func (s *Session) Panel() selection.Panel {
	return s.selection.Panel()
}

// RemoveNode removes a node and its edges, and drops the selection if it
// pointed at that node.
func (s *Session) RemoveNode(nodeID valueobjects.NodeID) ([]valueobjects.EdgeID, error) {
	removed, err := s.flow.RemoveNode(nodeID)
	if err != nil {
		return nil, err
	}
	if s.selection.ClearIf(nodeID) {
		s.addEvent(events.NewSelectionCleared(s.flow.ID(), s.flow.Version(), time.Now()))
	}
	return removed, nil
}

// Close ends the session
func (s *Session) Close(reason string) {
	s.selection.Clear()
	s.flow.Close(reason)
}

// GetUncommittedEvents returns flow events followed by selection events
func (s *Session) GetUncommittedEvents() []events.DomainEvent {
	all := s.flow.GetUncommittedEvents()

	s.mu.Lock()
	defer s.mu.Unlock()
	return append(all, s.events...)
}

// DrainEvents returns flow and selection events and marks them committed
func (s *Session) DrainEvents() []events.DomainEvent {
	all := s.flow.DrainEvents()

	s.mu.Lock()
	defer s.mu.Unlock()
	all = append(all, s.events...)
	s.events = []events.DomainEvent{}
	return all
}

func (s *Session) addEvent(event events.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}
