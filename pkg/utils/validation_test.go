package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "flowbuilder/pkg/errors"
)

type sample struct {
	FlowID string `json:"flowId" validate:"required,uuid"`
	Kind   string `json:"kind" validate:"required,max=5"`
	Note   string `validate:"omitempty,oneof=a b"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   sample
		wantMsg string
	}{
		{
			name:  "valid",
			input: sample{FlowID: "3f2b8c1e-6a4d-4f7e-9b2a-1c5d8e9f0a1b", Kind: "text"},
		},
		{
			name:    "missing flow id",
			input:   sample{Kind: "text"},
			wantMsg: "flowId is required",
		},
		{
			name:    "bad uuid",
			input:   sample{FlowID: "nope", Kind: "text"},
			wantMsg: "flowId must be a valid UUID",
		},
		{
			name:    "too long",
			input:   sample{FlowID: "3f2b8c1e-6a4d-4f7e-9b2a-1c5d8e9f0a1b", Kind: "textNode"},
			wantMsg: "kind must be at most 5 characters",
		},
		{
			name:    "field without json tag",
			input:   sample{FlowID: "3f2b8c1e-6a4d-4f7e-9b2a-1c5d8e9f0a1b", Kind: "text", Note: "c"},
			wantMsg: "Note must be one of: a b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
