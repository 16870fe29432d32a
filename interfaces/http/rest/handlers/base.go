package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	pkgerrors "flowbuilder/pkg/errors"
	"flowbuilder/pkg/utils"
)

const maxBodyBytes = 1 << 20

// responder carries what every handler needs to answer a request
type responder struct {
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// decode reads a JSON body into dst and validates it
func (h responder) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.NewValidationError("Request body is required")
		}
		return pkgerrors.NewValidationError("Invalid request body: " + err.Error())
	}

	return utils.ValidateStruct(dst)
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	h.errors.Handle(w, r, err)
}
