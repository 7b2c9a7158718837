package handlers

import (
	"errors"
	"net/http"

	"github.com/kdiawara/sika/httpx"
	"github.com/kdiawara/sika/internal/services"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses and
// the response envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	var nf *services.NotFoundError
	var fe *services.ForbiddenError
	var ce *services.ConflictError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusBadRequest, ve.Message, "validation_failed")
	case errors.As(err, &nf):
		httpx.JSONError(w, http.StatusNotFound, nf.Error(), "not_found")
	case errors.As(err, &fe):
		httpx.JSONError(w, http.StatusForbidden, fe.Message, "forbidden")
	case errors.As(err, &ce):
		httpx.JSONError(w, http.StatusConflict, ce.Message, "conflict")
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal error", "internal_error")
	}
}
