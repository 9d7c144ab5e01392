package handlers

import (
	"net/http"

	apperrors "github.com/worklane/worklane-cli/internal/errors"
)

// httpErrorResponder writes error responses for this package. It points
// at the shared envelope writer until the server package injects its
// centralized handler, so handler tests work without a server.
var httpErrorResponder = defaultResponder

func defaultResponder(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

// SetHTTPErrorResponder injects the server's centralized error handler.
// A nil responder restores the default.
func SetHTTPErrorResponder(responder func(http.ResponseWriter, *http.Request, error)) {
	if responder == nil {
		httpErrorResponder = defaultResponder
		return
	}
	httpErrorResponder = responder
}

// ResetHTTPErrorResponder restores the default responder between tests.
func ResetHTTPErrorResponder() {
	httpErrorResponder = defaultResponder
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}
