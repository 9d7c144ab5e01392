package server

import (
	"net/http"

	apperrors "github.com/worklane/worklane-cli/internal/errors"
)

// HandleError writes err as a JSON error envelope. The server and the
// handler hooks share this one path so every failure response has the
// same shape and carries a request id.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}
