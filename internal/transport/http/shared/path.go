package shared

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PathUUID reads a UUID route parameter and returns it in canonical form. A
// malformed value is answered with a validation error naming the parameter.
func PathUUID(w http.ResponseWriter, r *http.Request, name, requestID string) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		FailValidation(w, requestID, []ValidationIssue{{Field: name, Reason: "must be a valid UUID"}})
		return "", false
	}
	return id.String(), true
}
