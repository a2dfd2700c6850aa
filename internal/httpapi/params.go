package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// int64URLParam parses a chi URL parameter as an int64, returning 0 on a
// malformed or missing value — callers that require a valid id check it
// against the store and get a NotFound, same as an id that simply doesn't
// exist.
func int64URLParam(r *http.Request, name string) int64 {
	v, _ := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return v
}
