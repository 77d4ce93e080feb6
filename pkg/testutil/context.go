package testutil

import (
	"net/http"

	id "estudios/pkg/domain"
	"estudios/pkg/requestcontext"
)

// WithCaller adds an authenticated caller to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithCaller(req *http.Request, caller id.Caller) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}
