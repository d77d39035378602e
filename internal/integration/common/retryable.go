package common

import (
	"errors"
	"net/http"

	pkgHTTP "github.com/mshayganfar/starting-ragchatbot-codebase/pkg/http"
)

// RetryableHTTP reports whether an outbound call failed in a way worth
// retrying. Rate limits and server-side errors are transient; 4xx responses
// (bad request, auth) will not improve on a second attempt.
func RetryableHTTP(err error) bool {
	var httpErr *pkgHTTP.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	var netErr *pkgHTTP.NetworkError
	return errors.As(err, &netErr)
}
