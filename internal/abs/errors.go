package abs

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrConnectivity marks failures to reach a server or to list its catalog:
// transport errors and non-200 responses of the list endpoints. Callers
// abort the reconciliation or batch when they see it.
var ErrConnectivity = errors.New("server unreachable")

// StatusError is a non-200 response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether repeating the request may succeed: server
// errors, 408 and 429. Other 4xx responses will not change on retry.
func (e *StatusError) Temporary() bool {
	switch {
	case e.StatusCode >= 500:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

// IsPermanent reports whether err is a StatusError that retrying will not fix.
func IsPermanent(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && !se.Temporary()
}
