package nominatim

import "github.com/pkg/errors"

// Transient failures: the service is throttling or temporarily refusing.
// They must never be cached as negative results; the query is retried in
// a later pass. Everything else is permanent for the session.
var (
	ErrThrottled = errors.New("geocoding service is throttling")
	ErrForbidden = errors.New("geocoding service refused the request")
)

// IsTransient reports whether the lookup may succeed later.
func IsTransient(err error) bool {
	return errors.Is(err, ErrThrottled) || errors.Is(err, ErrForbidden)
}
