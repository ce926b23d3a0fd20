package document

import "errors"

// Error kinds surfaced by store implementations. Repositories classify
// backend-native failures into exactly one of these before re-raising.
var (
	// ErrNotFound: point lookup or replace target does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict: create collided with an existing id in the partition.
	ErrConflict = errors.New("document already exists")
	// ErrPreconditionFailed: the supplied concurrency tag is stale.
	ErrPreconditionFailed = errors.New("etag mismatch")
	// ErrBadRequest: malformed query or continuation token.
	ErrBadRequest = errors.New("malformed query")
	// ErrThrottled: the backend rate-limited the request. The store does
	// not retry; backoff is the caller's policy.
	ErrThrottled = errors.New("request throttled by store")
)

// IsNotFound reports whether err is the not-found kind.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is the duplicate-create kind.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsPreconditionFailed reports whether err is the stale-etag kind.
func IsPreconditionFailed(err error) bool { return errors.Is(err, ErrPreconditionFailed) }

// IsBadRequest reports whether err is the malformed-query kind.
func IsBadRequest(err error) bool { return errors.Is(err, ErrBadRequest) }

// IsThrottled reports whether err is the rate-limited kind.
func IsThrottled(err error) bool { return errors.Is(err, ErrThrottled) }
