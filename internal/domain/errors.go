package domain

import "errors"

// Failure classes surfaced by the fail-closed transforms. Callers match with
// errors.Is to pick an appropriate retry affordance; the orientation
// corrector never returns any of these (it degrades to its input instead).
var (
	ErrDecodeFailure      = errors.New("image decode failure")
	ErrEncodeFailure      = errors.New("image encode failure")
	ErrSurfaceUnavailable = errors.New("rendering surface unavailable")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
)
