package marker

import "errors"

// ErrNotFound is returned by operations addressing a marker id that is
// unknown or has already been deleted. Callers at a package boundary wrap
// this with fresherr.KindMarkerNotFound.
var ErrNotFound = errors.New("marker: not found")
