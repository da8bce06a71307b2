package classify

import "errors"

// ErrUnknownMode indicates a filter mode name that does not resolve.
var ErrUnknownMode = errors.New("unknown filter mode")
