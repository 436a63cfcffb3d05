package fontcache

import "errors"

// ErrNegativeCapacity is returned by NewWithOptions when MaxEntries < 0.
var ErrNegativeCapacity = errors.New("fontcache: negative capacity")
