package catalog

import "errors"

// ErrStorageUnavailable marks a storage failure that survived the single
// retry after schema re-initialization. Reads never return it; they degrade
// to empty results instead.
var ErrStorageUnavailable = errors.New("storage unavailable")
