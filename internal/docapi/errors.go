package docapi

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnauthorized means the API rejected the token, or the doc is not
// visible to it.
var ErrUnauthorized = errors.New("document api: token rejected")

// ErrNotFound means the doc or table id does not resolve.
var ErrNotFound = errors.New("document api: not found")

// StatusError is any other non-success response, kept intact so the UI can
// show the real HTTP status.
type StatusError struct {
	Path   string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("document api: GET %s returned %s", e.Path, e.Status)
}
