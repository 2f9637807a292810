package index

import "errors"

// Error kinds returned by the index. Concrete failures wrap one of these so
// callers can branch with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfRange      = errors.New("out of range")
	ErrNotFound        = errors.New("document not found")
)

// ErrDuplicateID is returned when a document id is already taken. It also
// matches ErrInvalidArgument.
var ErrDuplicateID = &kindError{kind: ErrInvalidArgument, msg: "document id already exists"}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}
