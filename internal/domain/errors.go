package domain

import "errors"

var (
	ErrEmptyMessage      = errors.New("empty message")
	ErrMessageTooLong    = errors.New("message too long (max 1000 characters)")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNoURLs            = errors.New("no URLs provided")
	ErrEmptyReply        = errors.New("model returned an empty reply")
	ErrInvalidTransition = errors.New("invalid call state transition")
)

// Kind classifies a failure for the caller-facing boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindCollaborator
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindCollaborator:
		return "collaborator"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error carries a Kind alongside the underlying cause. Op names the failing
// operation for logs; Error() only exposes the cause so it is safe to show
// to callers.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func NotFound(op string, err error) error {
	return &Error{Kind: KindNotFound, Op: op, Err: err}
}

func Collaborator(op string, err error) error {
	return &Error{Kind: KindCollaborator, Op: op, Err: err}
}

func Internal(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// KindOf reports the Kind of err. Errors that were never classified are
// treated as internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
