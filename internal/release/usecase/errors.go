package usecase

import "errors"

var (
	ErrAssetNotFound  = errors.New("asset not found in release")
	ErrDuplicateAsset = errors.New("asset name appears more than once")
	ErrNoPackages     = errors.New("no packages given")
)

// UsecaseError pairs a user-facing message with the underlying failure.
type UsecaseError struct {
	Message string
	Err     error
}

func (e UsecaseError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ":\n" + e.Err.Error()
}

func (e UsecaseError) Unwrap() error {
	return e.Err
}

// NewUsecaseError creates a typed error wrapping err.
func NewUsecaseError(message string, err error) error {
	return UsecaseError{Message: message, Err: err}
}
