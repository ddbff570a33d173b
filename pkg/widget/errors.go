package widget

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const invalidJSONCode = "INVALID_JSON"

var (
	// ErrInvalidJSON marks raw values that failed to parse.
	ErrInvalidJSON = errors.New("widget: invalid JSON")
	// ErrViewInactive is returned for edits that belong to the other view.
	ErrViewInactive = errors.New("widget: operation not available in the current view")
	// ErrRowOutOfRange is returned for row indexes outside the rows list.
	ErrRowOutOfRange = errors.New("widget: row index out of range")
	// ErrNotInitialized is returned before Init succeeded.
	ErrNotInitialized = errors.New("widget: instance not initialized")
	// ErrDestroyed is returned after Destroy.
	ErrDestroyed = errors.New("widget: instance destroyed")
)

func invalidJSON(fieldName string, cause error) error {
	return goerrors.Wrap(fmt.Errorf("%w: %v", ErrInvalidJSON, cause), goerrors.CategoryValidation,
		fmt.Sprintf("field %q holds invalid JSON", fieldName)).
		WithTextCode(invalidJSONCode)
}

// IsInvalidJSON reports whether err came from a raw value that failed to
// parse. Other validation errors do not match.
func IsInvalidJSON(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidJSON) {
		return true
	}
	var coded *goerrors.Error
	return errors.As(err, &coded) && coded.TextCode == invalidJSONCode
}
