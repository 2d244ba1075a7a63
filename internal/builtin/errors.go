package builtin

import "mint/internal/errors"

func typeMismatch(message string) error {
	return errors.NewTypeMismatch(message, errors.SourceLocation{})
}
