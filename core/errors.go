package core

import (
	"errors"
)

// ErrNotFound marks a record that the CRM reports as missing
var ErrNotFound = errors.New("not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
