package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// Storage-level outcomes the services branch on. GORM errors are translated
// at the repository boundary so callers never import gorm.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
