package repositories

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// isDuplicate reports whether err is a uniqueness violation. Dialectors opened
// with TranslateError return gorm.ErrDuplicatedKey; the message checks cover
// connections opened without it.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
