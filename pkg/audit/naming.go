package audit

import (
	"regexp"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// DefaultMaxNameLength caps skill names.
const DefaultMaxNameLength = 64

var (
	// ErrInvalidName is returned for names outside lowercase-hyphenated form.
	ErrInvalidName = errors.New("invalid skill name")
	// ErrNameTooLong is returned for names over the length cap.
	ErrNameTooLong = errors.New("skill name too long")

	namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// ValidateName checks a skill name against the naming convention:
// lowercase letters, digits and single hyphens, at most maxLength characters.
// A non-positive maxLength uses DefaultMaxNameLength.
func ValidateName(name string, maxLength int) error {
	if maxLength <= 0 {
		maxLength = DefaultMaxNameLength
	}
	if n := utf8.RuneCountInString(name); n > maxLength {
		return errors.Wrapf(ErrNameTooLong, "%q is %d characters, limit is %d", name, n, maxLength)
	}
	if !namePattern.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q must be lowercase letters, digits and single hyphens", name)
	}
	return nil
}
