package wikimcp

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxFilenameLength bounds the length of an encoded filename.
const MaxFilenameLength = 200

// room left for "_" and 16 hex digits of hash
const hashSuffixLength = 17

// EncodeFilename maps a title to a filesystem safe name stem.
//
// Accents are stripped, the result is lower-cased and everything but
// ASCII letters, digits, '-' and '_' becomes '_'. Titles that differ
// only in such characters encode identically. Names longer than
// MaxFilenameLength are truncated and suffixed with a hash of the
// original title.
func EncodeFilename(title string) string {
	safe := safeName(stripMarks(title))
	if len(safe) <= MaxFilenameLength {
		return safe
	}
	return fmt.Sprintf("%s_%016x",
		safe[:MaxFilenameLength-hashSuffixLength], xxhash.Sum64String(title))
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	rv, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return rv
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.ToLower(s))
}
