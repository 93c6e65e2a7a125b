package format

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// GenerateSKU builds an identifier like "MIL-3FA2C1" from a product name:
// the first three alphanumerics of the name, upper-cased and padded with X,
// followed by six random hex characters.
func GenerateSKU(name string) string {
	var prefix []rune
	for _, r := range strings.ToUpper(name) {
		if len(prefix) == 3 {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			prefix = append(prefix, r)
		}
	}
	for len(prefix) < 3 {
		prefix = append(prefix, 'X')
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return string(prefix) + "-" + strings.ToUpper(suffix)
}
