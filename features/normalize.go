package features

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeLabel puts a submitted label in NFC form so that accented
// labels match the tables whichever way the browser composed them.
func normalizeLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
