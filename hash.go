package queryfarmer

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint derives the cache key for a (text, source, target) triple.
// It is a 64-bit content hash; collisions are not defended against.
func Fingerprint(text, sourceLang, targetLang string) string {
	d := xxhash.New()
	_, _ = d.WriteString(text)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(sourceLang)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(targetLang)
	return fmt.Sprintf("%016x", d.Sum64())
}
