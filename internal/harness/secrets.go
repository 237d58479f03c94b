package harness

import "strings"

const (
	secretPrefix = "enc{"
	secretSuffix = "}"
)

// Encrypt wraps text in the enc{...} marker. It is not cryptography.
func Encrypt(text string) string {
	return secretPrefix + text + secretSuffix
}

// Decrypt strips the enc{...} marker. Text without the full marker is
// returned unchanged.
func Decrypt(text string) string {
	if len(text) < len(secretPrefix)+len(secretSuffix) ||
		!strings.HasPrefix(text, secretPrefix) ||
		!strings.HasSuffix(text, secretSuffix) {
		return text
	}
	return text[len(secretPrefix) : len(text)-len(secretSuffix)]
}

// Encrypt is the package-level Encrypt.
func (h *Harness) Encrypt(text string) string { return Encrypt(text) }

// Decrypt is the package-level Decrypt.
func (h *Harness) Decrypt(text string) string { return Decrypt(text) }
