package internal

import (
	"crypto/md5"
	"encoding/hex"
	"unicode"
)

// Version is the current release version.
const Version = "0.9.0"

// MediaID derives a stable identifier for cached media belonging to a word.
// Format: md5(key)[:16]
func MediaID(key string) string {
	hash := md5.Sum([]byte(key))
	return hex.EncodeToString(hash[:])[:16]
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}
