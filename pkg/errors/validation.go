package errors

import (
	"strings"
	"unicode"
)

// ValidateSnapshotID validates a snapshot identifier taken from a listing.
// Snapshot ids are joined onto a storage location, so anything that could
// escape that location is rejected.
//
// Validation rules:
//   - No empty ids
//   - Maximum length of 256 characters
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - No hidden files (leading dot)
func ValidateSnapshotID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPath, "snapshot id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidPath, "snapshot id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "snapshot id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidPath, "snapshot id cannot contain path separators: %q", id)
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidPath, "snapshot id cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(id, ".") {
		return New(ErrCodeInvalidPath, "snapshot id cannot be a hidden file")
	}

	return nil
}

// ValidatePrefix validates a filename prefix filter. An empty prefix is valid
// and matches every snapshot.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	for _, r := range prefix {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "filter prefix contains invalid characters")
		}
	}
	if strings.ContainsAny(prefix, "/\\") {
		return New(ErrCodeInvalidInput, "filter prefix cannot contain path separators")
	}
	return nil
}

// ValidateURL validates a location URL for a remote snapshot store or name
// resolver. Only the schemes edgepersist understands are accepted.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, scheme := range []string{"s3://", "redis://", "rediss://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use s3, redis or rediss scheme: %q", rawURL)
}
