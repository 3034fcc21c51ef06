package errors

import (
	"strings"
	"unicode"
)

// ValidateURL checks that a data URL can be downloaded over HTTP.
// The scheme must be http or https.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}

	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return New(ErrCodeInvalidURL, "unsupported URL scheme: %q (want http or https)", rawURL)
	}

	return nil
}

// ValidateFilename validates a download filename derived from a remote URL.
// It must be a plain basename so that writing it under the destination
// directory can never escape that directory.
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == "/" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidPath, "filename too long (max 255 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	if name == ".." {
		return New(ErrCodeInvalidPath, "filename cannot be a parent directory reference")
	}

	return nil
}
