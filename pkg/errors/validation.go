package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateCoordinatePart validates one field of an artifact coordinate
// (groupId, artifactId or version) for safety and correctness.
//
// The validation rules are intentionally conservative because the parts end
// up in repository URLs and in synthetic build descriptors:
//   - No empty values
//   - No control characters or whitespace
//   - No path traversal sequences (.., /, \)
//   - No colons (the coordinate separator)
//   - No XML metacharacters
//   - Maximum length of 256 characters
func ValidateCoordinatePart(field, value string) error {
	if value == "" {
		return New(ErrCodeInvalidCoordinate, "%s cannot be empty", field)
	}

	if len(value) > 256 {
		return New(ErrCodeInvalidCoordinate, "%s too long (max 256 characters)", field)
	}

	for _, r := range value {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidCoordinate, "%s contains whitespace or control characters", field)
		}
	}

	dangerousPatterns := []string{
		"..", // Parent directory
		"/",  // Path separator
		"\\", // Backslash (Windows path)
		":",  // Coordinate separator
		"<",  // XML
		">",  // XML
		"&",  // XML entity
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return New(ErrCodeInvalidCoordinate, "%s contains invalid characters: %q", field, pattern)
		}
	}

	return nil
}

// groupIDRegex matches dotted Maven group identifiers.
var groupIDRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]+(\.[A-Za-z0-9_\-]+)*$`)

// ValidateGroupID validates a Maven groupId in reverse-domain notation.
func ValidateGroupID(group string) error {
	if err := ValidateCoordinatePart("groupId", group); err != nil {
		return err
	}
	if !groupIDRegex.MatchString(group) {
		return New(ErrCodeInvalidCoordinate, "invalid groupId: %q", group)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidURL, "URL must use http or https scheme")
	}

	return nil
}
