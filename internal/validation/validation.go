// Package validation holds the boundary checks that run before any mutation:
// wallet address canonicalization, username rules, and content sanitization.
package validation

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/peerwave/backend/internal/apperr"
)

const (
	// Content caps match the stored column sizes.
	MaxPostContent    = 1000
	MaxCommentContent = 500
	MaxBio            = 500

	MinUsername = 3
	MaxUsername = 50
)

var (
	walletRe   = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

	// StrictPolicy strips all markup; stored content is plain text with HTML
	// entities escaped.
	sanitizer = bluemonday.StrictPolicy()
)

// WalletAddress validates an Ethereum-style address and canonicalizes it to
// lowercase. All wallet comparisons in the system happen on canonical form.
func WalletAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !walletRe.MatchString(address) {
		return "", apperr.Validation("invalid wallet address")
	}
	return strings.ToLower(address), nil
}

// Username enforces length and character rules.
func Username(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", apperr.Validation("username is required")
	}
	if len(username) < MinUsername {
		return "", apperr.Validation("username must be at least 3 characters")
	}
	if len(username) > MaxUsername {
		return "", apperr.Validation("username cannot exceed 50 characters")
	}
	if !usernameRe.MatchString(username) {
		return "", apperr.Validation("username can only contain letters, numbers, and underscores")
	}
	return username, nil
}

// Content trims, escapes, and caps free-text input for storage. Empty input
// after trimming is rejected. The cap applies to the escaped form, since
// entity escaping expands the text and the stored columns are sized for the
// escaped bytes.
func Content(input string, maxLength int) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", apperr.Validation("content is required")
	}
	return capContent(sanitizer.Sanitize(input), maxLength), nil
}

// OptionalContent is Content for fields that may be empty, such as bios.
func OptionalContent(input string, maxLength int) string {
	return capContent(sanitizer.Sanitize(strings.TrimSpace(input)), maxLength)
}

func capContent(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	s = s[:maxLength]
	// Drop a trailing partial entity left by the cut.
	if i := strings.LastIndexByte(s, '&'); i >= 0 && !strings.ContainsRune(s[i:], ';') {
		s = s[:i]
	}
	return s
}

// MediaType checks the declared media kind of an attachment.
func MediaType(mediaType string) (string, error) {
	switch mediaType {
	case "", "image", "video":
		return mediaType, nil
	default:
		return "", apperr.Validation("media type must be image or video")
	}
}
