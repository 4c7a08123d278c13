// Package persistence contains helpers shared by repository implementations.
package persistence

import (
	"encoding/base64"
	"fmt"
	"strings"

	"example.com/riserite/internal/domain"
)

// EncodeCursor serialises the cursor to a URL safe token.
func EncodeCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	// date first: user ids may contain the separator, dates never do.
	raw := fmt.Sprintf("%s|%s", c.Date, c.UserID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses the encoded cursor token. An empty token yields nil.
func DecodeCursor(token string) (*domain.Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: invalid cursor format", domain.ErrInvalidCursor)
	}
	return &domain.Cursor{Date: parts[0], UserID: parts[1]}, nil
}
