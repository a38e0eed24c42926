package api

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// listCursor marks the last workout returned on a page.
type listCursor struct {
	CreatedAt time.Time
	ID        string
}

// encodeCursor serialises the cursor to a string token.
func encodeCursor(c *listCursor) string {
	if c == nil {
		return ""
	}
	raw := fmt.Sprintf("%s|%s", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// decodeCursor parses the encoded cursor token.
func decodeCursor(token string) (*listCursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, err
	}
	return &listCursor{CreatedAt: ts, ID: parts[1]}, nil
}
