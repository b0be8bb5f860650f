package workdrive

import (
	"context"
	"errors"
	"strings"
)

// TokenProvider supplies a bearer access token on demand. The client asks
// for a fresh token before every request and never caches the result, so
// providers are free to rotate tokens between calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider backed by a fixed access token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(t)) == "" {
		return "", errors.New("workdrive: static token is empty")
	}
	return string(t), nil
}
