package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dlawede/fantasy-roster/internal/domain/user"
	"github.com/dlawede/fantasy-roster/internal/usecase"
)

// StaticVerifier resolves bearer tokens from a fixed token table loaded at
// startup. Entries use the form "token:userID:username" with an optional
// ":admin" suffix.
type StaticVerifier struct {
	byToken map[string]user.Principal
}

func NewStaticVerifier(entries []string) (*StaticVerifier, error) {
	byToken := make(map[string]user.Principal, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("invalid auth token entry %q: want token:userID:username[:admin]", entry)
		}
		token := strings.TrimSpace(parts[0])
		userID := strings.TrimSpace(parts[1])
		username := strings.TrimSpace(parts[2])
		if token == "" || userID == "" || username == "" {
			return nil, fmt.Errorf("invalid auth token entry %q: empty field", entry)
		}
		if _, exists := byToken[token]; exists {
			return nil, fmt.Errorf("duplicate auth token entry %q", entry)
		}

		admin := len(parts) == 4 && strings.EqualFold(strings.TrimSpace(parts[3]), "admin")
		byToken[token] = user.Principal{
			UserID:   userID,
			Username: username,
			Admin:    admin,
		}
	}

	return &StaticVerifier{byToken: byToken}, nil
}

func (v *StaticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := v.byToken[strings.TrimSpace(token)]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown access token", usecase.ErrUnauthorized)
	}
	return principal, nil
}
