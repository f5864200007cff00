package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/allisson/inspecta/internal/access/token"
)

// TokenConfig holds the signing settings of RunIssueToken.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// tokenOutput is the JSON shape of an issued token.
type tokenOutput struct {
	Token       string    `json:"token"`
	Subject     string    `json:"subject"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RunIssueToken signs an access token for local development and manual testing.
// Production tokens come from the authentication backend.
func RunIssueToken(
	writer io.Writer,
	cfg TokenConfig,
	userID string,
	roles, permissions []string,
	format string,
) error {
	if cfg.Secret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required to issue tokens")
	}
	if cfg.TTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}

	user, err := buildUser(userID, roles, permissions)
	if err != nil {
		return err
	}

	raw, err := token.Issue([]byte(cfg.Secret), cfg.Issuer, user, cfg.TTL)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, tokenOutput{
			Token:       raw,
			Subject:     user.ID,
			Roles:       user.Roles(),
			Permissions: user.PermissionStrings(),
			ExpiresAt:   time.Now().UTC().Add(cfg.TTL).Truncate(time.Second),
		})
	}

	_, _ = fmt.Fprintln(writer, raw)
	return nil
}
