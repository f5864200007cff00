// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	"github.com/allisson/inspecta/internal/access/session"
	"github.com/allisson/inspecta/internal/app"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(ctx context.Context, container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// buildUser creates the user a command acts for from its flags.
func buildUser(id string, roles, permissions []string) (*accessDomain.CurrentUser, error) {
	if id == "" {
		return nil, fmt.Errorf("user id is required")
	}
	user, err := accessDomain.NewCurrentUser(id, roles, permissions)
	if err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}
	return user, nil
}

// buildSession resolves the session a command evaluates for. Without a user id, roles
// or permissions the session is anonymous.
func buildSession(id string, roles, permissions []string) (*session.Session, error) {
	if id == "" && len(roles) == 0 && len(permissions) == 0 {
		s := session.New()
		s.Clear()
		return s, nil
	}
	user, err := buildUser(id, roles, permissions)
	if err != nil {
		return nil, err
	}
	return session.NewAuthenticated(user), nil
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(writer io.Writer, v any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to output JSON: %w", err)
	}
	return nil
}

// allowedLabel renders a decision for text output.
func allowedLabel(allowed bool) string {
	if allowed {
		return "ALLOWED"
	}
	return "DENIED"
}
