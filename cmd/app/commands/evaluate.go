package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	accessUseCase "github.com/allisson/inspecta/internal/access/usecase"
)

// evaluateOutput is the JSON shape of a decision.
type evaluateOutput struct {
	User        string   `json:"user,omitempty"`
	Session     string   `json:"session"`
	Requirement string   `json:"requirement"`
	Kind        string   `json:"kind"`
	Allowed     bool     `json:"allowed"`
	Outcome     string   `json:"outcome"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// RunEvaluate decides whether a user built from flags satisfies a JSON requirement.
// An empty user evaluates for an anonymous session. A denial is reported in the
// output, not as an error.
func RunEvaluate(
	ctx context.Context,
	guardUseCase accessUseCase.GuardUseCase,
	writer io.Writer,
	userID string,
	roles, permissions []string,
	requirementJSON string,
	format string,
) error {
	sess, err := buildSession(userID, roles, permissions)
	if err != nil {
		return err
	}

	var requirement accessDomain.Requirement
	if err := json.Unmarshal([]byte(requirementJSON), &requirement); err != nil {
		return fmt.Errorf("invalid requirement: %w", err)
	}

	user, authenticated := sess.Current()
	decision := guardUseCase.Evaluate(ctx, user, requirement)

	if format == "json" {
		output := evaluateOutput{
			Session:     string(sess.Status()),
			Requirement: requirement.String(),
			Kind:        string(decision.Kind),
			Allowed:     decision.Allowed,
			Outcome:     string(sess.Outcome(requirement)),
			Roles:       user.Roles(),
			Permissions: user.PermissionStrings(),
		}
		if authenticated {
			output.User = user.ID
		}
		return writeJSON(writer, output)
	}

	_, _ = fmt.Fprintf(writer, "%s: %s\n", allowedLabel(decision.Allowed), requirement.String())
	return nil
}
