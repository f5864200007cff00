package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	accessUseCase "github.com/allisson/inspecta/internal/access/usecase"
)

// routeOutput is the JSON shape of a route and its decision for the user.
type routeOutput struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Title       string `json:"title,omitempty"`
	Nav         bool   `json:"nav"`
	Requirement string `json:"requirement"`
	Allowed     bool   `json:"allowed"`
}

// RunRoutes lists the route table with the decision for the given user, or for an
// anonymous session when no user is given. With navOnly, only the navigation entries the
// user may open are listed.
func RunRoutes(
	ctx context.Context,
	guardUseCase accessUseCase.GuardUseCase,
	writer io.Writer,
	userID string,
	roles, permissions []string,
	navOnly bool,
	format string,
) error {
	sess, err := buildSession(userID, roles, permissions)
	if err != nil {
		return err
	}
	user, _ := sess.Current()

	var routes []accessUseCase.Route
	if navOnly {
		routes = guardUseCase.Navigation(ctx, user)
	} else {
		routes = guardUseCase.Routes(ctx)
	}

	output := make([]routeOutput, 0, len(routes))
	for _, route := range routes {
		decision := guardUseCase.Evaluate(ctx, user, route.Require)
		output = append(output, routeOutput{
			Name:        route.Name,
			Path:        route.Path,
			Title:       route.Title,
			Nav:         route.Nav,
			Requirement: route.Require.String(),
			Allowed:     decision.Allowed,
		})
	}

	if format == "json" {
		return writeJSON(writer, output)
	}

	if len(output) == 0 {
		_, _ = fmt.Fprintln(writer, "No routes")
		return nil
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tPATH\tREQUIRES\tACCESS")
	for _, route := range output {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", route.Name, route.Path, route.Requirement, allowedLabel(route.Allowed))
	}
	return tw.Flush()
}
