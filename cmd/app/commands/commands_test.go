package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/inspecta/internal/access/token"
	accessUseCase "github.com/allisson/inspecta/internal/access/usecase"
	"github.com/allisson/inspecta/internal/cache/store"
	apperrors "github.com/allisson/inspecta/internal/errors"
	mutationUsecase "github.com/allisson/inspecta/internal/mutation/usecase"
	"github.com/allisson/inspecta/internal/mutation/usecase/mocks"
	reportDomain "github.com/allisson/inspecta/internal/report/domain"
	reportUseCase "github.com/allisson/inspecta/internal/report/usecase"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const routeTableYAML = `
routes:
  - name: home
    path: /
    nav: true
  - name: psv
    path: /psv
    nav: true
    require:
      permission: psv:read
  - name: admin
    path: /admin
    nav: true
    require:
      role: Global Admin
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGuard(t *testing.T) accessUseCase.GuardUseCase {
	t.Helper()
	table, err := accessUseCase.ParseRouteTable([]byte(routeTableYAML))
	require.NoError(t, err)
	return accessUseCase.NewGuardUseCase(table, discardLogger())
}

func newReports(t *testing.T) (reportUseCase.ReportUseCase, *mocks.MockEntityAPI[reportDomain.Report]) {
	t.Helper()

	logger := discardLogger()
	synchronizer := mutationUsecase.NewSynchronizer(store.NewMemoryStore(0, 0), logger)
	api := &mocks.MockEntityAPI[reportDomain.Report]{}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, synchronizer.Drain(ctx))
		api.AssertExpectations(t)
	})

	uc := reportUseCase.NewReportUseCase(synchronizer, api, reportUseCase.Config{Optimistic: true}, logger)
	return uc, api
}

func TestRunIssueToken(t *testing.T) {
	cfg := TokenConfig{Secret: "test-secret-0123456789", Issuer: "inspecta", TTL: time.Hour}

	t.Run("Success_Text", func(t *testing.T) {
		var out bytes.Buffer
		err := RunIssueToken(&out, cfg, "42", []string{"Inspector"}, []string{"psv:read"}, "text")
		require.NoError(t, err)

		user, err := token.NewParser([]byte(cfg.Secret), cfg.Issuer).Parse(string(bytes.TrimSpace(out.Bytes())))
		require.NoError(t, err)
		assert.Equal(t, "42", user.ID)
		assert.Equal(t, []string{"Inspector"}, user.Roles())
		assert.Equal(t, []string{"psv:read"}, user.PermissionStrings())
	})

	t.Run("Success_JSON", func(t *testing.T) {
		var out bytes.Buffer
		err := RunIssueToken(&out, cfg, "42", nil, []string{"report:create"}, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, "42", result["subject"])
		assert.NotEmpty(t, result["token"])
		assert.Equal(t, []interface{}{"report:create"}, result["permissions"])
	})

	t.Run("Error_MissingSecret", func(t *testing.T) {
		err := RunIssueToken(io.Discard, TokenConfig{TTL: time.Hour}, "42", nil, nil, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
	})

	t.Run("Error_InvalidTTL", func(t *testing.T) {
		err := RunIssueToken(io.Discard, TokenConfig{Secret: cfg.Secret}, "42", nil, nil, "text")
		require.Error(t, err)
	})

	t.Run("Error_MalformedPermission", func(t *testing.T) {
		err := RunIssueToken(io.Discard, cfg, "42", nil, []string{"psv"}, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid user")
	})

	t.Run("Error_MissingUser", func(t *testing.T) {
		err := RunIssueToken(io.Discard, cfg, "", nil, nil, "text")
		require.Error(t, err)
	})
}

func TestRunEvaluate(t *testing.T) {
	ctx := context.Background()
	guard := newGuard(t)

	t.Run("Success_Allowed", func(t *testing.T) {
		var out bytes.Buffer
		err := RunEvaluate(ctx, guard, &out, "42", nil, []string{"psv:read"}, `{"permission":"psv:read"}`, "text")
		require.NoError(t, err)
		assert.Equal(t, "ALLOWED: permission psv:read\n", out.String())
	})

	t.Run("Success_Denied", func(t *testing.T) {
		var out bytes.Buffer
		err := RunEvaluate(ctx, guard, &out, "42", []string{"Inspector"}, nil, `{"role":"Global Admin"}`, "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "DENIED")
	})

	t.Run("Success_JSON", func(t *testing.T) {
		var out bytes.Buffer
		err := RunEvaluate(ctx, guard, &out, "42", []string{"Inspector"}, []string{"psv:read"},
			`{"permissions":["psv:read","psv:update"],"require_all":true}`, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, false, result["allowed"])
		assert.Equal(t, "permissions", result["kind"])
		assert.Equal(t, "denied", result["outcome"])
		assert.Equal(t, "authenticated", result["session"])
		assert.Equal(t, "42", result["user"])
	})

	t.Run("Success_AnonymousSession", func(t *testing.T) {
		var out bytes.Buffer
		err := RunEvaluate(ctx, guard, &out, "", nil, nil, `{"permission":"psv:read"}`, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, false, result["allowed"])
		assert.Equal(t, "denied", result["outcome"])
		assert.Equal(t, "anonymous", result["session"])
		assert.NotContains(t, result, "user")
	})

	t.Run("Error_GrantsWithoutUser", func(t *testing.T) {
		err := RunEvaluate(ctx, guard, io.Discard, "", []string{"Inspector"}, nil, `{"role":"Inspector"}`, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user id is required")
	})

	t.Run("Error_InvalidRequirement", func(t *testing.T) {
		err := RunEvaluate(ctx, guard, io.Discard, "42", nil, nil, `{"permission":"psv"}`, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid requirement")
	})
}

func TestRunRoutes(t *testing.T) {
	ctx := context.Background()
	guard := newGuard(t)

	t.Run("Success_AllRoutesText", func(t *testing.T) {
		var out bytes.Buffer
		err := RunRoutes(ctx, guard, &out, "42", nil, []string{"psv:read"}, false, "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "NAME")
		assert.Contains(t, out.String(), "/admin")
		assert.Contains(t, out.String(), "DENIED")
	})

	t.Run("Success_NavigationJSON", func(t *testing.T) {
		var out bytes.Buffer
		err := RunRoutes(ctx, guard, &out, "42", nil, []string{"psv:read"}, true, "json")
		require.NoError(t, err)

		var result []routeOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Len(t, result, 2)
		assert.Equal(t, "home", result[0].Name)
		assert.Equal(t, "psv", result[1].Name)
		for _, r := range result {
			assert.True(t, r.Allowed)
		}
	})

	t.Run("Success_AnonymousNavigationEmpty", func(t *testing.T) {
		var out bytes.Buffer
		err := RunRoutes(ctx, guard, &out, "", nil, nil, true, "text")
		require.NoError(t, err)
		assert.Equal(t, "No routes\n", out.String())
	})
}

func TestRunListReports(t *testing.T) {
	ctx := context.Background()
	scope := map[string]string{"inspection_id": "1"}
	reports := []reportDomain.Report{{ID: "10", InspectionID: 1, Description: "existing", Status: "draft"}}

	t.Run("Success_Text", func(t *testing.T) {
		uc, api := newReports(t)
		api.On("List", mock.Anything, scope).Return(reports, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunListReports(ctx, uc, &out, 1, false, "text"))
		assert.Contains(t, out.String(), "Inspection 1 (fresh")
		assert.Contains(t, out.String(), "existing")
	})

	t.Run("Success_RefreshJSON", func(t *testing.T) {
		uc, api := newReports(t)
		api.On("List", mock.Anything, scope).Return(reports, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunListReports(ctx, uc, &out, 1, true, "json"))

		var result listOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, "fresh", result.CacheStatus)
		require.Len(t, result.Reports, 1)
		assert.Equal(t, "10", result.Reports[0].ID.String())
		assert.Equal(t, "draft", result.Reports[0].Status)
	})

	t.Run("Error_Upstream", func(t *testing.T) {
		uc, api := newReports(t)
		api.On("List", mock.Anything, scope).
			Return(nil, &apperrors.APIError{StatusCode: http.StatusBadGateway}).
			Once()

		err := RunListReports(ctx, uc, io.Discard, 1, false, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list reports")
	})
}

func TestRunCreateReport(t *testing.T) {
	ctx := context.Background()
	input := &reportDomain.CreateReportInput{InspectionID: 1, Description: "cracked weld"}

	t.Run("Success_Text", func(t *testing.T) {
		uc, api := newReports(t)
		api.On("Create", mock.Anything, input).
			Return(&reportDomain.Report{ID: "11", InspectionID: 1, Description: "cracked weld"}, nil).
			Once()

		var out bytes.Buffer
		err := RunCreateReport(ctx, uc, discardLogger(), &out, 1, "cracked weld", "", time.Second, "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Report created")
		assert.Contains(t, out.String(), "ID:          11")
	})

	t.Run("Success_JSON", func(t *testing.T) {
		uc, api := newReports(t)
		api.On("Create", mock.Anything, input).
			Return(&reportDomain.Report{ID: "11", InspectionID: 1, Description: "cracked weld"}, nil).
			Once()

		var out bytes.Buffer
		err := RunCreateReport(ctx, uc, discardLogger(), &out, 1, "cracked weld", "", time.Second, "json")
		require.NoError(t, err)

		var report reportDomain.Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, "11", report.ID.String())
		assert.Equal(t, int64(1), report.InspectionID)
		assert.Equal(t, "cracked weld", report.Description)
	})

	t.Run("Error_InvalidInput", func(t *testing.T) {
		uc, _ := newReports(t)

		err := RunCreateReport(ctx, uc, discardLogger(), io.Discard, 1, "   ", "", time.Second, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create report")
	})

	t.Run("Error_Rejected", func(t *testing.T) {
		uc, api := newReports(t)
		api.On("Create", mock.Anything, input).
			Return(nil, &apperrors.APIError{StatusCode: http.StatusBadRequest}).
			Once()

		err := RunCreateReport(ctx, uc, discardLogger(), io.Discard, 1, "cracked weld", "", time.Second, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not confirmed")
	})
}

func TestRunDeleteReport(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		uc, api := newReports(t)
		api.On("Delete", mock.Anything, "10").Return(nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunDeleteReport(ctx, uc, discardLogger(), &out, 1, "10", time.Second))
		assert.Equal(t, "Report 10 deleted\n", out.String())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		uc, api := newReports(t)
		api.On("Delete", mock.Anything, "10").
			Return(&apperrors.APIError{StatusCode: http.StatusNotFound}).
			Once()

		err := RunDeleteReport(ctx, uc, discardLogger(), io.Discard, 1, "10", time.Second)
		require.Error(t, err)
	})
}
