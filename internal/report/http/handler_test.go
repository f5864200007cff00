package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/inspecta/internal/cache/store"
	apperrors "github.com/allisson/inspecta/internal/errors"
	mutationUsecase "github.com/allisson/inspecta/internal/mutation/usecase"
	"github.com/allisson/inspecta/internal/mutation/usecase/mocks"
	"github.com/allisson/inspecta/internal/remote"
	reportDomain "github.com/allisson/inspecta/internal/report/domain"
	"github.com/allisson/inspecta/internal/report/http/dto"
	reportUseCase "github.com/allisson/inspecta/internal/report/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type testEnv struct {
	router *gin.Engine
	api    *mocks.MockEntityAPI[reportDomain.Report]
	sync   *mutationUsecase.Synchronizer
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	synchronizer := mutationUsecase.NewSynchronizer(store.NewMemoryStore(0, 0), logger)
	api := &mocks.MockEntityAPI[reportDomain.Report]{}
	uc := reportUseCase.NewReportUseCase(synchronizer, api, reportUseCase.Config{Optimistic: true}, logger)
	handler := NewReportHandler(uc, logger)

	router := gin.New()
	reports := router.Group("/v1/inspections/:inspection_id/reports")
	reports.GET("", handler.ListHandler)
	reports.POST("", handler.CreateHandler)
	reports.PATCH("/:id", handler.UpdateHandler)
	reports.DELETE("/:id", handler.DeleteHandler)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, synchronizer.Drain(ctx))
		api.AssertExpectations(t)
	})

	return &testEnv{router: router, api: api, sync: synchronizer}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) list(t *testing.T) dto.ListReportsResponse {
	t.Helper()
	w := e.do(http.MethodGet, "/v1/inspections/1/reports", "")
	require.Equal(t, http.StatusOK, w.Code)
	var response dto.ListReportsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

var scope = map[string]string{"inspection_id": "1"}

func existing() []reportDomain.Report {
	return []reportDomain.Report{{ID: "10", InspectionID: 1, Description: "existing"}}
}

func TestReportHandler_ListHandler(t *testing.T) {
	t.Run("Success_LoadsAndCaches", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.On("List", mock.Anything, scope).Return(existing(), nil).Once()

		response := env.list(t)
		require.Len(t, response.Data, 1)
		assert.Equal(t, "10", response.Data[0].ID)
		assert.Equal(t, "fresh", response.CacheStatus)

		response = env.list(t)
		assert.Len(t, response.Data, 1)
	})

	t.Run("Success_Refresh", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.On("List", mock.Anything, scope).Return(existing(), nil).Twice()

		env.list(t)
		w := env.do(http.MethodGet, "/v1/inspections/1/reports?refresh=true", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_InvalidInspectionID", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodGet, "/v1/inspections/abc/reports", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_Upstream", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.On("List", mock.Anything, scope).
			Return(nil, &apperrors.APIError{StatusCode: http.StatusBadGateway}).
			Once()

		w := env.do(http.MethodGet, "/v1/inspections/1/reports", "")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestReportHandler_CreateHandler(t *testing.T) {
	input := &reportDomain.CreateReportInput{InspectionID: 1, Description: "cracked weld"}

	t.Run("Success_AcceptedAndVisible", func(t *testing.T) {
		env := setupTestEnv(t)
		release := make(chan struct{})
		env.api.On("List", mock.Anything, scope).Return(existing(), nil).Once()
		env.api.On("Create", mock.Anything, input).
			Run(func(mock.Arguments) { <-release }).
			Return(&reportDomain.Report{ID: "11", InspectionID: 1, Description: "cracked weld"}, nil).
			Once()

		env.list(t)
		w := env.do(http.MethodPost, "/v1/inspections/1/reports", `{"description":"cracked weld"}`)
		require.Equal(t, http.StatusAccepted, w.Code)

		var ack dto.MutationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
		assert.Equal(t, "pending", ack.State)
		assert.NotEmpty(t, ack.MutationID)
		assert.NotEmpty(t, ack.TempID)

		response := env.list(t)
		require.Len(t, response.Data, 2)
		assert.Equal(t, ack.TempID, response.Data[1].ID)
		assert.True(t, response.Data[1].Provisional)

		close(release)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, env.sync.Drain(ctx))

		response = env.list(t)
		require.Len(t, response.Data, 2)
		assert.Equal(t, "11", response.Data[1].ID)
		assert.False(t, response.Data[1].Provisional)
	})

	t.Run("Success_WaitReturnsServerValue", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.On("Create", mock.Anything, input).
			Return(&reportDomain.Report{ID: "11", InspectionID: 1, Description: "cracked weld"}, nil).
			Once()

		w := env.do(http.MethodPost, "/v1/inspections/1/reports?wait=true", `{"description":"cracked weld"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var report dto.ReportResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, "11", report.ID)
	})

	t.Run("Error_WaitRejected", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.On("List", mock.Anything, scope).Return(existing(), nil).Once()
		env.api.On("Create", mock.Anything, input).
			Return(nil, &apperrors.APIError{StatusCode: http.StatusUnprocessableEntity, Message: "description too short"}).
			Once()

		env.list(t)
		w := env.do(http.MethodPost, "/v1/inspections/1/reports?wait=true", `{"description":"cracked weld"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		response := env.list(t)
		require.Len(t, response.Data, 1)
		assert.Equal(t, "10", response.Data[0].ID)
	})

	t.Run("Error_InvalidInput", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodPost, "/v1/inspections/1/reports", `{"description":"  "}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodPost, "/v1/inspections/1/reports", `invalid json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReportHandler_UpdateHandler(t *testing.T) {
	t.Run("Success_WaitReturnsServerValue", func(t *testing.T) {
		env := setupTestEnv(t)
		description := "repaired"
		env.api.On("Update", mock.Anything, "10", &reportDomain.UpdateReportInput{Description: &description}).
			Return(&reportDomain.Report{ID: "10", InspectionID: 1, Description: description}, nil).
			Once()

		w := env.do(http.MethodPatch, "/v1/inspections/1/reports/10?wait=true", `{"description":"repaired"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var report dto.ReportResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, description, report.Description)
	})

	t.Run("Error_EmptyPatch", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodPatch, "/v1/inspections/1/reports/10", `{}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestReportHandler_DeleteHandler(t *testing.T) {
	t.Run("Success_Accepted", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.On("List", mock.Anything, scope).Return(existing(), nil).Once()
		env.api.On("Delete", mock.Anything, "10").Return(nil).Once()

		env.list(t)
		w := env.do(http.MethodDelete, "/v1/inspections/1/reports/10", "")
		assert.Equal(t, http.StatusAccepted, w.Code)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, env.sync.Drain(ctx))

		response := env.list(t)
		assert.Empty(t, response.Data)
	})

	t.Run("Success_WaitNoContent", func(t *testing.T) {
		env := setupTestEnv(t)
		env.api.On("Delete", mock.Anything, "10").Return(nil).Once()

		w := env.do(http.MethodDelete, "/v1/inspections/1/reports/10?wait=true", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestReportHandler_AcceptedWriteOutlivesRequest(t *testing.T) {
	var lists atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			lists.Add(1)
			_, _ = w.Write([]byte(`[{"id":10,"inspection_id":1,"description":"existing"}]`))
		case http.MethodPost:
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":11,"inspection_id":1,"description":"cracked weld"}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer upstream.Close()

	client, err := remote.NewClient[reportDomain.Report](upstream.URL, "reports",
		remote.WithHTTPClient(upstream.Client()))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	synchronizer := mutationUsecase.NewSynchronizer(store.NewMemoryStore(0, 0), logger)
	uc := reportUseCase.NewReportUseCase(synchronizer, client, reportUseCase.Config{Optimistic: true}, logger)
	handler := NewReportHandler(uc, logger)

	router := gin.New()
	router.GET("/v1/inspections/:inspection_id/reports", handler.ListHandler)
	router.POST("/v1/inspections/:inspection_id/reports", handler.CreateHandler)

	front := httptest.NewServer(router)
	defer front.Close()

	list := func() dto.ListReportsResponse {
		resp, err := front.Client().Get(front.URL + "/v1/inspections/1/reports")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var response dto.ListReportsResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		return response
	}

	require.Len(t, list().Data, 1)

	resp, err := front.Client().Post(front.URL+"/v1/inspections/1/reports", "application/json",
		bytes.NewReader([]byte(`{"description":"cracked weld"}`)))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, synchronizer.Drain(ctx))

	response := list()
	require.Len(t, response.Data, 2)
	assert.Equal(t, "11", response.Data[1].ID)
	assert.False(t, response.Data[1].Provisional)
	assert.Equal(t, "fresh", response.CacheStatus)
	assert.Equal(t, int32(1), lists.Load())
}
