package app

import (
	"fmt"

	mutationUsecase "github.com/allisson/inspecta/internal/mutation/usecase"
	"github.com/allisson/inspecta/internal/remote"
	reportDomain "github.com/allisson/inspecta/internal/report/domain"
	reportHTTP "github.com/allisson/inspecta/internal/report/http"
	reportUseCase "github.com/allisson/inspecta/internal/report/usecase"
)

// reportsResource is the path of reports under API_BASE_URL.
const reportsResource = "reports"

// Synchronizer returns the optimistic mutation synchronizer over the cache store.
func (c *Container) Synchronizer() (mutationUsecase.SynchronizerUseCase, error) {
	var err error
	c.synchronizerInit.Do(func() {
		c.synchronizer, err = c.initSynchronizer()
		if err != nil {
			c.initErrors["synchronizer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["synchronizer"]; exists {
		return nil, storedErr
	}
	return c.synchronizer, nil
}

// ReportAPI returns the REST client of the reports resource.
func (c *Container) ReportAPI() (mutationUsecase.EntityAPI[reportDomain.Report], error) {
	var err error
	c.reportAPIInit.Do(func() {
		c.reportAPI, err = c.initReportAPI()
		if err != nil {
			c.initErrors["reportAPI"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["reportAPI"]; exists {
		return nil, storedErr
	}
	return c.reportAPI, nil
}

// ReportUseCase returns the report use case instance.
func (c *Container) ReportUseCase() (reportUseCase.ReportUseCase, error) {
	var err error
	c.reportUseCaseInit.Do(func() {
		c.reportUseCase, err = c.initReportUseCase()
		if err != nil {
			c.initErrors["reportUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["reportUseCase"]; exists {
		return nil, storedErr
	}
	return c.reportUseCase, nil
}

// ReportHandler returns the report HTTP handler.
func (c *Container) ReportHandler() (*reportHTTP.ReportHandler, error) {
	var err error
	c.reportHandlerInit.Do(func() {
		c.reportHandler, err = c.initReportHandler()
		if err != nil {
			c.initErrors["reportHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["reportHandler"]; exists {
		return nil, storedErr
	}
	return c.reportHandler, nil
}

// initSynchronizer creates the synchronizer, wrapped with metrics if enabled.
func (c *Container) initSynchronizer() (mutationUsecase.SynchronizerUseCase, error) {
	cache, err := c.CacheStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache store for synchronizer: %w", err)
	}

	synchronizer := mutationUsecase.NewSynchronizer(cache, c.Logger())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for synchronizer: %w", err)
		}
		return mutationUsecase.NewSynchronizerWithMetrics(synchronizer, businessMetrics), nil
	}

	return synchronizer, nil
}

func (c *Container) initReportAPI() (mutationUsecase.EntityAPI[reportDomain.Report], error) {
	opts := []remote.Option{remote.WithTimeout(c.config.APITimeout)}
	if c.config.APIToken != "" {
		opts = append(opts, remote.WithBearerToken(c.config.APIToken))
	}

	client, err := remote.NewClient[reportDomain.Report](c.config.APIBaseURL, reportsResource, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create report api client: %w", err)
	}
	return client, nil
}

func (c *Container) initReportUseCase() (reportUseCase.ReportUseCase, error) {
	synchronizer, err := c.Synchronizer()
	if err != nil {
		return nil, fmt.Errorf("failed to get synchronizer for report use case: %w", err)
	}

	api, err := c.ReportAPI()
	if err != nil {
		return nil, fmt.Errorf("failed to get report api for report use case: %w", err)
	}

	cfg := reportUseCase.Config{
		Optimistic:           c.config.MutationOptimistic,
		RetryMax:             uint64(max(c.config.MutationRetryMax, 0)), //nolint:gosec // clamped to non-negative
		RetryInitialInterval: c.config.MutationRetryInitialInterval,
	}
	return reportUseCase.NewReportUseCase(synchronizer, api, cfg, c.Logger()), nil
}

func (c *Container) initReportHandler() (*reportHTTP.ReportHandler, error) {
	uc, err := c.ReportUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get report use case for report handler: %w", err)
	}
	return reportHTTP.NewReportHandler(uc, c.Logger()), nil
}
