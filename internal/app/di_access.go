package app

import (
	"fmt"

	accessHTTP "github.com/allisson/inspecta/internal/access/http"
	"github.com/allisson/inspecta/internal/access/token"
	accessUseCase "github.com/allisson/inspecta/internal/access/usecase"
)

// RouteTable returns the guarded route table loaded from ROUTES_FILE.
func (c *Container) RouteTable() (*accessUseCase.RouteTable, error) {
	var err error
	c.routeTableInit.Do(func() {
		c.routeTable, err = accessUseCase.LoadRouteTable(c.config.RoutesFile)
		if err != nil {
			c.initErrors["routeTable"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["routeTable"]; exists {
		return nil, storedErr
	}
	return c.routeTable, nil
}

// TokenParser returns the access token parser.
func (c *Container) TokenParser() (accessHTTP.TokenParser, error) {
	var err error
	c.tokenParserInit.Do(func() {
		c.tokenParser, err = c.initTokenParser()
		if err != nil {
			c.initErrors["tokenParser"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenParser"]; exists {
		return nil, storedErr
	}
	return c.tokenParser, nil
}

// GuardUseCase returns the guard use case instance.
func (c *Container) GuardUseCase() (accessUseCase.GuardUseCase, error) {
	var err error
	c.guardUseCaseInit.Do(func() {
		c.guardUseCase, err = c.initGuardUseCase()
		if err != nil {
			c.initErrors["guardUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["guardUseCase"]; exists {
		return nil, storedErr
	}
	return c.guardUseCase, nil
}

// AccessHandler returns the access HTTP handler.
func (c *Container) AccessHandler() (*accessHTTP.AccessHandler, error) {
	var err error
	c.accessHandlerInit.Do(func() {
		c.accessHandler, err = c.initAccessHandler()
		if err != nil {
			c.initErrors["accessHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accessHandler"]; exists {
		return nil, storedErr
	}
	return c.accessHandler, nil
}

func (c *Container) initTokenParser() (accessHTTP.TokenParser, error) {
	if c.config.AuthJWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	return token.NewParser([]byte(c.config.AuthJWTSecret), c.config.AuthJWTIssuer), nil
}

// initGuardUseCase creates the guard use case, wrapped with metrics if enabled.
func (c *Container) initGuardUseCase() (accessUseCase.GuardUseCase, error) {
	table, err := c.RouteTable()
	if err != nil {
		return nil, fmt.Errorf("failed to get route table for guard use case: %w", err)
	}

	baseUseCase := accessUseCase.NewGuardUseCase(table, c.Logger())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for guard use case: %w", err)
		}
		return accessUseCase.NewGuardUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initAccessHandler() (*accessHTTP.AccessHandler, error) {
	guardUseCase, err := c.GuardUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get guard use case for access handler: %w", err)
	}
	return accessHTTP.NewAccessHandler(guardUseCase, c.Logger()), nil
}
