package cli

import (
	"fmt"

	coreapp "doccov/internal/core/app"
	"doccov/internal/core/config"
)

type serviceFactory interface {
	New(cfg *config.Config, configPath string) (*coreapp.Service, error)
}

type coreServiceFactory struct{}

func (coreServiceFactory) New(cfg *config.Config, configPath string) (*coreapp.Service, error) {
	return coreapp.New(cfg, configPath)
}

func initializeService(cfg *config.Config, configPath string, factory serviceFactory) (*coreapp.Service, error) {
	if factory == nil {
		return nil, fmt.Errorf("service factory is required")
	}
	return factory.New(cfg, configPath)
}
