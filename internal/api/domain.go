package api

import (
	"github.com/JaimeStill/docsort/internal/classifications"
	"github.com/JaimeStill/docsort/internal/config"
	"github.com/JaimeStill/docsort/internal/learning"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Classifications classifications.System
	Learning        learning.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	classificationsSystem := classifications.New(
		classifications.Config{
			Scoring:    cfg.Scoring,
			Learning:   cfg.Learning,
			Similarity: cfg.Similarity,
		},
		runtime.Store,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Classifications: classificationsSystem,
		Learning:        classificationsSystem.Learning(),
	}
}

// Start registers domain systems with the lifecycle coordinator.
func (d *Domain) Start(runtime *Runtime) error {
	if err := runtime.Start(); err != nil {
		return err
	}
	return d.Classifications.Start(runtime.Lifecycle)
}
