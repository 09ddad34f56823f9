package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/michaelbrown/ctxlaunch/internal/config"
	"github.com/michaelbrown/ctxlaunch/internal/launch"
	"github.com/michaelbrown/ctxlaunch/internal/storage"
	"github.com/michaelbrown/ctxlaunch/internal/storage/sqlite"
)

func openStore(cfg *config.Config) (storage.Store, error) {
	path := cfg.Storage.DBPath
	if dbFlag != "" {
		path = dbFlag
	}
	return sqlite.Open(path)
}

// loadRegistry assembles builtin, configured and stored servers.
func loadRegistry(ctx context.Context) (*launch.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	stored, err := storage.Entries(ctx, store)
	if err != nil {
		return nil, err
	}

	r, err := buildRegistry(cfg, stored)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"config":   cfg.File,
		"disabled": len(cfg.DisabledIDs()),
		"stored":   len(stored),
		"total":    r.Len(),
	}).Debug("registry loaded")
	return r, nil
}

// buildRegistry layers configured entries over the builtins, drops servers
// the config disables, then applies stored entries. A stored server with a
// disabled id is still resolvable: it was added explicitly.
func buildRegistry(cfg *config.Config, stored []launch.Entry) (*launch.Registry, error) {
	r, err := launch.Layer(cfg.Entries())
	if err != nil {
		return nil, err
	}
	r, err = r.Without(cfg.DisabledIDs()...).With(stored...)
	if err != nil {
		return nil, fmt.Errorf("stored servers: %w", err)
	}
	return r, nil
}
