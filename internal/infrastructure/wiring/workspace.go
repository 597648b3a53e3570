package wiring

import (
	"github.com/felixgeelhaar/dictado/internal/infrastructure/config"
	"github.com/felixgeelhaar/dictado/pkg/storage"
)

// Workspace bundles the configuration and store of one dictado root.
type Workspace struct {
	Root   string
	Config *config.Config
	Store  storage.Backend
}

// NewWorkspace opens the configured store backend under root.
func NewWorkspace(root string, cfg *config.Config) (*Workspace, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	store, err := storage.Open(cfg.Store.Backend, root, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	return &Workspace{Root: root, Config: cfg, Store: store}, nil
}

// Close releases the store.
func (w *Workspace) Close() error {
	return w.Store.Close()
}
