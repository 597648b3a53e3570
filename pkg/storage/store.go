package storage

import (
	"fmt"
	"path/filepath"

	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

const (
	BackendFilesystem = "filesystem"
	BackendSQLite     = "sqlite"
	// SQLiteFile is the default database name inside .dictado.
	SQLiteFile = "dictado.db"
)

// Backend is a store that can be initialized and closed.
type Backend interface {
	planning.Store
	Initialize() error
	IsInitialized() bool
	Close() error
}

// Open returns the named backend rooted at root. path overrides the
// database location for sqlite.
func Open(backend, root, path string) (Backend, error) {
	switch backend {
	case BackendFilesystem, "":
		return NewFilesystemStore(root), nil
	case BackendSQLite:
		if path == "" {
			path = filepath.Join(root, DictadoDir, SQLiteFile)
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}
