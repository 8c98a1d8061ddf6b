package storage

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/storage/badger"
	"github.com/julianstephens/habitchain/internal/storage/sqlite"
)

// New returns an unopened backend of the given kind rooted at dataDir.
// Callers must Init or Load it before use.
func New(kind, dataDir string) (Backend, error) {
	switch kind {
	case "", constants.BackendSQLite:
		return sqlite.NewStore(filepath.Join(dataDir, constants.SQLiteFileName)), nil
	case constants.BackendBadger:
		return badger.NewStore(badger.DefaultConfig(filepath.Join(dataDir, constants.BadgerDirName))), nil
	case constants.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
