// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/disk"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// Storage is the stored chain the commands operate on.
type Storage = database.Storage

// OpenStorage opens the persisted chain of the specified kind.
func OpenStorage(kind string, path string) (Storage, error) {
	switch kind {
	case "disk":
		return disk.New(path)
	case "bolt":
		return bolt.New(path + ".db")
	}

	return nil, fmt.Errorf("unknown storage kind %q, use disk or bolt", kind)
}

// load reads the stored chain and validates it.
func load(storage Storage, ev database.EventHandler) (*database.Database, error) {
	db, err := database.New(storage, ev)
	if err != nil {
		storage.Close()
		return nil, err
	}

	return db, nil
}
