package commands

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Validate loads the stored chain which fails if the chain is not valid.
func Validate(storage Storage, ev database.EventHandler) error {
	db, err := load(storage, ev)
	if err != nil {
		return err
	}
	defer db.Close()

	latest := db.LatestBlock()
	fmt.Printf("Chain is valid: length[%d] latest[%s]\n", db.Length(), latest.Hash)

	return nil
}
