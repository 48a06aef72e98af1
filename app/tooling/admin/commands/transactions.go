package commands

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Transactions prints the mined transactions for the specified account.
func Transactions(storage Storage, ev database.EventHandler, account string) error {
	if account == "" {
		return errors.New("account is required")
	}

	accountID, err := database.ToAccountID(account)
	if err != nil {
		return err
	}

	db, err := load(storage, ev)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("LastestBlockHash: %s\n\n", db.LatestBlock().Hash)

	for _, tx := range db.QueryTxs(accountID) {
		fmt.Printf("ID: %s  From: %s  Amount: %d  Outputs: %v\n",
			tx.ID, tx.Input.Address, tx.Input.Amount, tx.Output)
	}

	return nil
}
