package commands

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Balances prints the current set of balances.
func Balances(storage Storage, ev database.EventHandler, account string) error {
	db, err := load(storage, ev)
	if err != nil {
		return err
	}
	defer db.Close()

	accounts := db.KnownAddresses()
	if account != "" {
		accountID, err := database.ToAccountID(account)
		if err != nil {
			return err
		}
		accounts = []database.AccountID{accountID}
	}

	fmt.Printf("LastestBlockHash: %s\n\n", db.LatestBlock().Hash)

	for _, accountID := range accounts {
		fmt.Printf("Account: %s  Balance: %d\n", accountID, db.Balance(accountID))
	}

	return nil
}
