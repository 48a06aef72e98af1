package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// WalletInfo represents the identity and balance of this node's wallet.
type WalletInfo struct {
	Address database.AccountID `json:"address"`
	Balance uint64             `json:"balance"`
}

// =============================================================================

// QueryWalletInfo returns the address and chain balance of this
// node's wallet.
func (s *State) QueryWalletInfo() WalletInfo {
	return WalletInfo{
		Address: s.wallet.Address(),
		Balance: s.wallet.Balance(),
	}
}

// QueryBalance returns the balance of the account replayed from the chain.
func (s *State) QueryBalance(accountID database.AccountID) uint64 {
	return s.db.Balance(accountID)
}

// QueryKnownAddresses returns every account that has received an output.
func (s *State) QueryKnownAddresses() []database.AccountID {
	return s.db.KnownAddresses()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlocksByRange returns the blocks between start and end with the
// newest block first.
func (s *State) QueryBlocksByRange(start int, end int) []database.Block {
	return s.db.Range(start, end)
}

// QueryTxsByAccount returns the mined transactions the account sent
// or received.
func (s *State) QueryTxsByAccount(accountID database.AccountID) []database.Tx {
	return s.db.QueryTxs(accountID)
}
