// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Mempool represents a cache of pending transactions keyed by their id.
type Mempool struct {
	pool map[string]database.Tx
	mu   sync.RWMutex
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.Tx),
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool. A transaction that
// was updated by its sender replaces the earlier version with the same id.
// Only the sender of a pending transaction can replace it.
func (mp *Mempool) Upsert(tx database.Tx) (int, error) {
	if tx.ID == "" {
		return 0, errors.New("transaction has no id")
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if existing, exists := mp.pool[tx.ID]; exists && existing.Input.Address != tx.Input.Address {
		msg := fmt.Sprintf("transaction %s: pending from %s, replacement from %s", tx.ID, existing.Input.Address, tx.Input.Address)
		return 0, &database.Error{Kind: database.KindDuplicateTransaction, Msg: msg}
	}

	mp.pool[tx.ID] = tx

	return len(mp.pool), nil
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, id)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Tx)
}

// Copy returns the pending transactions ordered by the time they
// were signed.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	txs := make([]database.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		txs = append(txs, tx)
	}
	mp.mu.RUnlock()

	sort.Sort(byTimestamp(txs))

	return txs
}

// ExistingTx returns the most recent pending transaction sent by
// the account.
func (mp *Mempool) ExistingTx(accountID database.AccountID) (database.Tx, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	var found database.Tx
	var exists bool
	for _, tx := range mp.pool {
		if tx.Input.IsReward() || tx.Input.Address != accountID {
			continue
		}

		if !exists || tx.Input.Timestamp > found.Input.Timestamp {
			found = tx
			exists = true
		}
	}

	return found, exists
}

// ClearMined removes every transaction recorded in the blocks and returns
// the number removed.
func (mp *Mempool) ClearMined(blocks []database.Block) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	for _, block := range blocks {
		for _, tx := range block.Data {
			if _, exists := mp.pool[tx.ID]; exists {
				delete(mp.pool, tx.ID)
				removed++
			}
		}
	}

	return removed
}

// PickBest returns the next set of transactions for the next block. Only the
// most recent transaction from each sender is selected, since the balance a
// sender declares is only valid against the chain that existed when it was
// signed. Pass -1 for every eligible transaction.
func (mp *Mempool) PickBest(howMany int) []database.Tx {
	latest := make(map[database.AccountID]database.Tx)

	mp.mu.RLock()
	{
		for _, tx := range mp.pool {
			if tx.Input.IsReward() {
				continue
			}

			current, exists := latest[tx.Input.Address]
			if !exists || tx.Input.Timestamp > current.Input.Timestamp {
				latest[tx.Input.Address] = tx
			}
		}
	}
	mp.mu.RUnlock()

	txs := make([]database.Tx, 0, len(latest))
	for _, tx := range latest {
		txs = append(txs, tx)
	}
	sort.Sort(byTimestamp(txs))

	if howMany >= 0 && howMany < len(txs) {
		txs = txs[:howMany]
	}

	return txs
}
