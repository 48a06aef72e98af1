// Package database handles all the lower level support for maintaining the
// blockchain in memory and in storage, and the rules for validating blocks,
// transactions, and chains.
package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrChainChanged is returned from AddBlock when the tip of the chain moved
// while the block was being mined.
var ErrChainChanged = errors.New("chain changed while mining, block discarded")

// =============================================================================

// Database manages the blocks of the chain. Every mutation of the chain is
// serialized through the database and readers always observe a complete
// chain.
type Database struct {
	mu      sync.RWMutex
	blocks  []Block
	storage Storage
	ev      EventHandler
}

// New constructs a new database and reads the blockchain from storage. When
// storage is empty the genesis block is written. A stored chain must pass
// chain validation.
func New(storage Storage, ev EventHandler) (*Database, error) {
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	db := Database{
		storage: storage,
		ev:      ev,
	}

	// Read all the blocks from storage.
	var blocks []Block

	iter := storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		if blockData.Number != uint64(len(blocks)) {
			return nil, fmt.Errorf("block %d: out of order, exp %d", blockData.Number, len(blocks))
		}

		blocks = append(blocks, blockData.Block)
	}

	switch len(blocks) {
	case 0:
		ev("database: New: writing genesis block")

		genesisBlock := Genesis()
		if err := storage.Write(NewBlockData(0, genesisBlock)); err != nil {
			return nil, fmt.Errorf("writing genesis: %w", err)
		}
		blocks = []Block{genesisBlock}

	default:
		if err := ValidateChain(blocks); err != nil {
			return nil, fmt.Errorf("stored chain: %w", err)
		}
		ev("database: New: loaded blocks[%d]", len(blocks))
	}

	db.blocks = blocks

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// AddBlock mines a new block holding the specified transactions on top of
// the current tip and appends it. The economic content of the transactions
// is not checked here. The block is discarded if the chain changed while it
// was being mined.
func (db *Database) AddBlock(ctx context.Context, data []Tx) (Block, error) {
	lastBlock := db.LatestBlock()

	block, err := MineBlock(ctx, lastBlock, data, db.ev)
	if err != nil {
		return Block{}, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.blocks[len(db.blocks)-1].Hash != lastBlock.Hash {
		return Block{}, ErrChainChanged
	}

	if err := db.storage.Write(NewBlockData(uint64(len(db.blocks)), block)); err != nil {
		return Block{}, fmt.Errorf("writing block: %w", err)
	}

	db.blocks = append(db.blocks, block)

	db.ev("database: AddBlock: blk[%s]: length[%d]", block, len(db.blocks))

	return block, nil
}

// ReplaceChain replaces the local chain with the candidate when the candidate
// is strictly longer and passes chain validation. Nothing changes when the
// candidate is rejected.
func (db *Database) ReplaceChain(candidate []Block) error {
	if length := db.Length(); len(candidate) <= length {
		return newError(KindChainTooShort, "candidate length %d, local length %d", len(candidate), length)
	}

	// Validation is the expensive part so it happens outside the lock.
	if err := ValidateChain(candidate); err != nil {
		return &Error{Kind: KindChainInvalid, Msg: fmt.Sprintf("candidate length %d", len(candidate)), Err: err}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	// The chain may have grown while the candidate was being validated.
	if len(candidate) <= len(db.blocks) {
		return newError(KindChainTooShort, "candidate length %d, local length %d", len(candidate), len(db.blocks))
	}

	blocks := slices.Clone(candidate)

	if err := db.rewrite(blocks); err != nil {
		if rerr := db.rewrite(db.blocks); rerr != nil {
			return fmt.Errorf("restoring chain: %w: %w", rerr, err)
		}
		return fmt.Errorf("writing chain: %w", err)
	}

	db.blocks = blocks

	db.ev("database: ReplaceChain: length[%d]: tip[%s]", len(db.blocks), db.blocks[len(db.blocks)-1])

	return nil
}

// Blocks returns a copy of the full chain, genesis first.
func (db *Database) Blocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return slices.Clone(db.blocks)
}

// LatestBlock returns the tip of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks[len(db.blocks)-1]
}

// Length returns the number of blocks in the chain including genesis.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// Range returns the blocks between start and end, with the chain ordered
// newest first. Out of range values are clamped.
func (db *Database) Range(start int, end int) []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	start = max(start, 0)
	end = min(end, len(db.blocks))
	if start >= end {
		return []Block{}
	}

	blocks := make([]Block, 0, end-start)
	for i := start; i < end; i++ {
		blocks = append(blocks, db.blocks[len(db.blocks)-1-i])
	}

	return blocks
}

// KnownAddresses returns every account that has received an output on
// the chain.
func (db *Database) KnownAddresses() []AccountID {
	db.mu.RLock()
	defer db.mu.RUnlock()

	known := make(map[AccountID]struct{})
	for _, block := range db.blocks {
		for _, tx := range block.Data {
			for accountID := range tx.Output {
				known[accountID] = struct{}{}
			}
		}
	}

	accounts := make([]AccountID, 0, len(known))
	for accountID := range known {
		accounts = append(accounts, accountID)
	}
	slices.Sort(accounts)

	return accounts
}

// Balance returns the balance of the account replayed from the chain.
func (db *Database) Balance(accountID AccountID) uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return CalculateBalance(db.blocks, accountID)
}

// HasTx reports whether a transaction with the specified id is already
// mined into the chain.
func (db *Database) HasTx(id string) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, block := range db.blocks {
		for _, tx := range block.Data {
			if tx.ID == id {
				return true
			}
		}
	}

	return false
}

// QueryTxs returns every mined transaction the account sent or received.
func (db *Database) QueryTxs(accountID AccountID) []Tx {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var txs []Tx
	for _, block := range db.blocks {
		for _, tx := range block.Data {
			if _, exists := tx.Output[accountID]; exists || tx.Input.Address == accountID {
				txs = append(txs, tx)
			}
		}
	}

	return txs
}

// =============================================================================

// rewrite resets storage and writes the specified chain. The caller must
// hold the write lock.
func (db *Database) rewrite(blocks []Block) error {
	if err := db.storage.Reset(); err != nil {
		return err
	}

	for i, block := range blocks {
		if err := db.storage.Write(NewBlockData(uint64(i), block)); err != nil {
			return err
		}
	}

	return nil
}
