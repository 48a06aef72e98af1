package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Block represents a group of transactions sealed by proof of work. A block
// is never modified once it has been mined.
type Block struct {
	Timestamp  int64  `json:"timestamp"`  // Time the block was mined in nanoseconds.
	LastHash   string `json:"last_hash"`  // Hash of the previous block in the chain.
	Hash       string `json:"hash"`       // Hash of the other five fields.
	Data       []Tx   `json:"data"`       // Transactions sealed in this block.
	Difficulty uint   `json:"difficulty"` // Number of leading 0 bits required in the hash.
	Nonce      uint64 `json:"nonce"`      // Value identified to solve the hash solution.
}

// Genesis returns the fixed first block of every chain.
func Genesis() Block {
	return Block{
		Timestamp:  genesis.Timestamp,
		LastHash:   genesis.LastHash,
		Hash:       genesis.Hash,
		Data:       []Tx{},
		Difficulty: genesis.Difficulty,
		Nonce:      genesis.Nonce,
	}
}

// AdjustDifficulty returns the difficulty for a block mined at the specified
// time on top of the last block. Mining slower than the mine rate lowers the
// difficulty by one, never below one. Otherwise it is raised by one.
func AdjustDifficulty(lastBlock Block, timestamp int64) uint {
	if timestamp-lastBlock.Timestamp > int64(genesis.MineRate) {
		if lastBlock.Difficulty <= 1 {
			return 1
		}
		return lastBlock.Difficulty - 1
	}

	return lastBlock.Difficulty + 1
}

// MineBlock constructs a new Block on top of the last block and performs the
// work to find a nonce that solves the cryptographic POW puzzle. The search
// is abandoned when the context is cancelled.
func MineBlock(ctx context.Context, lastBlock Block, data []Tx, ev EventHandler) (Block, error) {
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	ev("database: MineBlock: MINING: started")
	defer ev("database: MineBlock: MINING: completed")

	if data == nil {
		data = []Tx{}
	}

	// Log the transactions that are a part of this potential block.
	for _, tx := range data {
		ev("database: MineBlock: MINING: tx[%s]", tx)
	}

	nb := Block{
		LastHash: lastBlock.Hash,
		Data:     data,
	}

	// Loop until we find a solution or we are told to stop. The timestamp is
	// refreshed on every attempt so the difficulty reflects the time spent.
	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: MineBlock: MINING: attempts[%d]", attempts)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: MineBlock: MINING: CANCELLED")
			return Block{}, ctx.Err()
		}

		nb.Timestamp = time.Now().UnixNano()
		nb.Difficulty = AdjustDifficulty(lastBlock, nb.Timestamp)

		// Hash the block and check if we have solved the puzzle.
		hash := nb.computeHash()
		if !signature.IsHashSolved(nb.Difficulty, hash) {
			nb.Nonce++
			continue
		}

		nb.Hash = hash

		ev("database: MineBlock: MINING: SOLVED: lastHash[%s]: hash[%s]: difficulty[%d]", nb.LastHash, nb.Hash, nb.Difficulty)
		ev("database: MineBlock: MINING: attempts[%d]", attempts)

		return nb, nil
	}
}

// ToBlock converts the serialized form of a block into a Block.
func ToBlock(data []byte) (Block, error) {
	var block Block
	if err := json.Unmarshal(data, &block); err != nil {
		return Block{}, malformed("block", err)
	}

	return block, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. Every field of
// the block must be present.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp  *int64  `json:"timestamp"`
		LastHash   *string `json:"last_hash"`
		Hash       *string `json:"hash"`
		Data       []Tx    `json:"data"`
		Difficulty *uint   `json:"difficulty"`
		Nonce      *uint64 `json:"nonce"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return malformed("block", err)
	}

	var missing []string
	if raw.Timestamp == nil {
		missing = append(missing, "timestamp")
	}
	if raw.LastHash == nil {
		missing = append(missing, "last_hash")
	}
	if raw.Hash == nil {
		missing = append(missing, "hash")
	}
	if raw.Data == nil {
		missing = append(missing, "data")
	}
	if raw.Difficulty == nil {
		missing = append(missing, "difficulty")
	}
	if raw.Nonce == nil {
		missing = append(missing, "nonce")
	}
	if len(missing) > 0 {
		return newError(KindMalformedRecord, "block: missing fields %v", missing)
	}

	*b = Block{
		Timestamp:  *raw.Timestamp,
		LastHash:   *raw.LastHash,
		Hash:       *raw.Hash,
		Data:       raw.Data,
		Difficulty: *raw.Difficulty,
		Nonce:      *raw.Nonce,
	}

	return nil
}

// Equal reports whether both blocks carry the same values.
func (b Block) Equal(other Block) bool {
	if b.Timestamp != other.Timestamp || b.LastHash != other.LastHash || b.Hash != other.Hash ||
		b.Difficulty != other.Difficulty || b.Nonce != other.Nonce || len(b.Data) != len(other.Data) {
		return false
	}

	for i := range b.Data {
		if !b.Data[i].Equal(other.Data[i]) {
			return false
		}
	}

	return true
}

// ValidateBlock takes a block and validates it can follow the last block.
// The checks run in a fixed order and the first failing check determines
// the error kind.
func ValidateBlock(lastBlock Block, block Block) error {
	if block.LastHash != lastBlock.Hash {
		return newError(KindInvalidLastHash, "block %s: last hash %s, exp %s", block.Hash, block.LastHash, lastBlock.Hash)
	}

	if !signature.IsHashSolved(block.Difficulty, block.Hash) {
		return newError(KindInvalidProofOfWork, "block %s: hash does not meet difficulty %d", block.Hash, block.Difficulty)
	}

	if block.Difficulty < 1 || diff(lastBlock.Difficulty, block.Difficulty) > 1 {
		return newError(KindInvalidDifficultyJump, "block %s: difficulty %d, parent difficulty %d", block.Hash, block.Difficulty, lastBlock.Difficulty)
	}

	if hash := block.computeHash(); hash != block.Hash {
		return newError(KindInvalidBlockHash, "block %s: recomputed hash %s", block.Hash, hash)
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%s:%d:%d", b.Hash, b.Difficulty, len(b.Data))
}

// =============================================================================

// computeHash returns the hash of the block's fields other than the
// stored hash.
func (b Block) computeHash() string {
	data := b.Data
	if data == nil {
		data = []Tx{}
	}

	return signature.Hash(b.Timestamp, b.LastHash, data, b.Difficulty, b.Nonce)
}

// diff returns the absolute difference between two difficulties.
func diff(a, b uint) uint {
	if a > b {
		return a - b
	}
	return b - a
}
