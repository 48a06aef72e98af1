// Package genesis maintains the fixed values every chain starts from and the
// economic rules of the ledger.
package genesis

import "time"

// Values of the genesis block. Every valid chain starts with a block
// carrying exactly these values.
const (
	Timestamp  int64  = 1
	LastHash   string = "genesis_last_hash"
	Hash       string = "genesis_hash"
	Difficulty uint   = 3
	Nonce      uint64 = 0
)

// Economic rules of the ledger.
const (
	// MineRate is the target interval between blocks.
	MineRate = 4 * time.Second

	// MiningReward is the amount paid to the miner of a block.
	MiningReward = uint64(50)

	// StartingBalance is the balance of an address before it transacts.
	StartingBalance = uint64(1000)

	// RewardAddress is the input address marking a reward transaction.
	RewardAddress = "*--official-mining-reward--*"
)

// =============================================================================

// Genesis represents the genesis information shared with clients.
type Genesis struct {
	Timestamp       int64  `json:"timestamp"`
	LastHash        string `json:"last_hash"`
	Hash            string `json:"hash"`
	Difficulty      uint   `json:"difficulty"`
	Nonce           uint64 `json:"nonce"`
	MineRate        int64  `json:"mine_rate"` // Nanoseconds.
	MiningReward    uint64 `json:"mining_reward"`
	StartingBalance uint64 `json:"starting_balance"`
	RewardAddress   string `json:"reward_address"`
}

// Load returns the genesis information.
func Load() Genesis {
	return Genesis{
		Timestamp:       Timestamp,
		LastHash:        LastHash,
		Hash:            Hash,
		Difficulty:      Difficulty,
		Nonce:           Nonce,
		MineRate:        int64(MineRate),
		MiningReward:    MiningReward,
		StartingBalance: StartingBalance,
		RewardAddress:   RewardAddress,
	}
}
