package database

import (
	"encoding/json"

	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// ValidateChain checks the chain starts with the genesis block, that every
// block follows its parent, and that the transactions recorded across the
// chain are consistent with its history.
func ValidateChain(blocks []Block) error {
	if len(blocks) == 0 || !blocks[0].Equal(Genesis()) {
		return newError(KindInvalidGenesis, "chain does not start with the genesis block")
	}

	for i := 1; i < len(blocks); i++ {
		if err := ValidateBlock(blocks[i-1], blocks[i]); err != nil {
			return err
		}
	}

	return ValidateTransactionChain(blocks)
}

// ValidateTransactionChain walks the blocks from oldest to newest checking
// every transaction. Ids must be unique across the chain, a block may carry
// at most one reward, and the balance a sender declares must match the
// balance replayed from the blocks before the one holding the transaction.
func ValidateTransactionChain(blocks []Block) error {
	ids := make(map[string]struct{})

	for i, block := range blocks {
		var rewarded bool

		for _, tx := range block.Data {
			if _, exists := ids[tx.ID]; exists {
				return newError(KindDuplicateTransaction, "block %s: transaction %s", block.Hash, tx.ID)
			}
			ids[tx.ID] = struct{}{}

			switch {
			case tx.Input.IsReward():
				if rewarded {
					return newError(KindInvalidReward, "block %s: transaction %s: more than one reward", block.Hash, tx.ID)
				}
				rewarded = true

			default:
				balance := CalculateBalance(blocks[:i], tx.Input.Address)
				if balance != tx.Input.Amount {
					return newError(KindInvalidHistoricalBalance, "block %s: transaction %s: input amount %d, history %d", block.Hash, tx.ID, tx.Input.Amount, balance)
				}
			}

			if err := ValidateTx(tx); err != nil {
				return err
			}
		}
	}

	return nil
}

// CalculateBalance replays the blocks from oldest to newest to find the
// balance of the account. Every account starts with the starting balance.
// A transaction sent by the account resets the balance to the remainder the
// account declared for itself in that transaction's output. Any other
// transaction paying the account adds to the balance.
func CalculateBalance(blocks []Block, accountID AccountID) uint64 {
	balance := genesis.StartingBalance

	for _, block := range blocks {
		for _, tx := range block.Data {
			amount, exists := tx.Output[accountID]

			switch {
			case tx.Input.Address == accountID:
				balance = amount
			case exists:
				balance += amount
			}
		}
	}

	return balance
}

// ToChain converts the serialized form of a chain into a slice of blocks
// starting with the genesis block. The chain is not validated.
func ToChain(data []byte) ([]Block, error) {
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, malformed("chain", err)
	}

	if blocks == nil {
		return nil, newError(KindMalformedRecord, "chain: expected a list of blocks")
	}

	return blocks, nil
}
