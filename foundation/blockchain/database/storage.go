package database

import "encoding/json"

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// BlockData represents what is written to storage for each block. The
// genesis block is number 0.
type BlockData struct {
	Number uint64 `json:"number"`
	Block  Block  `json:"block"`
}

// NewBlockData constructs the storage form of the block at the specified
// position in the chain.
func NewBlockData(number uint64, block Block) BlockData {
	return BlockData{
		Number: number,
		Block:  block,
	}
}

// ToBlockData converts the serialized storage form back into a BlockData.
func ToBlockData(data []byte) (BlockData, error) {
	var blockData BlockData
	if err := json.Unmarshal(data, &blockData); err != nil {
		return BlockData{}, malformed("block data", err)
	}

	return blockData, nil
}
