package state

import (
	"context"
	"errors"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// MineNewBlock gathers the pending transactions and the mining reward for
// this node's wallet into a new block and mines it onto the chain. The mined
// transactions are removed from the mempool.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: pick transactions")

	txs := s.pickTransactions()
	txs = append(txs, database.NewRewardTx(s.wallet.Address()))

	s.evHandler("state: MineNewBlock: MINING: perform POW: txs[%d]", len(txs))

	// Attempt to create a new block by solving the POW puzzle. This can be
	// cancelled and is discarded if the chain changed in the meantime.
	block, err := s.db.AddBlock(ctx, txs)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: remove from mempool")

	removed := s.mempool.ClearMined([]database.Block{block})

	s.evHandler("viewer: block: mined: blk[%s]: removed txs[%d]", block, removed)

	return block, nil
}

// ProcessProposedBlock takes a block received from a peer and attempts to
// extend the local chain with it. The candidate chain must pass full chain
// validation before it replaces the local chain.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: blk[%s]", block)
	defer s.evHandler("state: ProcessProposedBlock: completed")

	// If the runMiningOperation function is being executed it needs to stop
	// immediately. The G executing runMiningOperation will not return from the
	// function until done is called. That allows this function to complete
	// its state changes before a new mining operation takes place.
	done := s.Worker.SignalCancelMining()
	defer func() {
		s.evHandler("state: ProcessProposedBlock: signal runMiningOperation to terminate")
		done()
	}()

	candidate := append(s.db.Blocks(), block)
	if err := s.db.ReplaceChain(candidate); err != nil {
		return err
	}

	removed := s.mempool.ClearMined([]database.Block{block})

	s.evHandler("viewer: block: accepted: blk[%s]: removed txs[%d]", block, removed)

	return nil
}

// ProcessProposedBlockFrom handles a block proposed by the specified peer.
// When the block does not extend the local chain the peer's full chain is
// requested in the background.
func (s *State) ProcessProposedBlockFrom(pr peer.Peer, block database.Block) error {
	err := s.ProcessProposedBlock(block)
	if err == nil {
		return nil
	}

	if pr.Host != "" && errors.Is(err, database.ErrInvalidLastHash) {
		s.evHandler("state: ProcessProposedBlockFrom: block does not attach: request chain from peer[%s]", pr.Host)
		s.Worker.SignalPeerChain(pr)
	}

	return err
}

// ProcessPeerChain attempts to replace the local chain with the chain
// provided by a peer.
func (s *State) ProcessPeerChain(blocks []database.Block) error {
	s.evHandler("state: ProcessPeerChain: started: length[%d]", len(blocks))
	defer s.evHandler("state: ProcessPeerChain: completed")

	done := s.Worker.SignalCancelMining()
	defer done()

	if err := s.db.ReplaceChain(blocks); err != nil {
		return err
	}

	removed := s.mempool.ClearMined(blocks)

	s.evHandler("viewer: chain: replaced: length[%d]: removed txs[%d]", len(blocks), removed)

	return nil
}

// =============================================================================

// pickTransactions selects the pending transactions that are valid against
// the current chain. Transactions whose declared balance no longer matches
// the chain are removed from the mempool.
func (s *State) pickTransactions() []database.Tx {
	var txs []database.Tx

	for _, tx := range s.mempool.PickBest(-1) {
		if err := s.validateTransaction(tx); err != nil {
			s.evHandler("state: pickTransactions: WARNING: dropping tx[%s]: %s", tx, err)
			s.mempool.Delete(tx.ID)
			continue
		}

		txs = append(txs, tx)
	}

	return txs
}
