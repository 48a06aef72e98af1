package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Transact sends the amount from this node's wallet to the recipient. A
// pending transaction from the wallet is updated with the new transfer,
// otherwise a new transaction is created.
func (s *State) Transact(to database.AccountID, amount uint64) (database.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, exists := s.mempool.ExistingTx(s.wallet.Address())

	switch exists {
	case true:
		if err := tx.Update(s.wallet, to, amount); err != nil {
			return database.Tx{}, err
		}

	default:
		var err error
		tx, err = database.NewTx(s.wallet, to, amount)
		if err != nil {
			return database.Tx{}, err
		}
	}

	if _, err := s.mempool.Upsert(tx); err != nil {
		return database.Tx{}, err
	}

	s.evHandler("viewer: tx: wallet: tx[%s]: to[%s]: amount[%d]", tx, to, amount)

	s.Worker.SignalShareTx(tx)
	s.signalMining()

	return tx, nil
}

// UpsertWalletTransaction accepts a transaction signed by a wallet outside
// of this node for inclusion.
func (s *State) UpsertWalletTransaction(tx database.Tx) error {
	if err := s.validateTransaction(tx); err != nil {
		return err
	}

	if _, err := s.mempool.Upsert(tx); err != nil {
		return err
	}

	s.evHandler("viewer: tx: submitted: tx[%s]", tx)

	s.Worker.SignalShareTx(tx)
	s.signalMining()

	return nil
}

// UpsertNodeTransaction accepts a transaction shared by a node for inclusion.
// A transaction updated by its sender replaces the pending version.
func (s *State) UpsertNodeTransaction(tx database.Tx) error {
	if tx.Input.IsReward() {
		return &database.Error{Kind: database.KindInvalidReward, Msg: fmt.Sprintf("transaction %s: rewards are only created by miners", tx.ID)}
	}

	if err := database.ValidateTx(tx); err != nil {
		return err
	}

	if err := s.checkNotMined(tx); err != nil {
		return err
	}

	if _, err := s.mempool.Upsert(tx); err != nil {
		return err
	}

	s.evHandler("viewer: tx: shared: tx[%s]", tx)

	s.signalMining()

	return nil
}

// =============================================================================

// validateTransaction checks the transaction against the current chain. It
// must not be mined yet and the balance the sender declares must match.
func (s *State) validateTransaction(tx database.Tx) error {
	if tx.Input.IsReward() {
		return &database.Error{Kind: database.KindInvalidReward, Msg: fmt.Sprintf("transaction %s: rewards are only created by miners", tx.ID)}
	}

	if err := database.ValidateTx(tx); err != nil {
		return err
	}

	if err := s.checkNotMined(tx); err != nil {
		return err
	}

	if balance := s.db.Balance(tx.Input.Address); balance != tx.Input.Amount {
		msg := fmt.Sprintf("transaction %s: input amount %d, chain balance %d", tx.ID, tx.Input.Amount, balance)
		return &database.Error{Kind: database.KindInvalidHistoricalBalance, Msg: msg}
	}

	return nil
}

// checkNotMined rejects a transaction whose id is already on the chain. The
// id is not covered by the signature so it can be reused by anyone.
func (s *State) checkNotMined(tx database.Tx) error {
	if s.db.HasTx(tx.ID) {
		return &database.Error{Kind: database.KindDuplicateTransaction, Msg: fmt.Sprintf("transaction %s: already mined", tx.ID)}
	}

	return nil
}

// signalMining starts a mining operation when the node mines automatically.
func (s *State) signalMining() {
	if s.autoMine {
		s.Worker.SignalStartMining()
	}
}
