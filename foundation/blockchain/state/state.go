// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"crypto/ecdsa"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and transaction sharing.
type Worker interface {
	Shutdown()
	Sync()
	SignalStartMining()
	SignalCancelMining() (done func())
	SignalShareTx(tx database.Tx)
	SignalPeerChain(pr peer.Peer)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	MinerKey   *ecdsa.PrivateKey
	Host       string
	Storage    database.Storage
	AutoMine   bool
	KnownPeers *peer.PeerSet
	EvHandler  EventHandler
}

// State manages the blockchain database.
type State struct {
	mu        sync.Mutex
	host      string
	autoMine  bool
	evHandler EventHandler

	knownPeers *peer.PeerSet
	genesis    genesis.Genesis
	mempool    *mempool.Mempool
	db         *database.Database
	wallet     *wallet.Wallet

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Access the storage for the blockchain. A stored chain that fails
	// validation stops the node from starting.
	db, err := database.New(cfg.Storage, database.EventHandler(ev))
	if err != nil {
		return nil, err
	}

	// The wallet of this node receives the mining rewards. Without a key
	// the node runs with an identity that lasts for the life of the process.
	var w *wallet.Wallet
	switch cfg.MinerKey {
	case nil:
		w, err = wallet.New(db)
		if err != nil {
			return nil, err
		}
	default:
		w = wallet.FromKey(cfg.MinerKey, db)
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		host:      cfg.Host,
		autoMine:  cfg.AutoMine,
		evHandler: ev,

		knownPeers: knownPeers,
		genesis:    genesis.Load(),
		mempool:    mempool.New(),
		db:         db,
		wallet:     w,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.
	state.Worker = nopWorker{}

	ev("state: New: node[%s]: wallet[%s]: chain length[%d]", state.host, w.Address(), db.Length())

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	// Make sure the database file is properly closed.
	return s.db.Close()
}

// =============================================================================

// nopWorker is used until a worker registers itself with the state.
type nopWorker struct{}

func (nopWorker) Shutdown() {}
func (nopWorker) Sync() {}
func (nopWorker) SignalStartMining() {}
func (nopWorker) SignalCancelMining() (done func()) { return func() {} }
func (nopWorker) SignalShareTx(tx database.Tx) {}
func (nopWorker) SignalPeerChain(pr peer.Peer) {}
