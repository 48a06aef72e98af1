package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveBlocks returns a copy of the full chain.
func (s *State) RetrieveBlocks() []database.Block {
	return s.db.Blocks()
}

// RetrieveChainLength returns the number of blocks in the chain.
func (s *State) RetrieveChainLength() int {
	return s.db.Length()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveWalletAccount returns the account of this node's wallet.
func (s *State) RetrieveWalletAccount() database.AccountID {
	return s.wallet.Address()
}

// RetrievePeerStatus returns the status of this node shared with peers.
func (s *State) RetrievePeerStatus() peer.PeerStatus {
	return peer.PeerStatus{
		LatestBlockHash: s.db.LatestBlock().Hash,
		ChainLength:     s.db.Length(),
		PendingTxs:      s.mempool.Count(),
		KnownPeers:      s.RetrieveKnownPeers(),
	}
}
