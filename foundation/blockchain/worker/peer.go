package worker

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// maxPeerChainRequests represents the max number of pending chain requests
// that can be outstanding before new requests are dropped.
const maxPeerChainRequests = 10

// =============================================================================

// peerOperations handles finding new peers.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runPeersOperation updates the peer list.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	for _, peer := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(peer)
		if err != nil {
			w.evHandler("worker: runPeersOperation: queryPeerStatus: %s: ERROR: %s", peer.Host, err)
			w.state.RemoveKnownPeer(peer)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)
	}

	// get the latest peers and let them know this node is available to chat
	for _, peer := range w.state.RetrieveKnownPeers() {
		if err := w.state.NetRequestAddPeer(peer); err != nil {
			w.evHandler("worker: runPeersOperation: addPeer: %s: ERROR: %s", peer.Host, err)
		}
	}
}

// addNewPeers takes the list of known peers and makes sure they are included
// in the nodes list of know peers.
func (w *Worker) addNewPeers(knownPeers []peer.Peer) {
	w.evHandler("worker: runPeerUpdatesOperation: addNewPeers: started")
	defer w.evHandler("worker: runPeerUpdatesOperation: addNewPeers: completed")

	for _, peer := range knownPeers {

		// Don't add this running node to the known peer list.
		if peer.Match(w.state.RetrieveHost()) {
			continue
		}

		if w.state.AddKnownPeer(peer) {
			w.evHandler("worker: runPeerUpdatesOperation: addNewPeers: add peer nodes: adding peer-node %s", peer.Host)
		}
	}
}

// =============================================================================

// peerChainOperations handles requests for the full chain of a peer.
func (w *Worker) peerChainOperations() {
	w.evHandler("worker: peerChainOperations: G started")
	defer w.evHandler("worker: peerChainOperations: G completed")

	for {
		select {
		case pr := <-w.peerChain:
			if !w.isShutdown() {
				w.runPeerChainOperation(pr)
			}
		case <-w.shut:
			w.evHandler("worker: peerChainOperations: received shut signal")
			return
		}
	}
}

// runPeerChainOperation requests the full chain from the peer and attempts
// to replace the local chain with it.
func (w *Worker) runPeerChainOperation(pr peer.Peer) {
	w.evHandler("worker: runPeerChainOperation: started: peer[%s]", pr.Host)
	defer w.evHandler("worker: runPeerChainOperation: completed")

	blocks, err := w.state.NetRequestPeerChain(pr)
	if err != nil {
		w.evHandler("worker: runPeerChainOperation: requestPeerChain: %s: ERROR: %s", pr.Host, err)
		return
	}

	if err := w.state.ProcessPeerChain(blocks); err != nil {
		w.evHandler("worker: runPeerChainOperation: processPeerChain: %s: WARNING: %s", pr.Host, err)
	}
}
