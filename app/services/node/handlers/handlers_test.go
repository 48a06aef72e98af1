package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const accountY = database.AccountID("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76")

type node struct {
	state   *state.State
	public  http.Handler
	private http.Handler
}

func newNode(t *testing.T) node {
	t.Helper()

	storage, err := memory.New()
	if err != nil {
		t.Fatalf("Should be able to construct memory storage: %v", err)
	}

	st, err := state.New(state.Config{
		Host:    "localhost:9080",
		Storage: storage,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %v", err)
	}
	t.Cleanup(func() { st.Shutdown() })

	ns, err := nameservice.New(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %v", err)
	}

	cfg := handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	}

	return node{
		state:   st,
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
	}
}

func call(h http.Handler, method string, path string, body any, resp any) int {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if resp != nil && w.Code == http.StatusOK {
		json.NewDecoder(w.Body).Decode(resp)
	}

	return w.Code
}

// =============================================================================

func Test_PublicAPI(t *testing.T) {
	t.Log("Given the need to drive the ledger through the public api.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen transacting and mining.", testID)
		{
			n := newNode(t)

			var length int
			if code := call(n.public, http.MethodGet, "/v1/blockchain/length", nil, &length); code != http.StatusOK || length != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould start with a chain of one block: %d %d", failed, testID, code, length)
			}
			t.Logf("\t%s\tTest %d:\tShould start with a chain of one block.", success, testID)

			req := map[string]any{"recipient": accountY, "amount": 40}
			var tx database.Tx
			if code := call(n.public, http.MethodPost, "/v1/wallet/transact", req, &tx); code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be able to transact: %d", failed, testID, code)
			}
			if tx.Output[accountY] != 40 {
				t.Fatalf("\t%s\tTest %d:\tShould send the amount to the recipient: %v", failed, testID, tx.Output)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to transact.", success, testID)

			var pending []database.Tx
			if code := call(n.public, http.MethodGet, "/v1/transactions", nil, &pending); code != http.StatusOK || len(pending) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould list the pending transaction: %d %d", failed, testID, code, len(pending))
			}
			t.Logf("\t%s\tTest %d:\tShould list the pending transaction.", success, testID)

			var block database.Block
			if code := call(n.public, http.MethodPost, "/v1/blockchain/mine", nil, &block); code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %d", failed, testID, code)
			}
			if len(block.Data) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould mine the transaction and the reward: %d", failed, testID, len(block.Data))
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine.", success, testID)

			var bal struct {
				Balance uint64 `json:"balance"`
			}
			path := fmt.Sprintf("/v1/balance/%s", accountY)
			if code := call(n.public, http.MethodGet, path, nil, &bal); code != http.StatusOK || bal.Balance != genesis.StartingBalance+40 {
				t.Fatalf("\t%s\tTest %d:\tShould report the recipient balance: %d %d", failed, testID, code, bal.Balance)
			}
			t.Logf("\t%s\tTest %d:\tShould report the recipient balance.", success, testID)

			var blocks []database.Block
			if code := call(n.public, http.MethodGet, "/v1/blockchain/range?start=0&end=1", nil, &blocks); code != http.StatusOK || len(blocks) != 1 || blocks[0].Hash != block.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould return the newest block first: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould return the newest block first.", success, testID)

			var addrs []struct {
				Address database.AccountID `json:"address"`
			}
			if code := call(n.public, http.MethodGet, "/v1/known-addresses", nil, &addrs); code != http.StatusOK || len(addrs) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould list the known addresses: %d %d", failed, testID, code, len(addrs))
			}
			t.Logf("\t%s\tTest %d:\tShould list the known addresses.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen sending bad requests.", testID)
		{
			n := newNode(t)

			req := map[string]any{"recipient": "bill", "amount": 40}
			if code := call(n.public, http.MethodPost, "/v1/wallet/transact", req, nil); code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould reject a bad recipient: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a bad recipient.", success, testID)

			req = map[string]any{"recipient": accountY, "amount": genesis.StartingBalance + 1}
			if code := call(n.public, http.MethodPost, "/v1/wallet/transact", req, nil); code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould reject an amount over the balance: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould reject an amount over the balance.", success, testID)

			if code := call(n.public, http.MethodGet, "/v1/blockchain/range?start=2&end=1", nil, nil); code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould reject an inverted range: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould reject an inverted range.", success, testID)
		}
	}
}

func Test_PrivateAPI(t *testing.T) {
	t.Log("Given the need for nodes to share blocks.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a peer proposes a block.", testID)
		{
			miner := newNode(t)
			n := newNode(t)

			var block database.Block
			if code := call(miner.public, http.MethodPost, "/v1/blockchain/mine", nil, &block); code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %d", failed, testID, code)
			}

			proposal := state.BlockProposal{Block: block}
			if code := call(n.private, http.MethodPost, "/v1/node/block/propose", proposal, nil); code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould accept the block: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould accept the block.", success, testID)

			if code := call(n.private, http.MethodPost, "/v1/node/block/propose", proposal, nil); code != http.StatusNotAcceptable {
				t.Fatalf("\t%s\tTest %d:\tShould reject the same block twice: %d", failed, testID, code)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the same block twice.", success, testID)

			var status peer.PeerStatus
			if code := call(n.private, http.MethodGet, "/v1/node/status", nil, &status); code != http.StatusOK || status.ChainLength != 2 || status.LatestBlockHash != block.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould report the new tip: %d %+v", failed, testID, code, status)
			}
			t.Logf("\t%s\tTest %d:\tShould report the new tip.", success, testID)

			if code := call(n.private, http.MethodPost, "/v1/node/peers", peer.New("localhost:9280"), nil); code != http.StatusNoContent {
				t.Fatalf("\t%s\tTest %d:\tShould add the peer: %d", failed, testID, code)
			}
			if peers := n.state.RetrieveKnownPeers(); len(peers) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould know the peer: %v", failed, testID, peers)
			}
			t.Logf("\t%s\tTest %d:\tShould add the peer.", success, testID)
		}
	}
}
