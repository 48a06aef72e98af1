package wallet_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	address  = database.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
)

// chain is a fixed set of blocks for computing balances.
type chain []database.Block

func (c chain) Blocks() []database.Block {
	return c
}

// =============================================================================

func Test_Identity(t *testing.T) {
	t.Log("Given the need to derive a wallet's identity from its key.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a known private key.", testID)
		{
			pk, err := crypto.HexToECDSA(pkHexKey)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a private key: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to generate a private key.", success, testID)

			w := wallet.FromKey(pk, nil)

			if w.Address() != address {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, w.Address())
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, address)
				t.Fatalf("\t%s\tTest %d:\tShould derive the correct address.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould derive the correct address.", success, testID)

			if !w.Address().IsAccountID() {
				t.Fatalf("\t%s\tTest %d:\tShould derive a valid account id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould derive a valid account id.", success, testID)

			value := map[string]int{"a": 1}
			sig, err := w.Sign(value)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign a value: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to sign a value.", success, testID)

			if !signature.Verify(w.PublicKey(), value, sig) {
				t.Fatalf("\t%s\tTest %d:\tShould verify with the wallet's public key.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould verify with the wallet's public key.", success, testID)
		}
	}
}

func Test_Balance(t *testing.T) {
	type table struct {
		name  string
		chain func(w *wallet.Wallet, other database.AccountID) chain
		exp   uint64
	}

	tt := []table{
		{
			name: "empty",
			chain: func(w *wallet.Wallet, other database.AccountID) chain {
				return chain{database.Genesis()}
			},
			exp: genesis.StartingBalance,
		},
		{
			name: "sent",
			chain: func(w *wallet.Wallet, other database.AccountID) chain {
				tx, _ := database.NewTx(w, other, 100)
				return chain{database.Genesis(), {Data: []database.Tx{tx}}}
			},
			exp: genesis.StartingBalance - 100,
		},
		{
			name: "received",
			chain: func(w *wallet.Wallet, other database.AccountID) chain {
				return chain{database.Genesis(), {Data: []database.Tx{database.NewRewardTx(w.Address())}}}
			},
			exp: genesis.StartingBalance + genesis.MiningReward,
		},
	}

	t.Log("Given the need to compute a wallet's balance from the chain.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s chain.", testID, tst.name)
			{
				f := func(t *testing.T) {
					w, err := wallet.New(nil)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to create a wallet: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to create a wallet.", success, testID)

					c := tst.chain(w, "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
					w = wallet.FromKey(w.PrivateKey(), c)

					if got := w.Balance(); got != tst.exp {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.exp)
						t.Fatalf("\t%s\tTest %d:\tShould have the correct balance.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould have the correct balance.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_SaveLoad(t *testing.T) {
	t.Log("Given the need to persist a wallet's key.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen saving and loading a key file.", testID)
		{
			w, err := wallet.New(nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to create a wallet: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to create a wallet.", success, testID)

			path := filepath.Join(t.TempDir(), "miner.ecdsa")

			if err := w.Save(path); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to save the key: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to save the key.", success, testID)

			loaded, err := wallet.Load(path, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the key: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to load the key.", success, testID)

			if loaded.Address() != w.Address() || loaded.PublicKey() != w.PublicKey() {
				t.Fatalf("\t%s\tTest %d:\tShould load the same identity.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould load the same identity.", success, testID)

			if _, err := wallet.Load(filepath.Join(t.TempDir(), "missing.ecdsa"), nil); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail to load a missing key.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould fail to load a missing key.", success, testID)
		}
	}
}
