package mempool_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const to = database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")

func newTx(t *testing.T, w *wallet.Wallet, amount uint64, timestamp int64) database.Tx {
	t.Helper()

	tx, err := database.NewTx(w, to, amount)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create transaction: %v", failed, err)
	}
	tx.Input.Timestamp = timestamp

	return tx
}

func newWallet(t *testing.T) *wallet.Wallet {
	t.Helper()

	w, err := wallet.New(nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create wallet: %v", failed, err)
	}

	return w
}

// =============================================================================

func TestCRUD(t *testing.T) {
	t.Log("Given the need to validate mempool api.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a set of transactions.", testID)
		{
			bill := newWallet(t)
			pavel := newWallet(t)

			txs := []database.Tx{
				newTx(t, bill, 10, 300),
				newTx(t, pavel, 20, 100),
				newTx(t, bill, 30, 200),
			}

			mp := mempool.New()
			for _, tx := range txs {
				if _, err := mp.Upsert(tx); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to add transaction %s: %v", failed, testID, tx, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to add transaction %s.", success, testID, tx)
			}

			if _, err := mp.Upsert(database.Tx{}); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a transaction without an id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a transaction without an id.", success, testID)

			exp := []database.Tx{txs[1], txs[2], txs[0]}
			for i, tx := range mp.Copy() {
				if tx.ID != exp[i].ID {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx)
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp[i])
					t.Fatalf("\t%s\tTest %d:\tShould list the transactions by timestamp.", failed, testID)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould list the transactions by timestamp.", success, testID)

			existing, ok := mp.ExistingTx(bill.Address())
			if !ok || existing.ID != txs[0].ID {
				t.Fatalf("\t%s\tTest %d:\tShould find the most recent transaction for the sender.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould find the most recent transaction for the sender.", success, testID)

			if _, ok := mp.ExistingTx(to); ok {
				t.Fatalf("\t%s\tTest %d:\tShould not find a transaction for a recipient.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not find a transaction for a recipient.", success, testID)

			if err := existing.Update(bill, pavel.Address(), 5); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to update the transaction: %v", failed, testID, err)
			}
			if n, _ := mp.Upsert(existing); n != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould replace the updated transaction, got %d.", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould replace the updated transaction.", success, testID)

			hijack := newTx(t, pavel, 1, 400)
			hijack.ID = txs[0].ID
			if _, err := mp.Upsert(hijack); !errors.Is(err, database.ErrDuplicateTransaction) {
				t.Fatalf("\t%s\tTest %d:\tShould not let another sender replace a transaction: %v", failed, testID, err)
			}
			if got, _ := mp.ExistingTx(bill.Address()); got.ID != txs[0].ID || got.Input.Address != bill.Address() {
				t.Fatalf("\t%s\tTest %d:\tShould keep the sender's pending transaction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not let another sender replace a transaction.", success, testID)

			mp.Delete(txs[1].ID)
			if mp.Count() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould be able to delete a transaction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to delete a transaction.", success, testID)

			mp.Truncate()
			if mp.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould be able to truncate the pool.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to truncate the pool.", success, testID)
		}
	}
}

func TestClearMined(t *testing.T) {
	t.Log("Given the need to drop transactions once they are mined.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a block holds pending transactions.", testID)
		{
			w := newWallet(t)
			mined := newTx(t, w, 10, 100)
			pending := newTx(t, newWallet(t), 20, 200)

			mp := mempool.New()
			mp.Upsert(mined)
			mp.Upsert(pending)

			blocks := []database.Block{
				database.Genesis(),
				{Data: []database.Tx{mined, database.NewRewardTx(w.Address())}},
			}

			if removed := mp.ClearMined(blocks); removed != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould remove one transaction, got %d.", failed, testID, removed)
			}
			t.Logf("\t%s\tTest %d:\tShould remove one transaction.", success, testID)

			txs := mp.Copy()
			if len(txs) != 1 || txs[0].ID != pending.ID {
				t.Fatalf("\t%s\tTest %d:\tShould keep the pending transaction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the pending transaction.", success, testID)
		}
	}
}

func TestPickBest(t *testing.T) {
	bill := newWallet(t)
	pavel := newWallet(t)
	ed := newWallet(t)

	billOld := newTx(t, bill, 10, 100)
	billNew := newTx(t, bill, 10, 400)
	pavelTx := newTx(t, pavel, 10, 200)
	edTx := newTx(t, ed, 10, 300)

	type table struct {
		name    string
		howMany int
		best    []database.Tx
	}

	tt := []table{
		{name: "all", howMany: -1, best: []database.Tx{pavelTx, edTx, billNew}},
		{name: "two", howMany: 2, best: []database.Tx{pavelTx, edTx}},
		{name: "more", howMany: 10, best: []database.Tx{pavelTx, edTx, billNew}},
		{name: "none", howMany: 0, best: []database.Tx{}},
	}

	t.Log("Given the need to pick transactions for the next block.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen picking %s transactions.", testID, tst.name)
			{
				f := func(t *testing.T) {
					mp := mempool.New()
					for _, tx := range []database.Tx{billOld, billNew, pavelTx, edTx} {
						mp.Upsert(tx)
					}

					best := mp.PickBest(tst.howMany)
					if len(best) != len(tst.best) {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, len(best))
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, len(tst.best))
						t.Fatalf("\t%s\tTest %d:\tShould get the right number of transactions.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the right number of transactions.", success, testID)

					for i, tx := range best {
						if tx.ID != tst.best[i].ID {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.best[i])
							t.Fatalf("\t%s\tTest %d:\tShould get back the right transactions.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right transactions.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
