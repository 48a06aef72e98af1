package disk_test

import (
	"context"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/disk"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_PersistChain(t *testing.T) {
	t.Log("Given the need to persist the chain in files on disk.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen writing, reading, and replacing blocks.", testID)
		{
			store, err := disk.New(t.TempDir())
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open storage: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to open storage.", success, testID)

			db, err := database.New(store, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the database: %v", failed, testID, err)
			}

			if _, err := db.AddBlock(context.Background(), nil); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to add a block.", success, testID)

			blockData, err := store.GetBlock(1)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to read block 1: %v", failed, testID, err)
			}
			if blockData.Number != 1 || !blockData.Block.Equal(db.LatestBlock()) {
				t.Fatalf("\t%s\tTest %d:\tShould read back the stored block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould read back the stored block.", success, testID)

			reloaded, err := database.New(store, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to reload the chain: %v", failed, testID, err)
			}
			if reloaded.Length() != 2 || reloaded.LatestBlock().Hash != db.LatestBlock().Hash {
				t.Fatalf("\t%s\tTest %d:\tShould reload the same chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reload the same chain.", success, testID)

			if err := store.Reset(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to reset storage: %v", failed, testID, err)
			}

			iter := store.ForEach()
			var count int
			for _, err := iter.Next(); !iter.Done(); _, err = iter.Next() {
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to iterate: %v", failed, testID, err)
				}
				count++
			}
			if count != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould hold no blocks after a reset, got %d.", failed, testID, count)
			}
			t.Logf("\t%s\tTest %d:\tShould hold no blocks after a reset.", success, testID)

			if err := store.Close(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to close storage: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to close storage.", success, testID)
		}
	}
}
