package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

type balance struct {
	Address database.AccountID `json:"address"`
	Balance uint64             `json:"balance"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	w, err := wallet.Load(getPrivateKeyPath(), nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("For Account:", w.Address())

	bal, err := queryBalance(w.Address())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(bal)
}

// queryBalance asks the node for the balance of the account on its chain.
func queryBalance(accountID database.AccountID) (uint64, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/balance/%s", url, accountID))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("node responded with status %s", resp.Status)
	}

	var bal balance
	if err := json.NewDecoder(resp.Body).Decode(&bal); err != nil {
		return 0, err
	}

	return bal.Balance, nil
}
