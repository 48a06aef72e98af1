package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount uint64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	Run: func(cmd *cobra.Command, args []string) {
		w, err := wallet.Load(getPrivateKeyPath(), nil)
		if err != nil {
			log.Fatal(err)
		}

		if err := sendWithDetails(w); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account to send to.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
}

// remoteSigner signs with the local key using the balance the node reports
// for the account.
type remoteSigner struct {
	*wallet.Wallet
	balance uint64
}

func (rs remoteSigner) Balance() uint64 {
	return rs.balance
}

func sendWithDetails(w *wallet.Wallet) error {
	toID, err := database.ToAccountID(to)
	if err != nil {
		return err
	}

	bal, err := queryBalance(w.Address())
	if err != nil {
		return err
	}

	tx, err := database.NewTx(remoteSigner{Wallet: w, balance: bal}, toID, amount)
	if err != nil {
		return err
	}

	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node rejected transaction: %s", body)
	}

	fmt.Println(tx.ID)
	return nil
}
