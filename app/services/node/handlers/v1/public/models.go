package public

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

type transact struct {
	Recipient database.AccountID `json:"recipient" validate:"required,account"`
	Amount    uint64             `json:"amount" validate:"required,gt=0"`
}

type balance struct {
	Address database.AccountID `json:"address"`
	Balance uint64             `json:"balance"`
}

type address struct {
	Address database.AccountID `json:"address"`
	Name    string             `json:"name"`
}
