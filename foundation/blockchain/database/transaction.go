package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// Signer represents the behavior required to create and update a transaction
// on behalf of a sender. The wallet package provides the implementation.
type Signer interface {
	Address() AccountID
	PublicKey() string
	Balance() uint64
	Sign(value any) (string, error)
}

// =============================================================================

// Input identifies the sender of a transaction and carries the signature
// over the transaction output. A reward transaction carries the reward
// sentinel instead.
type Input struct {
	Timestamp int64     `json:"timestamp"`  // Time the output was signed.
	Amount    uint64    `json:"amount"`     // Balance of the sender at signing time.
	Address   AccountID `json:"address"`    // Account of the sender.
	PublicKey string    `json:"public_key"` // Hex encoded public key of the sender.
	Signature string    `json:"signature"`  // Signature over the output.
}

// RewardInput returns the sentinel input used by reward transactions.
func RewardInput() Input {
	return Input{Address: genesis.RewardAddress}
}

// IsReward reports whether the input is the reward sentinel.
func (in Input) IsReward() bool {
	return in == RewardInput()
}

// MarshalJSON implements the json.Marshaler interface. The reward sentinel
// is written with only its address.
func (in Input) MarshalJSON() ([]byte, error) {
	if in.IsReward() {
		sentinel := struct {
			Address AccountID `json:"address"`
		}{
			Address: in.Address,
		}
		return json.Marshal(sentinel)
	}

	type input Input
	return json.Marshal(input(in))
}

// UnmarshalJSON implements the json.Unmarshaler interface. Every field of a
// signed input must be present.
func (in *Input) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp *int64     `json:"timestamp"`
		Amount    *uint64    `json:"amount"`
		Address   *AccountID `json:"address"`
		PublicKey *string    `json:"public_key"`
		Signature *string    `json:"signature"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return malformed("input", err)
	}

	if raw.Address == nil {
		return newError(KindMalformedRecord, "input: missing address")
	}

	if *raw.Address == genesis.RewardAddress && raw.Timestamp == nil && raw.Amount == nil && raw.PublicKey == nil && raw.Signature == nil {
		*in = RewardInput()
		return nil
	}

	var missing []string
	if raw.Timestamp == nil {
		missing = append(missing, "timestamp")
	}
	if raw.Amount == nil {
		missing = append(missing, "amount")
	}
	if raw.PublicKey == nil {
		missing = append(missing, "public_key")
	}
	if raw.Signature == nil {
		missing = append(missing, "signature")
	}
	if len(missing) > 0 {
		return newError(KindMalformedRecord, "input %s: missing fields %v", *raw.Address, missing)
	}

	*in = Input{
		Timestamp: *raw.Timestamp,
		Amount:    *raw.Amount,
		Address:   *raw.Address,
		PublicKey: *raw.PublicKey,
		Signature: *raw.Signature,
	}

	return nil
}

// =============================================================================

// Tx is a signed transfer of value from a single sender to one or more
// recipients. The sender's remaining balance is one of the outputs.
type Tx struct {
	ID     string               `json:"id"`
	Output map[AccountID]uint64 `json:"output"`
	Input  Input                `json:"input"`
}

// NewTx constructs a new transaction sending the amount to the recipient
// from the sender's current balance.
func NewTx(sender Signer, to AccountID, amount uint64) (Tx, error) {
	balance := sender.Balance()
	if amount > balance {
		return Tx{}, newError(KindAmountExceedsBalance, "amount %d exceeds balance %d", amount, balance)
	}

	// When the sender is also the recipient, the second write wins.
	output := map[AccountID]uint64{
		to: amount,
	}
	output[sender.Address()] = balance - amount

	input, err := newInput(sender, balance, output)
	if err != nil {
		return Tx{}, err
	}

	tx := Tx{
		ID:     uuid.NewString(),
		Output: output,
		Input:  input,
	}

	return tx, nil
}

// NewRewardTx constructs the transaction paying the mining reward to
// the miner.
func NewRewardTx(miner AccountID) Tx {
	return Tx{
		ID: uuid.NewString(),
		Output: map[AccountID]uint64{
			miner: genesis.MiningReward,
		},
		Input: RewardInput(),
	}
}

// ToTx converts the serialized form of a transaction into a Tx.
func ToTx(data []byte) (Tx, error) {
	var tx Tx
	if err := json.Unmarshal(data, &tx); err != nil {
		return Tx{}, malformed("transaction", err)
	}

	return tx, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. The id, output,
// and input fields must all be present.
func (tx *Tx) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     *string              `json:"id"`
		Output map[AccountID]uint64 `json:"output"`
		Input  json.RawMessage      `json:"input"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return malformed("transaction", err)
	}

	if raw.ID == nil || *raw.ID == "" {
		return newError(KindMalformedRecord, "transaction: missing id")
	}

	if raw.Output == nil {
		return newError(KindMalformedRecord, "transaction %s: missing output", *raw.ID)
	}

	if len(raw.Input) == 0 {
		return newError(KindMalformedRecord, "transaction %s: missing input", *raw.ID)
	}

	var input Input
	if err := json.Unmarshal(raw.Input, &input); err != nil {
		return malformed(fmt.Sprintf("transaction %s", *raw.ID), err)
	}

	*tx = Tx{
		ID:     *raw.ID,
		Output: raw.Output,
		Input:  input,
	}

	return nil
}

// Update adds another transfer to a transaction that has not been mined.
// The input is signed again over the new output.
func (tx *Tx) Update(sender Signer, to AccountID, amount uint64) error {
	from := sender.Address()

	remaining := tx.Output[from]
	if amount > remaining {
		return newError(KindAmountExceedsBalance, "transaction %s: amount %d exceeds remaining balance %d", tx.ID, amount, remaining)
	}

	// Work on a copy so a failure to sign leaves the transaction untouched.
	output := maps.Clone(tx.Output)
	if output == nil {
		output = make(map[AccountID]uint64)
	}
	output[to] += amount
	output[from] -= amount

	input, err := newInput(sender, tx.Input.Amount, output)
	if err != nil {
		return err
	}

	tx.Output = output
	tx.Input = input

	return nil
}

// TotalOutput returns the sum of every output amount.
func (tx Tx) TotalOutput() (uint64, bool) {
	var total uint64
	for _, amount := range tx.Output {
		if total+amount < total {
			return 0, false
		}
		total += amount
	}

	return total, true
}

// Equal reports whether both transactions carry the same id, input,
// and output.
func (tx Tx) Equal(other Tx) bool {
	return tx.ID == other.ID && tx.Input == other.Input && maps.Equal(tx.Output, other.Output)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	if tx.Input.IsReward() {
		return fmt.Sprintf("%s:reward", tx.ID)
	}

	return fmt.Sprintf("%s:%s", tx.ID, tx.Input.Address)
}

// =============================================================================

// ValidateTx checks a single transaction on its own. A reward transaction
// must pay exactly the mining reward to one account. Any other transaction
// must spend exactly the declared input amount and carry a signature over
// its output from the public key that owns the input address.
func ValidateTx(tx Tx) error {
	if tx.Input.IsReward() {
		if len(tx.Output) != 1 {
			return newError(KindInvalidReward, "transaction %s: reward has %d outputs", tx.ID, len(tx.Output))
		}

		for account, amount := range tx.Output {
			if amount != genesis.MiningReward {
				return newError(KindInvalidReward, "transaction %s: reward of %d to %s, exp %d", tx.ID, amount, account, genesis.MiningReward)
			}
		}

		return nil
	}

	total, ok := tx.TotalOutput()
	if !ok || total != tx.Input.Amount {
		return newError(KindInvalidOutputSum, "transaction %s: output total %d, input amount %d", tx.ID, total, tx.Input.Amount)
	}

	address, err := signature.PublicKeyStringToAddress(tx.Input.PublicKey)
	if err != nil {
		return &Error{Kind: KindInvalidSignature, Msg: fmt.Sprintf("transaction %s", tx.ID), Err: err}
	}

	if AccountID(address) != tx.Input.Address {
		return newError(KindInvalidSignature, "transaction %s: public key belongs to %s, input address %s", tx.ID, address, tx.Input.Address)
	}

	if !signature.Verify(tx.Input.PublicKey, tx.Output, tx.Input.Signature) {
		return newError(KindInvalidSignature, "transaction %s: signature does not match output", tx.ID)
	}

	return nil
}

// =============================================================================

// newInput signs the output on behalf of the sender who held the specified
// balance when the transaction was created.
func newInput(sender Signer, balance uint64, output map[AccountID]uint64) (Input, error) {
	sig, err := sender.Sign(output)
	if err != nil {
		return Input{}, fmt.Errorf("signing output: %w", err)
	}

	input := Input{
		Timestamp: time.Now().UnixNano(),
		Amount:    balance,
		Address:   sender.Address(),
		PublicKey: sender.PublicKey(),
		Signature: sig,
	}

	return input, nil
}

// malformed wraps a decoding failure as a malformed record error unless it
// already is one.
func malformed(what string, err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindMalformedRecord {
		return err
	}

	return &Error{Kind: KindMalformedRecord, Msg: what, Err: err}
}
