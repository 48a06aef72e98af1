package database

import (
	"errors"
	"fmt"
)

// Kind identifies the reason a record, block, or chain was rejected.
type Kind int

// Set of error kinds reported by the database package.
const (
	KindMalformedRecord Kind = iota + 1
	KindInvalidGenesis
	KindInvalidLastHash
	KindInvalidProofOfWork
	KindInvalidDifficultyJump
	KindInvalidBlockHash
	KindAmountExceedsBalance
	KindInvalidOutputSum
	KindInvalidSignature
	KindInvalidReward
	KindDuplicateTransaction
	KindInvalidHistoricalBalance
	KindChainTooShort
	KindChainInvalid
)

var kindNames = map[Kind]string{
	KindMalformedRecord:          "malformed record",
	KindInvalidGenesis:           "invalid genesis",
	KindInvalidLastHash:          "invalid last hash",
	KindInvalidProofOfWork:       "invalid proof of work",
	KindInvalidDifficultyJump:    "invalid difficulty jump",
	KindInvalidBlockHash:         "invalid block hash",
	KindAmountExceedsBalance:     "amount exceeds balance",
	KindInvalidOutputSum:         "invalid output sum",
	KindInvalidSignature:         "invalid signature",
	KindInvalidReward:            "invalid reward",
	KindDuplicateTransaction:     "duplicate transaction",
	KindInvalidHistoricalBalance: "invalid historical balance",
	KindChainTooShort:            "chain too short",
	KindChainInvalid:             "chain invalid",
}

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	if name, exists := kindNames[k]; exists {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// =============================================================================

// Set of sentinel values for use with errors.Is. Any Error with the same
// kind matches, regardless of its message.
var (
	ErrMalformedRecord          = &Error{Kind: KindMalformedRecord}
	ErrInvalidGenesis           = &Error{Kind: KindInvalidGenesis}
	ErrInvalidLastHash          = &Error{Kind: KindInvalidLastHash}
	ErrInvalidProofOfWork       = &Error{Kind: KindInvalidProofOfWork}
	ErrInvalidDifficultyJump    = &Error{Kind: KindInvalidDifficultyJump}
	ErrInvalidBlockHash         = &Error{Kind: KindInvalidBlockHash}
	ErrAmountExceedsBalance     = &Error{Kind: KindAmountExceedsBalance}
	ErrInvalidOutputSum         = &Error{Kind: KindInvalidOutputSum}
	ErrInvalidSignature         = &Error{Kind: KindInvalidSignature}
	ErrInvalidReward            = &Error{Kind: KindInvalidReward}
	ErrDuplicateTransaction     = &Error{Kind: KindDuplicateTransaction}
	ErrInvalidHistoricalBalance = &Error{Kind: KindInvalidHistoricalBalance}
	ErrChainTooShort            = &Error{Kind: KindChainTooShort}
	ErrChainInvalid             = &Error{Kind: KindChainInvalid}
)

// Error is the error value returned for every rejected record, block,
// or chain.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// newError constructs an Error of the specified kind.
func newError(kind Kind, format string, args ...any) error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Msg == "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
}

// Unwrap provides access to the cause of a chain rejection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any Error carrying the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the outer most Error in the chain of errors.
// Zero is returned when the error is not from this package.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}
	return e.Kind
}
