// Package wallet maintains the identity used to send value on the chain. A
// wallet holds a private key, derives its address from it, and computes its
// balance by replaying the chain.
package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Chain represents the behavior required to read the blocks a balance is
// replayed from.
type Chain interface {
	Blocks() []database.Block
}

// Wallet holds a private key and the chain its balance is computed from.
// It implements the database.Signer interface.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    database.AccountID
	publicKey  string
	chain      Chain
}

// New constructs a wallet with a freshly generated private key. A nil chain
// reports the starting balance.
func New(chain Chain) (*Wallet, error) {
	privateKey, err := signature.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return FromKey(privateKey, chain), nil
}

// FromKey constructs a wallet for an existing private key.
func FromKey(privateKey *ecdsa.PrivateKey, chain Chain) *Wallet {
	return &Wallet{
		privateKey: privateKey,
		address:    database.PublicKeyToAccountID(privateKey.PublicKey),
		publicKey:  signature.PublicKeyString(privateKey.PublicKey),
		chain:      chain,
	}
}

// Load reads the private key stored in the specified file.
func Load(path string, chain Chain) (*Wallet, error) {
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("loading key %s: %w", path, err)
	}

	return FromKey(privateKey, chain), nil
}

// Save writes the private key to the specified file.
func (w *Wallet) Save(path string) error {
	if err := crypto.SaveECDSA(path, w.privateKey); err != nil {
		return fmt.Errorf("saving key %s: %w", path, err)
	}

	return nil
}

// Address returns the account derived from the wallet's public key.
func (w *Wallet) Address() database.AccountID {
	return w.address
}

// PublicKey returns the hex encoded public key of the wallet.
func (w *Wallet) PublicKey() string {
	return w.publicKey
}

// PrivateKey returns the private key of the wallet.
func (w *Wallet) PrivateKey() *ecdsa.PrivateKey {
	return w.privateKey
}

// Balance replays the chain to compute the wallet's balance. Pending
// transactions are not taken into account.
func (w *Wallet) Balance() uint64 {
	if w.chain == nil {
		return database.CalculateBalance(nil, w.address)
	}

	return database.CalculateBalance(w.chain.Blocks(), w.address)
}

// Sign signs the value with the wallet's private key.
func (w *Wallet) Sign(value any) (string, error) {
	return signature.Sign(value, w.privateKey)
}
