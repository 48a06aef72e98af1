// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// Hash returns a unique string for the set of values. Each value is marshaled
// on its own and the results are sorted before hashing, so the order the
// values are provided in does not change the hash.
func Hash(values ...any) string {
	strs := make([]string, len(values))
	for i, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return ZeroHash
		}
		strs[i] = string(data)
	}

	sort.Strings(strs)

	hash := sha256.Sum256([]byte(strings.Join(strs, "")))
	return hex.EncodeToString(hash[:])
}

// HexToBinary expands every hex digit of the hash into its 4 bit binary
// representation.
func HexToBinary(hash string) (string, error) {
	var b strings.Builder
	b.Grow(len(hash) * 4)

	for _, c := range hash {
		n, err := strconv.ParseUint(string(c), 16, 8)
		if err != nil {
			return "", fmt.Errorf("invalid hex character %q", c)
		}
		fmt.Fprintf(&b, "%04b", n)
	}

	return b.String(), nil
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of leading 0 bits.
func IsHashSolved(difficulty uint, hash string) bool {
	bin, err := HexToBinary(hash)
	if err != nil {
		return false
	}

	if uint(len(bin)) < difficulty {
		return false
	}

	return bin[:difficulty] == strings.Repeat("0", int(difficulty))
}

// =============================================================================

// GenerateKey constructs a new private key for signing.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// PublicKeyString returns the hex encoded form of the public key that is
// carried inside a transaction input.
func PublicKeyString(pk ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.FromECDSAPub(&pk))
}

// PublicKeyToAddress converts the public key to its fixed length address.
func PublicKeyToAddress(pk ecdsa.PublicKey) string {
	return crypto.PubkeyToAddress(pk).Hex()
}

// PublicKeyStringToAddress converts a hex encoded public key, as carried in
// a transaction input, to its address.
func PublicKeyStringToAddress(publicKey string) (string, error) {
	data, err := hexutil.Decode(publicKey)
	if err != nil {
		return "", fmt.Errorf("decoding public key: %w", err)
	}

	pk, err := crypto.UnmarshalPubkey(data)
	if err != nil {
		return "", fmt.Errorf("unmarshaling public key: %w", err)
	}

	return PublicKeyToAddress(*pk), nil
}

// Sign uses the specified private key to sign the data.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	// Extract the public key from the data and the signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return "", err
	}

	// Check the public key extracted from the data and signature.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return "", errors.New("invalid signature")
	}

	return hexutil.Encode(sig), nil
}

// Verify checks the signature was produced over the value by the private key
// that belongs to the hex encoded public key. Any malformed input reports
// false.
func Verify(publicKey string, value any, sig string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	pub, err := hexutil.Decode(publicKey)
	if err != nil {
		return false
	}

	sigBytes, err := hexutil.Decode(sig)
	if err != nil || len(sigBytes) != crypto.SignatureLength {
		return false
	}

	data, err := stamp(value)
	if err != nil {
		return false
	}

	return crypto.VerifySignature(pub, data, sigBytes[:crypto.RecoveryIDOffset])
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with
// the ledger stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {

	// Marshal the data.
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Hash the data data into a 32 byte array. This will provide
	// a data length consistency with all data.
	txHash := crypto.Keccak256(v)

	// Convert the stamp into a slice of bytes. This stamp is
	// used so signatures we produce when signing data
	// are always unique to this blockchain.
	stamp := []byte("\x19Ledger Signed Message:\n32")

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the data.
	data := crypto.Keccak256(stamp, txHash)

	return data, nil
}
