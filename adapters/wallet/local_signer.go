package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/layer-3/gmstreak/core"
)

// LocalSigner signs with a process-local key. In standalone runs it plays
// the role a browser-injected wallet extension plays in a page.
type LocalSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewLocalSigner creates a signer over an existing key
func NewLocalSigner(key *ecdsa.PrivateKey) *LocalSigner {
	return &LocalSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// NewLocalSignerFromHex creates a signer from a hex-encoded secp256k1 key
func NewLocalSignerFromHex(hexKey string) (*LocalSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid wallet key: %w", err)
	}
	return NewLocalSigner(key), nil
}

// RequestAccounts returns the single local account
func (s *LocalSigner) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{s.address.Hex()}, nil
}

// SignMessage produces an EIP-191 personal signature over the message
// bytes. A 0x-prefixed payload is decoded from hex first; anything else is
// signed as text.
func (s *LocalSigner) SignMessage(ctx context.Context, message, address string) (string, error) {
	if !strings.EqualFold(address, s.address.Hex()) {
		return "", fmt.Errorf("%w: unknown account %s", core.ErrSigningRejected, address)
	}

	payload := []byte(message)
	if strings.HasPrefix(message, "0x") {
		decoded, err := hexutil.Decode(message)
		if err != nil {
			return "", fmt.Errorf("%w: %v", core.ErrBadMessageFormat, err)
		}
		payload = decoded
	}

	signature, err := crypto.Sign(accounts.TextHash(payload), s.key)
	if err != nil {
		return "", fmt.Errorf("signing failed: %w", err)
	}

	// Shift the recovery id into the 27/28 range wallets emit.
	signature[64] += 27

	return hexutil.Encode(signature), nil
}
