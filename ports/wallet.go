package ports

import "context"

// WalletProvider is a message-signing backend: the host's wallet bridge or
// a locally available wallet.
type WalletProvider interface {
	// RequestAccounts asks the wallet for its addresses. The first entry
	// is the active signer identity.
	RequestAccounts(ctx context.Context) ([]string, error)

	// SignMessage signs message bytes for address and returns the
	// signature blob. The message arrives hex-encoded; implementations
	// that cannot take hex return core.ErrBadMessageFormat so the caller
	// can retry with plain text. A declined prompt returns
	// core.ErrSigningRejected.
	SignMessage(ctx context.Context, message, address string) (string, error)
}
