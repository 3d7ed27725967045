package ports

import (
	"context"
	"net/url"

	"github.com/layer-3/gmstreak/core"
)

// HostFrame is the capability surface an embedding runtime exposes.
type HostFrame interface {
	// Embedded asks the host whether the page runs embedded. Hosts
	// predating this query may never answer; callers bound it with a
	// context deadline.
	Embedded(ctx context.Context) (bool, error)

	// UserContext returns the host-supplied identity context.
	UserContext(ctx context.Context) (*core.FrameUser, error)

	// WalletBridge performs the wallet handshake and returns the host's
	// signing backend.
	WalletBridge(ctx context.Context) (WalletProvider, error)

	// Ready announces that the app finished initializing.
	Ready(ctx context.Context) error

	// OpenURL asks the host to open an external URL.
	OpenURL(ctx context.Context, rawURL string) error
}

// RuntimeProbe exposes what can be observed about the hosting page without
// committing to a classification.
type RuntimeProbe interface {
	// InjectedHost returns the capability object the host already placed
	// in the runtime context, or nil.
	InjectedHost() HostFrame

	// QueryEmbedded asks the host runtime whether the page is embedded.
	// It may block until ctx is done on hosts that never answer.
	QueryEmbedded(ctx context.Context) (bool, error)

	// TopLevel reports whether the browsing context is its own top-level
	// context. A non-nil error means the check itself was denied
	// (cross-origin), which is evidence of embedding.
	TopLevel() (bool, error)

	// LaunchURL returns the URL the page was opened with, or nil.
	LaunchURL() *url.URL
}
