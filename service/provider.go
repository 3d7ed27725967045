package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/ports"
)

// DefaultBridgeTimeout bounds the host wallet-bridge handshake.
const DefaultBridgeTimeout = 5 * time.Second

// ProviderResolver picks the single signing backend for a session and
// caches it. A cached handle that later proves non-functional can be
// dropped with Invalidate so the next Resolve runs the chain again.
type ProviderResolver struct {
	host          ports.HostFrame      // nil outside a frame
	injected      ports.WalletProvider // nil when no local wallet is available
	bridgeTimeout time.Duration
	log           *zap.Logger

	mu     sync.Mutex
	cached ports.WalletProvider
}

// NewProviderResolver creates a resolver over the available backends. A
// zero bridgeTimeout selects DefaultBridgeTimeout.
func NewProviderResolver(host ports.HostFrame, injected ports.WalletProvider, bridgeTimeout time.Duration, log *zap.Logger) *ProviderResolver {
	if bridgeTimeout <= 0 {
		bridgeTimeout = DefaultBridgeTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProviderResolver{
		host:          host,
		injected:      injected,
		bridgeTimeout: bridgeTimeout,
		log:           log,
	}
}

// Resolve returns the signing provider for env, first success wins:
// standalone requires the local wallet; an embedded frame tries the host
// wallet bridge (handshake bounded by the bridge timeout) and falls back
// to the local wallet. Exhausting the chain fails with core.ErrNoProvider.
func (r *ProviderResolver) Resolve(ctx context.Context, env core.Environment) (ports.WalletProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil {
		return r.cached, nil
	}

	provider, err := r.resolve(ctx, env)
	if err != nil {
		return nil, err
	}
	r.cached = provider
	return provider, nil
}

func (r *ProviderResolver) resolve(ctx context.Context, env core.Environment) (ports.WalletProvider, error) {
	if env == core.EnvStandalone {
		if r.injected == nil {
			return nil, fmt.Errorf("%w: install a wallet extension", core.ErrNoProvider)
		}
		return r.injected, nil
	}

	if r.host != nil {
		bridgeCtx, cancel := context.WithTimeout(ctx, r.bridgeTimeout)
		bridge, err := r.host.WalletBridge(bridgeCtx)
		cancel()
		if err == nil && bridge != nil {
			return bridge, nil
		}
		r.log.Debug("host wallet bridge unavailable", zap.Error(err))
	}

	if r.injected != nil {
		return r.injected, nil
	}

	return nil, fmt.Errorf("%w: no wallet found", core.ErrNoProvider)
}

// Invalidate drops the cached handle so the next Resolve re-runs the
// chain. Callers use it after a signing call fails on the cached backend.
func (r *ProviderResolver) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}
