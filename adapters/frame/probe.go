package frame

import (
	"context"
	"net/url"

	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/ports"
)

// RuntimeProbe adapts startup configuration and the optional bridge client
// into the probe surface the environment resolver consumes.
type RuntimeProbe struct {
	injected ports.HostFrame
	client   *Client
	topLevel func() (bool, error)
	launch   *url.URL
}

// NewRuntimeProbe creates a probe. injected is the host capability handed
// over at startup (nil when none was), client the optional bridge for the
// authoritative embedding query, topLevel the browsing-context check (nil
// means trivially top-level) and launch the URL the app was opened with.
func NewRuntimeProbe(injected ports.HostFrame, client *Client, topLevel func() (bool, error), launch *url.URL) *RuntimeProbe {
	return &RuntimeProbe{
		injected: injected,
		client:   client,
		topLevel: topLevel,
		launch:   launch,
	}
}

// InjectedHost returns the capability object the host injected, or nil
func (p *RuntimeProbe) InjectedHost() ports.HostFrame {
	return p.injected
}

// QueryEmbedded asks the host runtime whether the page is embedded
func (p *RuntimeProbe) QueryEmbedded(ctx context.Context) (bool, error) {
	if p.client == nil {
		return false, core.ErrHostUnavailable
	}
	return p.client.Embedded(ctx)
}

// TopLevel reports whether the browsing context is its own top-level context
func (p *RuntimeProbe) TopLevel() (bool, error) {
	if p.topLevel == nil {
		return true, nil
	}
	return p.topLevel()
}

// LaunchURL returns the URL the app was opened with, or nil
func (p *RuntimeProbe) LaunchURL() *url.URL {
	return p.launch
}
