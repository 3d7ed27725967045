package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/ports"
)

type fakeProbe struct {
	injected   ports.HostFrame
	embedded   bool
	queryErr   error
	queryDelay time.Duration
	topLevel   bool
	topErr     error
	launch     *url.URL
}

func (p *fakeProbe) InjectedHost() ports.HostFrame { return p.injected }

func (p *fakeProbe) QueryEmbedded(ctx context.Context) (bool, error) {
	if p.queryDelay > 0 {
		select {
		case <-time.After(p.queryDelay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return p.embedded, p.queryErr
}

func (p *fakeProbe) TopLevel() (bool, error) { return p.topLevel, p.topErr }

func (p *fakeProbe) LaunchURL() *url.URL { return p.launch }

type fakeHost struct {
	bridge      ports.WalletProvider
	bridgeErr   error
	bridgeDelay time.Duration
	bridgeCalls int
	user        *core.FrameUser
	userErr     error
	openedURLs  []string
	openErr     error
}

func (h *fakeHost) Embedded(ctx context.Context) (bool, error) { return true, nil }

func (h *fakeHost) UserContext(ctx context.Context) (*core.FrameUser, error) {
	if h.userErr != nil {
		return nil, h.userErr
	}
	if h.user != nil {
		return h.user, nil
	}
	return &core.FrameUser{}, nil
}

func (h *fakeHost) WalletBridge(ctx context.Context) (ports.WalletProvider, error) {
	h.bridgeCalls++
	if h.bridgeDelay > 0 {
		select {
		case <-time.After(h.bridgeDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if h.bridgeErr != nil {
		return nil, h.bridgeErr
	}
	return h.bridge, nil
}

func (h *fakeHost) Ready(ctx context.Context) error { return nil }

func (h *fakeHost) OpenURL(ctx context.Context, rawURL string) error {
	if h.openErr != nil {
		return h.openErr
	}
	h.openedURLs = append(h.openedURLs, rawURL)
	return nil
}

type fakeProvider struct {
	accounts    []string
	accountsErr error
	hexErr      error
	plainErr    error
	messages    []string
}

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	return p.accounts, p.accountsErr
}

func (p *fakeProvider) SignMessage(ctx context.Context, message, address string) (string, error) {
	p.messages = append(p.messages, message)
	if strings.HasPrefix(message, "0x") {
		if p.hexErr != nil {
			return "", p.hexErr
		}
		return "sig-hex", nil
	}
	if p.plainErr != nil {
		return "", p.plainErr
	}
	return "sig-plain", nil
}

type fakeTokenizer struct {
	sessions map[string]*core.Session
}

func (f *fakeTokenizer) SessionToToken(session *core.Session) (string, error) {
	if f.sessions == nil {
		f.sessions = make(map[string]*core.Session)
	}
	token := "token-" + session.ID
	copied := *session
	f.sessions[token] = &copied
	return token, nil
}

func (f *fakeTokenizer) TokenToSession(token string) (*core.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, core.ErrInvalidToken
	}
	return session, nil
}

type publishedEvent struct {
	address string
	date    string
	streak  int
	total   int
}

type fakeEvents struct {
	published []publishedEvent
	err       error
}

func (f *fakeEvents) PublishCheckIn(ctx context.Context, address, date string, streak, total int) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedEvent{address, date, streak, total})
	return nil
}
