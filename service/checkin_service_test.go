package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/gmstreak/adapters/store"
	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/ports"
)

const testAddress = "0xAbCdEf0123456789abcDEF0123456789AbCdEf01"

var testClock = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestService(provider *fakeProvider, events *fakeEvents) *CheckinService {
	resolver := NewProviderResolver(nil, provider, 0, nil)
	// A nil *fakeEvents must become a nil interface, not a typed nil.
	var publisher ports.EventPublisher
	if events != nil {
		publisher = events
	}
	svc := NewCheckinService(store.NewMemoryStore(), resolver, &fakeTokenizer{}, publisher, core.EnvStandalone, "https://share.example/compose", nil)
	svc.now = func() time.Time { return testClock }
	return svc
}

func TestConnect(t *testing.T) {
	provider := &fakeProvider{accounts: []string{testAddress}}
	svc := newTestService(provider, nil)

	session, token, err := svc.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAddress, session.Address)
	assert.Equal(t, core.EnvStandalone, session.Environment)
	assert.NotEmpty(t, token)

	restored, err := svc.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.NormalizeAddress(testAddress), restored)
}

func TestConnectNoProvider(t *testing.T) {
	svc := newTestService(nil, nil)
	svc.providers = NewProviderResolver(nil, nil, 0, nil)

	_, _, err := svc.Connect(context.Background())
	assert.ErrorIs(t, err, core.ErrNoProvider)
}

func TestConnectNoAccounts(t *testing.T) {
	svc := newTestService(&fakeProvider{}, nil)

	_, _, err := svc.Connect(context.Background())
	assert.ErrorIs(t, err, core.ErrNoProvider)
}

func TestConnectHostUserContextFallback(t *testing.T) {
	// The host wallet answers the handshake but reports no accounts; the
	// identity comes from the host's user context instead.
	host := &fakeHost{
		bridge: &fakeProvider{},
		user:   &core.FrameUser{FID: 42, VerifiedAddresses: []string{testAddress}},
	}
	svc := newTestService(nil, nil)
	svc.env = core.EnvEmbeddedFrame
	svc.providers = NewProviderResolver(host, nil, 0, nil)

	session, _, err := svc.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAddress, session.Address)
}

func TestDisconnect(t *testing.T) {
	provider := &fakeProvider{accounts: []string{testAddress}}
	svc := newTestService(provider, nil)

	_, _, err := svc.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.Disconnect(context.Background()))

	restored, err := svc.Restore(context.Background())
	require.NoError(t, err)
	assert.Empty(t, restored)
}

func TestCheckIn(t *testing.T) {
	provider := &fakeProvider{accounts: []string{testAddress}}
	events := &fakeEvents{}
	svc := newTestService(provider, events)

	record, err := svc.CheckIn(context.Background(), testAddress)
	require.NoError(t, err)

	today := core.Today(testClock)
	assert.Equal(t, []string{today}, record.Dates)
	assert.Equal(t, "sig-hex", record.Signatures[today])
	assert.Equal(t, 1, record.Streak)
	assert.Equal(t, 1, record.Total)
	assert.Equal(t, today, record.LastDate)

	// The signed payload is the hex encoding of the attestation text.
	require.Len(t, provider.messages, 1)
	decoded, err := hexutil.Decode(provider.messages[0])
	require.NoError(t, err)
	assert.Equal(t, core.AttestationMessage(testAddress, today), string(decoded))

	require.Len(t, events.published, 1)
	assert.Equal(t, publishedEvent{core.NormalizeAddress(testAddress), today, 1, 1}, events.published[0])
}

func TestCheckInTwiceSameDay(t *testing.T) {
	provider := &fakeProvider{accounts: []string{testAddress}}
	svc := newTestService(provider, nil)

	_, err := svc.CheckIn(context.Background(), testAddress)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), testAddress)
	assert.ErrorIs(t, err, core.ErrAlreadyCheckedIn)

	// The rejected attempt never reaches the signer and changes nothing.
	assert.Len(t, provider.messages, 1)
	record, err := svc.Record(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, record.Total)
}

func TestCheckInCaseInsensitiveKeys(t *testing.T) {
	provider := &fakeProvider{accounts: []string{testAddress}}
	svc := newTestService(provider, nil)

	_, err := svc.CheckIn(context.Background(), testAddress)
	require.NoError(t, err)

	// The same wallet in different casing hits the same record.
	_, err = svc.CheckIn(context.Background(), strings.ToUpper(testAddress[:2])+testAddress[2:])
	assert.ErrorIs(t, err, core.ErrAlreadyCheckedIn)

	lower, err := svc.Record(context.Background(), strings.ToLower(testAddress))
	require.NoError(t, err)
	mixed, err := svc.Record(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, lower, mixed)
}

func TestCheckInPlainTextFallback(t *testing.T) {
	provider := &fakeProvider{
		accounts: []string{testAddress},
		hexErr:   fmt.Errorf("%w: hex not accepted", core.ErrBadMessageFormat),
	}
	svc := newTestService(provider, nil)

	record, err := svc.CheckIn(context.Background(), testAddress)
	require.NoError(t, err)

	today := core.Today(testClock)
	assert.Equal(t, "sig-plain", record.Signatures[today])

	// Hex candidate first, plain text second.
	require.Len(t, provider.messages, 2)
	assert.True(t, strings.HasPrefix(provider.messages[0], "0x"))
	assert.Equal(t, core.AttestationMessage(testAddress, today), provider.messages[1])
}

func TestCheckInSigningRejected(t *testing.T) {
	provider := &fakeProvider{
		accounts: []string{testAddress},
		hexErr:   core.ErrSigningRejected,
	}
	svc := newTestService(provider, nil)

	_, err := svc.CheckIn(context.Background(), testAddress)
	assert.ErrorIs(t, err, core.ErrSigningRejected)

	// A rejection is final: no plain-text retry, nothing recorded.
	assert.Len(t, provider.messages, 1)
	record, err := svc.Record(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Total)
}

func TestCheckInBrokenProviderInvalidatesCache(t *testing.T) {
	bridge := &fakeProvider{
		accounts: []string{testAddress},
		hexErr:   errors.New("bridge wedged"),
		plainErr: errors.New("bridge wedged"),
	}
	host := &fakeHost{bridge: bridge}
	svc := newTestService(nil, nil)
	svc.env = core.EnvEmbeddedFrame
	svc.providers = NewProviderResolver(host, nil, 0, nil)

	_, err := svc.CheckIn(context.Background(), testAddress)
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrSigningRejected)

	// The broken handle was dropped; the next attempt re-resolves.
	_, _ = svc.CheckIn(context.Background(), testAddress)
	assert.Equal(t, 2, host.bridgeCalls)
}

func TestCheckInStreakAcrossDays(t *testing.T) {
	provider := &fakeProvider{accounts: []string{testAddress}}
	svc := newTestService(provider, nil)

	clock := testClock
	svc.now = func() time.Time { return clock }

	// Day 1, day 2, skip day 3, day 4.
	for _, offset := range []int{0, 1, 3} {
		clock = testClock.AddDate(0, 0, offset)
		_, err := svc.CheckIn(context.Background(), testAddress)
		require.NoError(t, err)
	}

	record, err := svc.Record(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, record.Streak)
	assert.Equal(t, 3, record.Total)
}

func TestCheckInSingleCanonicalToday(t *testing.T) {
	provider := &fakeProvider{accounts: []string{testAddress}}
	svc := newTestService(provider, nil)

	// The clock crosses midnight after the first reading; the stored date
	// and the signed message must still agree.
	calls := 0
	svc.now = func() time.Time {
		calls++
		if calls == 1 {
			return time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
		}
		return time.Date(2025, 6, 16, 0, 0, 1, 0, time.UTC)
	}

	record, err := svc.CheckIn(context.Background(), testAddress)
	require.NoError(t, err)

	require.Len(t, provider.messages, 1)
	decoded, err := hexutil.Decode(provider.messages[0])
	require.NoError(t, err)
	assert.Equal(t, core.AttestationMessage(testAddress, record.LastDate), string(decoded))
}

func TestCheckInPublisherFailureDoesNotFail(t *testing.T) {
	provider := &fakeProvider{accounts: []string{testAddress}}
	events := &fakeEvents{err: errors.New("broker down")}
	svc := newTestService(provider, events)

	record, err := svc.CheckIn(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, record.Total)
}

func TestRecordInvalidAddress(t *testing.T) {
	svc := newTestService(&fakeProvider{}, nil)

	_, err := svc.Record(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestRecordEmptyForUnknownWallet(t *testing.T) {
	svc := newTestService(&fakeProvider{}, nil)

	record, err := svc.Record(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Streak)
	assert.Equal(t, 0, record.Total)
	assert.Empty(t, record.Dates)
}

func TestShareCard(t *testing.T) {
	provider := &fakeProvider{accounts: []string{testAddress}}
	svc := newTestService(provider, nil)

	_, err := svc.CheckIn(context.Background(), testAddress)
	require.NoError(t, err)

	card, err := svc.ShareCard(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, core.NormalizeAddress(testAddress), card.Address)
	assert.Equal(t, 1, card.Streak)
	assert.Equal(t, 1, card.Total)
	assert.Contains(t, card.ShareURL, "https://share.example/compose?address=")
}

func TestShareOpensURLThroughHost(t *testing.T) {
	bridge := &fakeProvider{accounts: []string{testAddress}}
	host := &fakeHost{bridge: bridge}
	svc := newTestService(nil, nil)
	svc.env = core.EnvEmbeddedFrame
	svc.providers = NewProviderResolver(host, nil, 0, nil)

	_, err := svc.CheckIn(context.Background(), testAddress)
	require.NoError(t, err)

	card, err := svc.Share(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, host.openedURLs, 1)
	assert.Equal(t, card.ShareURL, host.openedURLs[0])
}

func TestShareStandaloneReturnsCardOnly(t *testing.T) {
	provider := &fakeProvider{accounts: []string{testAddress}}
	svc := newTestService(provider, nil)

	card, err := svc.Share(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Contains(t, card.ShareURL, "address=")
}

func TestShareHostOpenFailureIsNotFatal(t *testing.T) {
	bridge := &fakeProvider{accounts: []string{testAddress}}
	host := &fakeHost{bridge: bridge, openErr: errors.New("host refused")}
	svc := newTestService(nil, nil)
	svc.env = core.EnvEmbeddedFrame
	svc.providers = NewProviderResolver(host, nil, 0, nil)

	card, err := svc.Share(context.Background(), testAddress)
	require.NoError(t, err)
	assert.NotNil(t, card)
}

func TestValidateSessionExpired(t *testing.T) {
	svc := newTestService(&fakeProvider{accounts: []string{testAddress}}, nil)
	svc.sessionTTL = -time.Hour

	_, token, err := svc.Connect(context.Background())
	require.NoError(t, err)

	_, err = svc.ValidateSession(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}
