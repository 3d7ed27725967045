package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/ports"
)

// CheckinService handles the check-in business logic: connecting a wallet,
// committing the daily signed attestation and serving record reads.
type CheckinService struct {
	store     ports.LedgerStore
	providers *ProviderResolver
	tokenizer ports.Tokenizer
	events    ports.EventPublisher
	env       core.Environment
	shareBase string
	log       *zap.Logger

	sessionTTL time.Duration
	now        func() time.Time
}

// NewCheckinService creates a new check-in service
func NewCheckinService(
	store ports.LedgerStore,
	providers *ProviderResolver,
	tokenizer ports.Tokenizer,
	events ports.EventPublisher,
	env core.Environment,
	shareBase string,
	log *zap.Logger,
) *CheckinService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckinService{
		store:      store,
		providers:  providers,
		tokenizer:  tokenizer,
		events:     events,
		env:        env,
		shareBase:  shareBase,
		log:        log,
		sessionTTL: 24 * time.Hour,
		now:        time.Now,
	}
}

// Environment returns the classification the service was built with.
func (s *CheckinService) Environment() core.Environment {
	return s.env
}

// Connect resolves a signing provider, asks it for accounts and binds the
// first one as the session identity. The address is kept exactly as the
// provider reported it; ledger keys always use the lowercase form.
func (s *CheckinService) Connect(ctx context.Context) (*core.Session, string, error) {
	provider, err := s.providers.Resolve(ctx, s.env)
	if err != nil {
		return nil, "", err
	}

	accounts, err := provider.RequestAccounts(ctx)
	if err != nil {
		if errors.Is(err, core.ErrSigningRejected) {
			return nil, "", err
		}
		s.providers.Invalidate()
		return nil, "", fmt.Errorf("wallet account request failed: %w", err)
	}

	var address string
	if len(accounts) > 0 {
		address = accounts[0]
	} else {
		// Some hosts expose the identity only through their user context,
		// not through the wallet's account list.
		address = s.hostAddress(ctx)
	}
	if address == "" {
		return nil, "", fmt.Errorf("%w: wallet returned no accounts", core.ErrNoProvider)
	}
	if !common.IsHexAddress(address) {
		return nil, "", core.ErrInvalidAddress
	}

	now := s.now()
	session := &core.Session{
		ID:          uuid.New().String(),
		Address:     address,
		Environment: s.env,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	if err := s.store.SetConnectedAddress(ctx, core.NormalizeAddress(address)); err != nil {
		return nil, "", fmt.Errorf("failed to persist connected address: %w", err)
	}

	return session, token, nil
}

// Restore returns the previously connected address, or empty when there is
// none.
func (s *CheckinService) Restore(ctx context.Context) (string, error) {
	address, err := s.store.ConnectedAddress(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load connected address: %w", err)
	}
	return address, nil
}

// Disconnect clears the persisted session identity.
func (s *CheckinService) Disconnect(ctx context.Context) error {
	if err := s.store.SetConnectedAddress(ctx, ""); err != nil {
		return fmt.Errorf("failed to clear connected address: %w", err)
	}
	return nil
}

// ValidateSession parses a session token and checks its expiry.
func (s *CheckinService) ValidateSession(ctx context.Context, token string) (*core.Session, error) {
	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if s.now().After(session.ExpiresAt) {
		return nil, core.ErrTokenExpired
	}
	return session, nil
}

// Record returns the ledger record for address with the derived fields
// recomputed against the current date. A wallet without history gets the
// empty record.
func (s *CheckinService) Record(ctx context.Context, address string) (*core.Record, error) {
	if !common.IsHexAddress(address) {
		return nil, core.ErrInvalidAddress
	}

	record, err := s.store.Record(ctx, core.NormalizeAddress(address))
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	record.Refresh(core.Today(s.now()))
	return record, nil
}

// CheckIn signs and commits today's attestation for address. Today is
// fixed once at entry; the duplicate check, the signed message and the
// stored date all use that one value even across a midnight boundary.
func (s *CheckinService) CheckIn(ctx context.Context, address string) (*core.Record, error) {
	if !common.IsHexAddress(address) {
		return nil, core.ErrInvalidAddress
	}

	today := core.Today(s.now())
	key := core.NormalizeAddress(address)

	record, err := s.store.Record(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	if record.Has(today) {
		return nil, core.ErrAlreadyCheckedIn
	}

	signature, err := s.signAttestation(ctx, address, today)
	if err != nil {
		return nil, err
	}

	if err := record.Commit(today, signature, today); err != nil {
		return nil, err
	}
	if err := s.store.PutRecord(ctx, key, record); err != nil {
		return nil, fmt.Errorf("failed to persist record: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishCheckIn(ctx, key, today, record.Streak, record.Total); err != nil {
			// The commit already happened; a lost event is not worth
			// failing the check-in over.
			s.log.Warn("failed to publish check-in event", zap.String("address", key), zap.Error(err))
		}
	}

	s.log.Info("check-in committed",
		zap.String("address", key),
		zap.String("date", today),
		zap.Int("streak", record.Streak),
		zap.Int("total", record.Total),
	)
	return record, nil
}

// signAttestation builds the attestation message for the session address
// and date and signs it. The message goes out as hex-encoded bytes first;
// a backend that rejects that encoding gets one retry with the plain text,
// since real backends disagree on the payload format. A user rejection is
// final and never retried.
func (s *CheckinService) signAttestation(ctx context.Context, address, date string) (string, error) {
	provider, err := s.providers.Resolve(ctx, s.env)
	if err != nil {
		return "", err
	}

	message := core.AttestationMessage(address, date)

	signature, err := provider.SignMessage(ctx, hexutil.Encode([]byte(message)), address)
	if err == nil {
		return signature, nil
	}
	if errors.Is(err, core.ErrSigningRejected) {
		return "", err
	}
	if errors.Is(err, core.ErrBadMessageFormat) {
		signature, err = provider.SignMessage(ctx, message, address)
		if err == nil {
			return signature, nil
		}
		if errors.Is(err, core.ErrSigningRejected) {
			return "", err
		}
	}

	// The handle itself looks broken; drop it so the next user-initiated
	// attempt re-resolves.
	s.providers.Invalidate()
	return "", fmt.Errorf("signing failed: %w", err)
}

// hostAddress pulls the connected or first verified address out of the
// host's identity context. Failures degrade to empty; the caller decides
// whether that is fatal.
func (s *CheckinService) hostAddress(ctx context.Context) string {
	if s.env != core.EnvEmbeddedFrame || s.providers.host == nil {
		return ""
	}

	user, err := s.providers.host.UserContext(ctx)
	if err != nil {
		s.log.Debug("host user context unavailable", zap.Error(err))
		return ""
	}
	if user.ConnectedAddress != "" {
		return user.ConnectedAddress
	}
	if len(user.VerifiedAddresses) > 0 {
		return user.VerifiedAddresses[0]
	}
	return ""
}

// ShareCard builds the shareable summary for address.
func (s *CheckinService) ShareCard(ctx context.Context, address string) (*core.ShareCard, error) {
	record, err := s.Record(ctx, address)
	if err != nil {
		return nil, err
	}

	normalized := core.NormalizeAddress(address)
	return &core.ShareCard{
		Address:  normalized,
		Streak:   record.Streak,
		Total:    record.Total,
		LastDate: record.LastDate,
		ShareURL: s.shareBase + "?address=" + url.QueryEscape(normalized),
	}, nil
}

// Share builds the card for address and, when an embedding host is
// attached, hands the share URL to its open-URL action. Standalone pages
// get the card back and open the URL themselves.
func (s *CheckinService) Share(ctx context.Context, address string) (*core.ShareCard, error) {
	card, err := s.ShareCard(ctx, address)
	if err != nil {
		return nil, err
	}

	if s.env == core.EnvEmbeddedFrame && s.providers.host != nil {
		if err := s.providers.host.OpenURL(ctx, card.ShareURL); err != nil {
			// The card is still usable; the host just did not open it.
			s.log.Warn("host open-url failed", zap.Error(err))
		}
	}
	return card, nil
}
