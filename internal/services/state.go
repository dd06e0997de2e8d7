package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/1cvibe/connectgate/internal/cache"
	"github.com/1cvibe/connectgate/internal/core"
	"github.com/1cvibe/connectgate/internal/models"
	"github.com/1cvibe/connectgate/internal/util"
)

const (
	// stateTokenBytes is the entropy of a state token (256 bits)
	stateTokenBytes = 32

	// maxIssueAttempts bounds retries on a state token collision
	maxIssueAttempts = 3
)

// State validation outcomes reported to metrics
const (
	stateResultSuccess  = "success"
	stateResultNotFound = "not_found"
	stateResultExpired  = "expired"
	stateResultMismatch = "provider_mismatch"
	stateResultError    = "error"
)

// IssueOptions carries optional data bound to a state token
type IssueOptions struct {
	CodeVerifier string
	ReturnTo     string
}

// StateService issues and redeems single-use anti-forgery state tokens.
// Records are kept for ttl+grace so a late callback is reported as expired
// rather than unknown.
type StateService struct {
	store   core.PendingStore[models.PendingState]
	ttl     time.Duration
	grace   time.Duration
	metrics core.Recorder
	now     func() time.Time
}

func NewStateService(
	store core.PendingStore[models.PendingState],
	ttl, grace time.Duration,
	m core.Recorder,
) *StateService {
	return &StateService{
		store:   store,
		ttl:     ttl,
		grace:   grace,
		metrics: m,
		now:     time.Now,
	}
}

// Issue creates a fresh state token bound to userID and provider.
func (s *StateService) Issue(
	ctx context.Context,
	userID, provider string,
	opts IssueOptions,
) (string, error) {
	now := s.now()
	pending := models.PendingState{
		UserID:       userID,
		Provider:     provider,
		CodeVerifier: opts.CodeVerifier,
		ReturnTo:     opts.ReturnTo,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}

	for range maxIssueAttempts {
		token, err := util.CryptoRandomURLToken(stateTokenBytes)
		if err != nil {
			return "", newError(KindInternal, "Could not generate a state token", err)
		}

		err = s.store.Add(ctx, token, pending, s.ttl+s.grace)
		switch {
		case err == nil:
			return token, nil
		case errors.Is(err, cache.ErrKeyExists):
			log.Printf("[State] token collision, retrying")
			continue
		default:
			return "", newError(KindStorageUnavailable, "State storage is unavailable", err)
		}
	}
	return "", newError(KindInternal, "Could not allocate a unique state token", nil)
}

// ValidateAndConsume redeems a state token for provider. The token is removed
// whatever the outcome, so it can never be redeemed twice. An expired or
// mismatched state is returned alongside its error so callers can attribute
// the failure to the user who issued it.
func (s *StateService) ValidateAndConsume(
	ctx context.Context,
	token, provider string,
) (*models.PendingState, error) {
	if token == "" {
		s.metrics.RecordStateValidation(stateResultNotFound)
		return nil, newError(KindStateNotFound, "The authorization request is unknown or was already used", nil)
	}

	pending, err := s.store.Take(ctx, token)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.RecordStateValidation(stateResultNotFound)
			return nil, newError(
				KindStateNotFound,
				"The authorization request is unknown or was already used",
				nil,
			)
		}
		s.metrics.RecordStateValidation(stateResultError)
		return nil, newError(KindStorageUnavailable, "State storage is unavailable", err)
	}

	if pending.IsExpired(s.now()) {
		s.metrics.RecordStateValidation(stateResultExpired)
		return &pending, newError(
			KindStateExpired,
			"The authorization request expired, please connect again",
			nil,
		)
	}

	if pending.Provider != provider {
		s.metrics.RecordStateValidation(stateResultMismatch)
		log.Printf("[State] provider mismatch: issued for %s, redeemed for %s",
			pending.Provider, provider)
		return &pending, newError(
			KindStateProviderMismatch,
			"The authorization request was issued for a different provider",
			nil,
		)
	}

	s.metrics.RecordStateValidation(stateResultSuccess)
	return &pending, nil
}
