package service

import (
	"context"
	"errors"
	"time"

	"github.com/hyunwoo/beluga-backend/internal/crypto"
	"github.com/hyunwoo/beluga-backend/internal/domain"
	"github.com/hyunwoo/beluga-backend/internal/repository"
	"github.com/hyunwoo/beluga-backend/internal/token"
	"gorm.io/gorm"
)

// sessionTTL is the sliding expiry window of a signed session. A session
// that keeps getting used never expires; one unused for the full window
// silently becomes invalid.
const sessionTTL = 365 * 24 * time.Hour

// SessionService owns the signed-session ledger: one row per issued access
// token per account.
type SessionService struct {
	repo  repository.SessionRepository
	codec *token.Codec
}

func NewSessionService(repo repository.SessionRepository, codec *token.Codec) *SessionService {
	return &SessionService{
		repo:  repo,
		codec: codec,
	}
}

// MarkSigned mints a new access token for the account, stores its
// salt-encrypted form in the ledger and returns the raw token. This is the
// only moment the raw token exists outside the client.
func (s *SessionService) MarkSigned(ctx context.Context, tx *gorm.DB, account *domain.Account) (string, error) {
	rawToken, err := s.codec.Sign(account.ID, account.Email)
	if err != nil {
		return "", err
	}

	session := &domain.SignedSession{
		AccountID:      account.ID,
		EncryptedToken: crypto.Encrypt(rawToken, account.Salt),
		ExpiresAt:      time.Now().Add(sessionTTL),
		CreatedAt:      time.Now(),
	}

	if err := s.repo.WithTx(tx).Create(ctx, session); err != nil {
		return "", err
	}

	return rawToken, nil
}

// GetByUnique looks up the ledger row for the (accountID, encryptedToken)
// pair. Possession of a token whose encryption matches a row is proof of a
// live session.
func (s *SessionService) GetByUnique(ctx context.Context, accountID int64, encryptedToken string) (*domain.SignedSession, error) {
	session, err := s.repo.GetByUnique(ctx, accountID, encryptedToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// Renew pushes the session expiry a full window into the future.
// Concurrent renewals of the same row are last-writer-wins.
func (s *SessionService) Renew(ctx context.Context, sessionID int64) error {
	return s.repo.UpdateExpiresAt(ctx, sessionID, time.Now().Add(sessionTTL))
}

// Delete removes the ledger row, revoking the session. Deleting an already
// deleted session is not an error.
func (s *SessionService) Delete(ctx context.Context, sessionID int64) error {
	return s.repo.Delete(ctx, sessionID)
}
