package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
)

type credentialStore interface {
	FindCredential(ctx context.Context, id string) (string, error)
}

// PasswordGuard hashes creation secrets and checks them against stored
// hashes. Plaintext is never persisted or logged.
type PasswordGuard struct {
	store   credentialStore
	cost    int
	metrics *MetricsService
	logger  *zap.Logger
}

// NewPasswordGuard constructs a guard. A cost outside bcrypt's range falls
// back to bcrypt.DefaultCost.
func NewPasswordGuard(store credentialStore, cost int, metrics *MetricsService, logger *zap.Logger) *PasswordGuard {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PasswordGuard{store: store, cost: cost, metrics: metrics, logger: logger}
}

// Hash returns the bcrypt hash of plain.
func (g *PasswordGuard) Hash(plain string) (string, error) {
	if strings.TrimSpace(plain) == "" {
		return "", appErrors.Validation("creation secret is required", "creationSecret")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), g.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", appErrors.Validation("creation secret is too long", "creationSecret")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash secret")
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored hash of resource id. A
// mismatch is not an error.
func (g *PasswordGuard) Verify(ctx context.Context, id, plain string) (bool, error) {
	hash, err := g.store.FindCredential(ctx, id)
	if err != nil {
		return false, err
	}

	verified := plain != "" && bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	g.metrics.RecordPasswordCheck(verified)
	if !verified {
		g.logger.Info("survey password rejected", zap.String("survey_id", id))
	}
	return verified, nil
}
