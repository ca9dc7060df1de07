// Package farms registers farm accounts and issues their access tokens.
package farms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

// ErrFarmExists rejects a name already registered in any letter case.
var ErrFarmExists = errors.New("farm name already taken")

// DefaultTokenTTL is how long a freshly issued token stays valid.
const DefaultTokenTTL = 365 * 24 * time.Hour

// Service handles farm registration.
type Service struct {
	store  repository.Store
	tokens *auth.Tokens
	logger *zap.Logger
}

// NewService wires a new farm service instance.
func NewService(store repository.Store, tokens *auth.Tokens, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, tokens: tokens, logger: logger}
}

// Registration is a created farm with its breeder record and token.
type Registration struct {
	Farm    *models.Farm    `json:"farm"`
	Breeder *models.Breeder `json:"breeder"`
	Token   string          `json:"token"`
}

// Register creates the farm and a breeder under the same name, then issues a
// token carrying every permission.
func (s *Service) Register(ctx context.Context, name, phone string, ttl time.Duration) (*Registration, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("farm name is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	reg := &Registration{}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		taken, err := tx.FarmNameTaken(ctx, name)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %s", ErrFarmExists, name)
		}

		farm := &models.Farm{Name: name, Phone: strings.TrimSpace(phone)}
		if err := tx.CreateFarm(ctx, farm); err != nil {
			return err
		}
		breeder := &models.Breeder{Name: truncate(name, 30)}
		breeder.Stamp(farm.ID)
		if err := tx.CreateBreeder(ctx, breeder); err != nil {
			return err
		}
		reg.Farm, reg.Breeder = farm, breeder
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.IssueToken(reg.Farm.ID, ttl)
	if err != nil {
		return nil, err
	}
	reg.Token = token

	s.logger.Info("farm registered", zap.Uint("farm_id", reg.Farm.ID), zap.String("name", reg.Farm.Name))
	return reg, nil
}

// IssueToken signs a full-permission token for an existing farm id.
func (s *Service) IssueToken(farmID uint, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return s.tokens.Issue(auth.NewActor(farmID, auth.All()...), ttl)
}

// List returns every registered farm.
func (s *Service) List(ctx context.Context) ([]models.Farm, error) {
	return s.store.ListFarms(ctx)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
