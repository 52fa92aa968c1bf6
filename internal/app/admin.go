package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/bonusboard/internal/adapters/remote"
	"github.com/okian/bonusboard/internal/adapters/repository"
	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/internal/domain/period"
	"github.com/okian/bonusboard/internal/domain/table"
	"github.com/okian/bonusboard/pkg/logger"
)

// ErrNoStore is returned by credential operations when no store is configured.
var ErrNoStore = errors.New("no credential store")

// BonusQuery filters the admin bonus listing.
type BonusQuery struct {
	Kind   period.Kind
	Team   string
	Start  string
	End    string
	Search string
}

// BonusList is the admin listing payload.
type BonusList struct {
	Range period.Range        `json:"dates"`
	Team  string              `json:"team"`
	Rows  []model.BonusRecord `json:"rows"`
	Total float64             `json:"total"`
}

// ListBonuses lists bonus records for the resolved range, narrowed by a
// case-insensitive qualifier substring.
func (s *Service) ListBonuses(ctx context.Context, q BonusQuery) (BonusList, error) {
	r, err := period.Resolve(q.Kind, s.now(), q.Start, q.End)
	if err != nil {
		return BonusList{}, err
	}
	team := strings.TrimSpace(q.Team)
	if team == "" {
		team = table.All
	}
	rows, err := s.client().BonusRange(ctx, r.Start, r.End, team)
	if err != nil {
		return BonusList{}, err
	}
	rows = table.FilterContains(rows, func(b model.BonusRecord) string { return b.Qualifier }, q.Search)
	if rows == nil {
		rows = []model.BonusRecord{}
	}

	out := BonusList{Range: r, Team: team, Rows: rows}
	for _, b := range rows {
		out.Total += b.Amount.Float()
	}
	return out, nil
}

// SaveBonus creates or updates a bonus with the given admin key. The key is
// forwarded verbatim; validation is the backend's.
func (s *Service) SaveBonus(ctx context.Context, adminKey string, in model.BonusInput) (map[string]any, error) {
	res, err := s.client().UpsertBonus(ctx, adminKey, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "bonus saved",
		logger.String("qualifier", in.Qualifier), logger.String("date", in.BonusDate))
	return res, nil
}

// DeleteBonus deletes a bonus with the given admin key.
func (s *Service) DeleteBonus(ctx context.Context, adminKey, id string) error {
	if err := s.client().DeleteBonus(ctx, adminKey, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "bonus deleted", logger.String("id", id))
	return nil
}

// SaveBonusWithStoredKey uses the key saved by Login.
func (s *Service) SaveBonusWithStoredKey(ctx context.Context, in model.BonusInput) (map[string]any, error) {
	key, err := s.AdminKey(ctx)
	if err != nil {
		return nil, err
	}
	return s.SaveBonus(ctx, key, in)
}

// DeleteBonusWithStoredKey uses the key saved by Login.
func (s *Service) DeleteBonusWithStoredKey(ctx context.Context, id string) error {
	key, err := s.AdminKey(ctx)
	if err != nil {
		return err
	}
	return s.DeleteBonus(ctx, key, id)
}

// Login stores the admin key. An empty key logs out.
func (s *Service) Login(ctx context.Context, key string) error {
	st, err := s.credentialStore()
	if err != nil {
		return err
	}
	if err := repository.SetAdminKey(ctx, st, key); err != nil {
		return fmt.Errorf("store admin key: %w", err)
	}
	return nil
}

// Logout forgets the admin key.
func (s *Service) Logout(ctx context.Context) error {
	st, err := s.credentialStore()
	if err != nil {
		return err
	}
	if err := repository.ClearAdminKey(ctx, st); err != nil {
		return fmt.Errorf("clear admin key: %w", err)
	}
	return nil
}

// AdminKey returns the stored admin key, or remote.ErrMissingKey when none
// is stored.
func (s *Service) AdminKey(ctx context.Context) (string, error) {
	st, err := s.credentialStore()
	if err != nil {
		return "", err
	}
	key, err := repository.AdminKey(ctx, st)
	if err != nil {
		return "", fmt.Errorf("read admin key: %w", err)
	}
	if key == "" {
		return "", remote.ErrMissingKey
	}
	return key, nil
}

func (s *Service) credentialStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store, nil
}
