package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"luckydraw/internal/models"
)

// Repository gives typed access to the three draw records. Each call reads or
// writes a whole record; there is no partial update.
type Repository struct {
	kv KV
}

// NewRepository wraps kv.
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// Participants returns the saved participant set, empty when none was saved.
func (r *Repository) Participants(ctx context.Context) ([]models.Participant, error) {
	list := []models.Participant{}
	if err := r.load(ctx, KeyParticipants, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SaveParticipants replaces the participant set wholesale.
func (r *Repository) SaveParticipants(ctx context.Context, list []models.Participant) error {
	if list == nil {
		list = []models.Participant{}
	}
	return r.save(ctx, KeyParticipants, list)
}

// Winners returns the winner list, most recent first.
func (r *Repository) Winners(ctx context.Context) ([]models.Winner, error) {
	list := []models.Winner{}
	if err := r.load(ctx, KeyWinners, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SaveWinners replaces the winner list.
func (r *Repository) SaveWinners(ctx context.Context, list []models.Winner) error {
	if list == nil {
		list = []models.Winner{}
	}
	return r.save(ctx, KeyWinners, list)
}

// AddWinner prepends w to the stored winner list.
func (r *Repository) AddWinner(ctx context.Context, w models.Winner) ([]models.Winner, error) {
	current, err := r.Winners(ctx)
	if err != nil {
		return nil, err
	}
	updated := make([]models.Winner, 0, len(current)+1)
	updated = append(updated, w)
	updated = append(updated, current...)
	if err := r.SaveWinners(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveWinner drops every record matching both n and pickedAt. It reports
// whether anything was removed; a miss leaves the stored list untouched.
func (r *Repository) RemoveWinner(ctx context.Context, n int, pickedAt string) (bool, error) {
	current, err := r.Winners(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]models.Winner, 0, len(current))
	for _, w := range current {
		if w.N == n && w.PickedAt == pickedAt {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == len(current) {
		return false, nil
	}
	return true, r.SaveWinners(ctx, kept)
}

// ClearWinners removes the winner list only.
func (r *Repository) ClearWinners(ctx context.Context) error {
	if err := r.kv.Delete(ctx, KeyWinners); err != nil {
		return fmt.Errorf("clear winners: %w", err)
	}
	return nil
}

// ResetAll removes participants together with winners. Winners recorded
// against a discarded participant set are treated as stale.
func (r *Repository) ResetAll(ctx context.Context) error {
	if err := r.kv.Delete(ctx, KeyParticipants); err != nil {
		return fmt.Errorf("clear participants: %w", err)
	}
	return r.ClearWinners(ctx)
}

// Settings returns stored settings, defaulting to repeats disallowed.
func (r *Repository) Settings(ctx context.Context) (models.Settings, error) {
	s := models.Settings{AllowRepeatWinners: false}
	if err := r.load(ctx, KeySettings, &s); err != nil {
		return models.Settings{}, err
	}
	return s, nil
}

// SaveSettings overwrites the settings record.
func (r *Repository) SaveSettings(ctx context.Context, s models.Settings) error {
	return r.save(ctx, KeySettings, s)
}

func (r *Repository) load(ctx context.Context, key string, into any) error {
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, key, err)
	}
	return nil
}

func (r *Repository) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
