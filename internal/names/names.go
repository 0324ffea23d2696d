// Package names persists the wheel's name list and optional predetermined
// winner as JSON values in a kvstore.
package names

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"spinwheel/internal/kvstore"
)

// Storage keys.
const (
	KeyNames  = "names"
	KeyWinner = "winner"
)

// MaxNameLength is the longest accepted name, in runes.
const MaxNameLength = 40

var (
	ErrEmptyName       = errors.New("name is empty")
	ErrNameTooLong     = fmt.Errorf("name is longer than %d characters", MaxNameLength)
	ErrIndexOutOfRange = errors.New("name index out of range")
)

// Repository reads and edits the persisted list. List edits go through
// kvstore.Update so concurrent edits, even from other processes, do not lose names.
type Repository struct {
	kv     kvstore.Store
	logger *slog.Logger
}

func NewRepository(kv kvstore.Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{kv: kv, logger: logger}
}

// Load returns the names and the predetermined winner. Missing or malformed
// values read as an empty list and no winner.
func (r *Repository) Load(ctx context.Context) ([]string, string, error) {
	names, err := r.Names(ctx)
	if err != nil {
		return nil, "", err
	}
	winner, err := r.Winner(ctx)
	if err != nil {
		return nil, "", err
	}
	return names, winner, nil
}

// Names returns the persisted list in order. Entries are normalized like
// Clean does; blank ones are dropped and over-long ones are kept.
func (r *Repository) Names(ctx context.Context) ([]string, error) {
	raw, err := r.kv.Get(ctx, KeyNames)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}
	return r.decodeNames(raw), nil
}

func (r *Repository) decodeNames(raw string) []string {
	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		r.logger.Warn("ignoring malformed names value", "err", err)
		return []string{}
	}
	out := make([]string, 0, len(stored))
	for _, name := range stored {
		if cleaned := normalize(name); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// Winner returns the predetermined winner, or "" when none is set.
func (r *Repository) Winner(ctx context.Context) (string, error) {
	raw, err := r.kv.Get(ctx, KeyWinner)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read winner: %w", err)
	}
	var winner string
	if err := json.Unmarshal([]byte(raw), &winner); err != nil {
		r.logger.Warn("ignoring malformed winner value", "err", err)
		return "", nil
	}
	return normalize(winner), nil
}

// Add appends a cleaned name and returns the new list. Duplicates are allowed.
func (r *Repository) Add(ctx context.Context, name string) ([]string, error) {
	cleaned, err := Clean(name)
	if err != nil {
		return nil, err
	}
	return r.edit(ctx, func(names []string) ([]string, error) {
		return append(names, cleaned), nil
	})
}

// Remove deletes the name at index and returns the new list.
func (r *Repository) Remove(ctx context.Context, index int) ([]string, error) {
	return r.edit(ctx, func(names []string) ([]string, error) {
		if index < 0 || index >= len(names) {
			return nil, ErrIndexOutOfRange
		}
		return append(names[:index], names[index+1:]...), nil
	})
}

// Replace overwrites the whole list with cleaned names, skipping blank ones.
func (r *Repository) Replace(ctx context.Context, names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		cleaned, err := Clean(name)
		if errors.Is(err, ErrEmptyName) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, cleaned)
	}
	return r.edit(ctx, func([]string) ([]string, error) {
		return out, nil
	})
}

// edit applies fn to the stored list in one kvstore update.
func (r *Repository) edit(ctx context.Context, fn func([]string) ([]string, error)) ([]string, error) {
	var result []string
	err := r.kv.Update(ctx, KeyNames, func(raw string, found bool) (string, error) {
		current := []string{}
		if found {
			current = r.decodeNames(raw)
		}
		next, err := fn(current)
		if err != nil {
			return "", err
		}
		encoded, err := json.Marshal(next)
		if err != nil {
			return "", err
		}
		result = next
		return string(encoded), nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetWinner stores a predetermined winner. A blank name clears it. The name
// does not have to be on the list; an absent winner falls back to random.
func (r *Repository) SetWinner(ctx context.Context, name string) error {
	cleaned, err := Clean(name)
	if errors.Is(err, ErrEmptyName) {
		return r.ClearWinner(ctx)
	}
	if err != nil {
		return err
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, KeyWinner, string(raw)); err != nil {
		return fmt.Errorf("save winner: %w", err)
	}
	return nil
}

// ClearWinner removes the predetermined winner.
func (r *Repository) ClearWinner(ctx context.Context) error {
	if err := r.kv.Delete(ctx, KeyWinner); err != nil {
		return fmt.Errorf("clear winner: %w", err)
	}
	return nil
}

// Clean trims and NFC-normalizes a name so visually identical input compares
// equal to a predetermined winner.
func Clean(name string) (string, error) {
	cleaned := normalize(name)
	if cleaned == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(cleaned) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return cleaned, nil
}

func normalize(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
