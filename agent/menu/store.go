// Package menu provides the read-only pizza catalog. Lookups are
// case-insensitive and diacritic-insensitive: "margheríta classica"
// resolves to "Margherita Classica".
package menu

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	contractx "github.com/forno-labs/pizzabot/agent/contract"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds case and strips combining marks so that menu names can
// be matched the way customers actually type them.
func Normalize(name string) string {
	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Store is an immutable in-memory catalog. Safe for concurrent turns.
type Store struct {
	items []contractx.MenuItem
	index map[string]int
}

func NewStore(items []contractx.MenuItem) *Store {
	s := &Store{
		items: make([]contractx.MenuItem, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		key := Normalize(item.Name)
		if key == "" {
			continue
		}
		if _, exists := s.index[key]; exists {
			continue
		}
		s.index[key] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

// LookupPrice resolves a normalized exact match first, then falls back to
// a substring match when it identifies exactly one catalog entry.
// Ambiguous or empty names are reported as unknown.
func (s *Store) LookupPrice(name string) (contractx.MenuItem, error) {
	key := Normalize(name)
	if key == "" {
		return contractx.MenuItem{}, fmt.Errorf("%w: empty name", contractx.ErrUnknownItem)
	}

	if idx, ok := s.index[key]; ok {
		return s.items[idx], nil
	}

	matched := -1
	for candidate, idx := range s.index {
		if !strings.Contains(candidate, key) {
			continue
		}
		if matched >= 0 {
			return contractx.MenuItem{}, fmt.Errorf("%w: %q is ambiguous", contractx.ErrUnknownItem, name)
		}
		matched = idx
	}
	if matched < 0 {
		return contractx.MenuItem{}, fmt.Errorf("%w: %q", contractx.ErrUnknownItem, name)
	}
	return s.items[matched], nil
}

// ListMenu returns a fresh copy of the catalog in seed order.
func (s *Store) ListMenu() []contractx.MenuItem {
	out := make([]contractx.MenuItem, len(s.items))
	copy(out, s.items)
	return out
}
