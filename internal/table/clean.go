package table

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultBadTokens are raw values treated as junk by ReplaceBadEntries when no tokens are given.
var DefaultBadTokens = []string{"None", "null"}

// ReplaceBadEntries rewrites every absent cell, and every cell equal to one of
// tokens, to the sentinel across all columns. It mutates t and returns the
// number of cells rewritten. Rewritten columns become text columns.
func (t *Table) ReplaceBadEntries(tokens ...string) (int, error) {
	if len(tokens) == 0 {
		tokens = DefaultBadTokens
	}
	bad := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		bad[tok] = struct{}{}
	}
	total := 0
	for _, name := range t.Names() {
		vals, missing, err := t.Texts(name)
		if err != nil {
			return total, err
		}
		changed := 0
		for i, v := range vals {
			if _, ok := bad[v]; ok || missing[i] {
				vals[i] = SentinelText
				changed++
			}
		}
		if changed == 0 {
			continue
		}
		if err := t.SetTexts(name, vals, nil); err != nil {
			return total, fmt.Errorf("replace bad entries: %w", err)
		}
		total += changed
	}
	slog.Debug("replaced bad entries", slog.Int("cells", total), slog.Any("tokens", tokens))
	return total, nil
}

// UniqueCount returns the number of distinct values in a column after
// lowercasing and dropping spaces. Absent and sentinel cells are ignored.
func (t *Table) UniqueCount(name string) (int, error) {
	vals, missing, err := t.Texts(name)
	if err != nil {
		return 0, err
	}
	seen := map[string]struct{}{}
	for i, v := range vals {
		if missing[i] || v == SentinelText {
			continue
		}
		seen[strings.ReplaceAll(strings.ToLower(v), " ", "")] = struct{}{}
	}
	return len(seen), nil
}
