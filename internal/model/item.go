package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Item is the domain model for a list entry.
// ID is stable across reorders; only Checked ever changes after creation.
type Item struct {
	ID      string `json:"id" yaml:"id"`
	Content string `json:"content" yaml:"content"`
	Checked bool   `json:"checked" yaml:"checked"`
}

// Clone returns a copy of items that shares no backing array with the input.
// A nil input yields an empty, non-nil slice.
func Clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// IndexOf returns the position of the item with the given id, or -1.
func IndexOf(items []Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// Move returns a new slice with the element at from removed and
// reinserted at to. Elements in between shift by one; the input is left
// untouched. Callers validate the indices.
func Move(items []Item, from, to int) []Item {
	out := Clone(items)
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out, Item{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out
}

// Stats counts checked and unchecked items.
func Stats(items []Item) (done, pending int) {
	for _, it := range items {
		if it.Checked {
			done++
		} else {
			pending++
		}
	}
	return
}

// Encode renders items in the textual snapshot form shared by the remote
// record and the local cache: a JSON array.
func Encode(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return string(b), nil
}

// Decode parses a snapshot produced by Encode. Blank and "null" snapshots
// decode to an empty list.
func Decode(s string) ([]Item, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return []Item{}, nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	if err := CheckUnique(items); err != nil {
		return nil, err
	}
	return items, nil
}

// CheckUnique reports the first id that appears more than once.
func CheckUnique(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("duplicate item id %q", it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}
