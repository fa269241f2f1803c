package list

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Makepad-fr/dragdo/internal/model"
)

// IDGenerator picks the id for a newly appended item. existing is the
// current sequence; the returned id must not collide with any of it.
type IDGenerator interface {
	NewID(existing []model.Item) string
}

// UUIDGenerator yields item-<8 hex chars> ids from random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(existing []model.Item) string {
	for {
		id := "item-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
		if model.IndexOf(existing, id) < 0 {
			return id
		}
	}
}

// IndexGenerator derives ids from the list length plus Offset, the
// browser-era scheme. It walks forward past ids already in use.
type IndexGenerator struct {
	Offset int
}

func (g IndexGenerator) NewID(existing []model.Item) string {
	for n := len(existing) + g.Offset; ; n++ {
		id := fmt.Sprintf("item-%d", n)
		if model.IndexOf(existing, id) < 0 {
			return id
		}
	}
}

// SeedItems builds n placeholder items with ids item-0..item-(n-1).
func SeedItems(n int) []model.Item {
	out := make([]model.Item, n)
	for i := range out {
		out[i] = model.Item{ID: fmt.Sprintf("item-%d", i), Content: fmt.Sprintf("item %d", i)}
	}
	return out
}
