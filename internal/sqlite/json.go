// JSON record structures for SQLite backend persistence.
// These structures define the JSONL record format for data files.
package sqlite

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

// timeLayout is a fixed-width UTC timestamp so that created_at sorts
// lexically in insertion order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// fruitJSON represents a fruit in fruits.jsonl.
type fruitJSON struct {
	FruitID    string `json:"_id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	ReadyToEat bool   `json:"readyToEat"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Hand-edited files may carry plain RFC 3339.
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func toFruitJSON(f *types.Fruit) fruitJSON {
	return fruitJSON{
		FruitID:    f.FruitID,
		Name:       f.Name,
		Color:      f.Color,
		ReadyToEat: f.ReadyToEat,
		CreatedAt:  formatTime(f.CreatedAt),
		UpdatedAt:  formatTime(f.UpdatedAt),
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
