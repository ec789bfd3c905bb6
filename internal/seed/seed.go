// Package seed loads the fixed fruit set used to reset a store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

//go:embed seeds.yaml
var defaultSeeds []byte

type seedFile struct {
	Fruits []seedFruit `yaml:"fruits"`
}

type seedFruit struct {
	Name       string `yaml:"name"`
	Color      string `yaml:"color"`
	ReadyToEat bool   `yaml:"readyToEat"`
}

// Default returns the embedded seed set.
func Default() ([]*types.Fruit, error) {
	return Parse(defaultSeeds)
}

// Load reads a seed file. An empty path returns the embedded set.
func Load(path string) ([]*types.Fruit, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes seed YAML of the form `fruits: [{name, color, readyToEat}]`.
func Parse(data []byte) ([]*types.Fruit, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	fruits := make([]*types.Fruit, len(f.Fruits))
	for i, s := range f.Fruits {
		fruits[i] = &types.Fruit{Name: s.Name, Color: s.Color, ReadyToEat: s.ReadyToEat}
	}
	return fruits, nil
}

// Reset deletes every fruit in tbl and inserts fruits. It returns the
// assigned ids in input order.
func Reset(ctx context.Context, tbl types.Table, fruits []*types.Fruit) ([]string, error) {
	if err := tbl.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clearing fruits: %w", err)
	}
	ids, err := tbl.Import(ctx, fruits)
	if err != nil {
		return nil, fmt.Errorf("inserting seeds: %w", err)
	}
	return ids, nil
}
