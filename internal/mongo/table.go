package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

// table implements types.Table on a MongoDB collection.
type table struct {
	backend *Backend
	coll    *driver.Collection
}

// attached reports whether the parent backend is still attached. The driver
// client is safe for concurrent use, so operations only need the read lock
// long enough to check.
func (t *table) attached() bool {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	return t.backend.attached
}

func (t *table) Get(ctx context.Context, id string) (*types.Fruit, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if !t.attached() {
		return nil, types.ErrCupboardDetached
	}

	var doc fruitDoc
	err = t.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, driver.ErrNoDocuments) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding fruit: %w", err)
	}
	return doc.fruit(), nil
}

func (t *table) Set(ctx context.Context, id string, fruit *types.Fruit) (string, error) {
	if fruit == nil {
		return "", types.ErrInvalidData
	}
	if !t.attached() {
		return "", types.ErrCupboardDetached
	}

	now := time.Now()
	if id == "" {
		doc := newDoc(fruit, now)
		if _, err := t.coll.InsertOne(ctx, doc); err != nil {
			return "", fmt.Errorf("inserting fruit: %w", err)
		}
		fruit.FruitID = doc.ID.Hex()
		fruit.CreatedAt = doc.CreatedAt
		fruit.UpdatedAt = doc.UpdatedAt
		return fruit.FruitID, nil
	}

	oid, err := parseID(id)
	if err != nil {
		return "", err
	}
	res, err := t.coll.UpdateOne(ctx, bson.M{"_id": oid}, updateDoc(fruit, now))
	if err != nil {
		return "", fmt.Errorf("updating fruit: %w", err)
	}
	if res.MatchedCount == 0 {
		return "", types.ErrNotFound
	}
	fruit.FruitID = id
	fruit.UpdatedAt = now.UTC().Truncate(time.Millisecond)
	return id, nil
}

func (t *table) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if !t.attached() {
		return types.ErrCupboardDetached
	}

	res, err := t.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting fruit: %w", err)
	}
	if res.DeletedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (t *table) Fetch(ctx context.Context, filter map[string]any) ([]*types.Fruit, error) {
	f, err := types.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	if !t.attached() {
		return nil, types.ErrCupboardDetached
	}

	cur, err := t.coll.Find(ctx, filterDoc(f), options.Find().SetSort(fetchSort))
	if err != nil {
		return nil, fmt.Errorf("finding fruits: %w", err)
	}
	var docs []fruitDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding fruits: %w", err)
	}

	fruits := make([]*types.Fruit, 0, len(docs))
	for _, d := range docs {
		fruits = append(fruits, d.fruit())
	}
	return fruits, nil
}

func (t *table) Clear(ctx context.Context) error {
	if !t.attached() {
		return types.ErrCupboardDetached
	}
	if _, err := t.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clearing fruits: %w", err)
	}
	return nil
}

func (t *table) Import(ctx context.Context, fruits []*types.Fruit) ([]string, error) {
	for _, f := range fruits {
		if f == nil {
			return nil, types.ErrInvalidData
		}
	}
	if !t.attached() {
		return nil, types.ErrCupboardDetached
	}
	if len(fruits) == 0 {
		return []string{}, nil
	}

	now := time.Now()
	docs := make([]any, len(fruits))
	built := make([]fruitDoc, len(fruits))
	for i, f := range fruits {
		built[i] = newDoc(f, now)
		docs[i] = built[i]
	}
	if _, err := t.coll.InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("importing fruits: %w", err)
	}

	ids := make([]string, len(fruits))
	for i, f := range fruits {
		f.FruitID = built[i].ID.Hex()
		f.CreatedAt = built[i].CreatedAt
		f.UpdatedAt = built[i].UpdatedAt
		ids[i] = f.FruitID
	}
	return ids, nil
}
