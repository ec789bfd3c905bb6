package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

// fruitDoc is the BSON shape of a fruit document.
type fruitDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	Color      string             `bson:"color"`
	ReadyToEat bool               `bson:"readyToEat"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d fruitDoc) fruit() *types.Fruit {
	return &types.Fruit{
		FruitID:    d.ID.Hex(),
		Name:       d.Name,
		Color:      d.Color,
		ReadyToEat: d.ReadyToEat,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

// newDoc builds a document for an insert with a fresh ObjectID.
// BSON dates carry milliseconds, so now is truncated to match what reads return.
func newDoc(f *types.Fruit, now time.Time) fruitDoc {
	now = now.UTC().Truncate(time.Millisecond)
	return fruitDoc{
		ID:         primitive.NewObjectID(),
		Name:       f.Name,
		Color:      f.Color,
		ReadyToEat: f.ReadyToEat,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// parseID converts a hex ObjectID string.
func parseID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NilObjectID, types.ErrInvalidID
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", types.ErrInvalidID, id)
	}
	return oid, nil
}

// filterDoc translates a parsed Fetch filter into a query document.
func filterDoc(f types.Filter) bson.M {
	q := bson.M{}
	if f.Name != nil {
		q["name"] = *f.Name
	}
	if f.Color != nil {
		q["color"] = *f.Color
	}
	if f.ReadyToEat != nil {
		q["readyToEat"] = *f.ReadyToEat
	}
	return q
}

// updateDoc replaces the mutable fields of a fruit.
func updateDoc(f *types.Fruit, now time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"name":       f.Name,
		"color":      f.Color,
		"readyToEat": f.ReadyToEat,
		"updatedAt":  now.UTC().Truncate(time.Millisecond),
	}}
}

// fetchSort orders documents oldest first.
var fetchSort = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
