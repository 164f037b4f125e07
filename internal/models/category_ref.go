package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryRef points a product at its Category document. Older documents
// stored the category as an inline label; those decode into Legacy so the
// repair tool can read them and rewrite the reference.
type CategoryRef struct {
	ID     primitive.ObjectID
	Legacy string
}

func RefTo(id primitive.ObjectID) CategoryRef {
	return CategoryRef{ID: id}
}

func (r CategoryRef) IsZero() bool {
	return r.ID.IsZero() && r.Legacy == ""
}

// UnmarshalBSONValue accepts an ObjectID, a legacy label string or null.
func (r *CategoryRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*r = CategoryRef{}
		return nil
	case bsontype.ObjectID:
		var id primitive.ObjectID
		if err := bson.UnmarshalValue(t, data, &id); err != nil {
			return err
		}
		*r = CategoryRef{ID: id}
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		*r = CategoryRef{Legacy: strings.TrimSpace(value)}
		return nil
	default:
		return fmt.Errorf("cannot decode %s into CategoryRef", t)
	}
}

// MarshalBSONValue writes the reference. A legacy label is written back
// unchanged until it is repaired.
func (r CategoryRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !r.ID.IsZero() {
		return bson.MarshalValue(r.ID)
	}
	if r.Legacy != "" {
		return bson.MarshalValue(r.Legacy)
	}
	return bsontype.Null, nil, nil
}

func (r CategoryRef) MarshalJSON() ([]byte, error) {
	if !r.ID.IsZero() {
		return json.Marshal(r.ID.Hex())
	}
	if r.Legacy != "" {
		return json.Marshal(r.Legacy)
	}
	return []byte("null"), nil
}

func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	var value *string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if value == nil || strings.TrimSpace(*value) == "" {
		*r = CategoryRef{}
		return nil
	}
	if id, err := primitive.ObjectIDFromHex(strings.TrimSpace(*value)); err == nil {
		*r = CategoryRef{ID: id}
		return nil
	}
	*r = CategoryRef{Legacy: strings.TrimSpace(*value)}
	return nil
}
