// Package model holds the listing document shapes shared by the layers.
package model

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDField is the document key holding the store-assigned identifier.
const IDField = "_id"

// Fields is a caller-supplied, schema-less attribute set.
type Fields map[string]any

// ParseFields decodes a JSON object into Fields using relaxed MongoDB
// Extended JSON, so integers stay integers when stored. An empty body is an
// empty field set.
func ParseFields(body []byte) (Fields, error) {
	if len(body) == 0 {
		return Fields{}, nil
	}

	var doc bson.M
	if err := bson.UnmarshalExtJSON(body, false, &doc); err != nil {
		return nil, err
	}
	return Fields(doc), nil
}

// WithoutID returns a copy of f without the identifier key. Identifiers are
// assigned by the store and never overwritten by callers.
func (f Fields) WithoutID() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

// Listing is a stored document. Its identifier is always exposed as an
// opaque string under "_id".
type Listing map[string]any

// ID returns the listing identifier.
func (l Listing) ID() string {
	id, _ := l[IDField].(string)
	return id
}

// Name returns the "name" attribute when it is a string.
func (l Listing) Name() string {
	name, _ := l["name"].(string)
	return name
}

// NewListing converts a decoded store document, rendering the identifier as
// a string.
func NewListing(doc bson.M) Listing {
	l := Listing(doc)
	if raw, ok := doc[IDField]; ok {
		l[IDField] = IDString(raw)
	}
	return l
}

// IDString renders a store identifier as an opaque string.
func IDString(raw any) string {
	switch v := raw.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
