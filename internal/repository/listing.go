package repository

import (
	"context"
	"errors"
	"math"
	"regexp"

	"github.com/deppfellow/listings-api/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxPrealloc caps the result slice capacity reserved up front.
const maxPrealloc = 64

// ErrListingNotFound signals that no present listing has the requested id.
// Malformed ids produce it too; it never wraps a store failure.
var ErrListingNotFound = errors.New("listing not found")

// ListingRepository runs listing queries against one collection.
type ListingRepository struct {
	coll *mongo.Collection
}

// NewListingRepository binds the repository to the listings collection.
// The collection's client is shared and long-lived; nothing here opens or
// closes connections.
func NewListingRepository(coll *mongo.Collection) *ListingRepository {
	return &ListingRepository{coll: coll}
}

// AddNewListing inserts fields as a new document and returns it with the
// store-assigned identifier. Identical calls create distinct documents.
func (r *ListingRepository) AddNewListing(ctx context.Context, fields model.Fields) (model.Listing, error) {
	doc := bson.M(fields.WithoutID())

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	doc[model.IDField] = result.InsertedID
	return model.NewListing(doc), nil
}

// GetAllListings returns the page-th window of perPage listings, ordered by
// identifier. A non-empty name keeps only listings whose name contains it,
// ignoring case.
func (r *ListingRepository) GetAllListings(ctx context.Context, page, perPage int, name string) ([]model.Listing, error) {
	cursor, err := r.coll.Find(ctx, NameFilter(name), WindowOptions(page, perPage))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	// perPage comes straight from the query string, so it only bounds the
	// cursor, never an allocation.
	listings := make([]model.Listing, 0, min(perPage, maxPrealloc))
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		listings = append(listings, model.NewListing(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return listings, nil
}

// GetListingByID returns the listing or ErrListingNotFound.
func (r *ListingRepository) GetListingByID(ctx context.Context, id string) (model.Listing, error) {
	var doc bson.M
	err := r.coll.FindOne(ctx, IDFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.NewListing(doc), nil
}

// UpdateListingByID overwrites only the given fields and reports how many
// documents changed. Empty field sets and writes that leave the document
// as it was both report zero.
func (r *ListingRepository) UpdateListingByID(ctx context.Context, fields model.Fields, id string) (int64, error) {
	set := fields.WithoutID()
	if len(set) == 0 {
		return 0, nil
	}

	result, err := r.coll.UpdateOne(ctx, IDFilter(id), bson.M{"$set": bson.M(set)})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// DeleteListingByID removes the listing and reports how many documents were
// removed.
func (r *ListingRepository) DeleteListingByID(ctx context.Context, id string) (int64, error) {
	result, err := r.coll.DeleteOne(ctx, IDFilter(id))
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// IDFilter matches a listing by its opaque identifier. Ids that parse as an
// ObjectID match either encoding, since imported data may use plain strings.
func IDFilter(id string) bson.D {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.D{{Key: model.IDField, Value: bson.D{{Key: "$in", Value: bson.A{oid, id}}}}}
	}
	return bson.D{{Key: model.IDField, Value: id}}
}

// NameFilter builds the listing filter for an optional name. The name is
// matched literally as a case-insensitive substring.
func NameFilter(name string) bson.D {
	if name == "" {
		return bson.D{}
	}
	return bson.D{{Key: "name", Value: primitive.Regex{
		Pattern: regexp.QuoteMeta(name),
		Options: "i",
	}}}
}

// WindowOptions sorts by identifier and selects the 1-indexed page. Callers
// pass page and perPage already normalized to positive values.
func WindowOptions(page, perPage int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: model.IDField, Value: 1}}).
		SetSkip(windowSkip(page, perPage)).
		SetLimit(int64(perPage))
}

// windowSkip returns (page-1)*perPage, saturating at math.MaxInt64 so a
// page far past the end selects nothing instead of wrapping around.
func windowSkip(page, perPage int) int64 {
	before, size := int64(page-1), int64(perPage)
	if size > 0 && before > math.MaxInt64/size {
		return math.MaxInt64
	}
	return before * size
}
