package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"goout/internal/model"
	"goout/internal/repository"
)

// ResourceMongo is a MongoDB implementation of repository.ResourceRepository
// with one collection per kind.
type ResourceMongo struct {
	db          *mongo.Database
	collections map[string]string
}

// NewResourceMongo maps kind names to collection names. Kinds missing from
// collections use their own name.
func NewResourceMongo(db *mongo.Database, collections map[string]string) *ResourceMongo {
	if collections == nil {
		collections = map[string]string{}
	}
	return &ResourceMongo{db: db, collections: collections}
}

var _ repository.ResourceRepository = (*ResourceMongo)(nil)

type resourceDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID    string             `bson:"userId"`
	Attributes bson.M             `bson:"attributes"`
	Images     []string           `bson:"images"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d resourceDoc) toModel(kind string) *model.Resource {
	attrs := make(map[string]any, len(d.Attributes))
	for k, v := range d.Attributes {
		attrs[k] = normalize(v)
	}
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &model.Resource{
		ID:         d.ID.Hex(),
		Kind:       kind,
		OwnerID:    d.OwnerID,
		Attributes: attrs,
		Images:     images,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// normalize turns driver container types into plain maps and slices.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = normalize(e)
		}
		return m
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	}
	return v
}

func (r *ResourceMongo) coll(kind string) *mongo.Collection {
	name, ok := r.collections[kind]
	if !ok {
		name = kind
	}
	return r.db.Collection(name)
}

// Create inserts a new document with a fresh ObjectID.
func (r *ResourceMongo) Create(ctx context.Context, res *model.Resource) (*model.Resource, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	attrs := bson.M{}
	for k, v := range res.Attributes {
		attrs[k] = v
	}
	images := res.Images
	if images == nil {
		images = []string{}
	}
	doc := resourceDoc{
		ID:         primitive.NewObjectID(),
		OwnerID:    res.OwnerID,
		Attributes: attrs,
		Images:     images,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := r.coll(res.Kind).InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toModel(res.Kind), nil
}

// FindByID fetches a single document.
func (r *ResourceMongo) FindByID(ctx context.Context, kind, id string) (*model.Resource, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc resourceDoc
	if err := r.coll(kind).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(kind), nil
}

// List counts the matches and fetches one page sorted newest first.
func (r *ResourceMongo) List(ctx context.Context, lq repository.ListQuery) (*repository.PageResult[model.Resource], error) {
	filter := buildFilter(lq)
	c := r.coll(lq.Kind)

	total, err := c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(lq.Offset)).
		SetLimit(int64(lq.Limit))
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]model.Resource, 0, lq.Limit)
	for cur.Next(ctx) {
		var doc resourceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		items = append(items, *doc.toModel(lq.Kind))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Resource]{Items: items, Total: int(total)}, nil
}

// Delete removes the document and returns its last stored state.
func (r *ResourceMongo) Delete(ctx context.Context, kind, id string) (*model.Resource, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc resourceDoc
	if err := r.coll(kind).FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(kind), nil
}

// Ping checks the primary is reachable.
func (r *ResourceMongo) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

func buildFilter(lq repository.ListQuery) bson.M {
	filter := bson.M{}

	if lq.OwnerID != "" {
		filter["userId"] = lq.OwnerID
	}

	if s := strings.TrimSpace(lq.Search); s != "" && len(lq.SearchFields) > 0 {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		ors := make(bson.A, 0, len(lq.SearchFields))
		for _, f := range lq.SearchFields {
			ors = append(ors, bson.M{"attributes." + f: pattern})
		}
		filter["$or"] = ors
	}

	// A scalar equality and an array membership share the same query shape.
	for _, m := range lq.Equals {
		filter["attributes."+m.Field] = m.Value
	}
	for _, m := range lq.Contains {
		filter["attributes."+m.Field] = m.Value
	}

	for _, rg := range lq.Ranges {
		if rg.Min == nil && rg.Max == nil {
			continue
		}
		cond := bson.M{}
		if rg.Min != nil {
			cond["$gte"] = *rg.Min
		}
		if rg.Max != nil {
			cond["$lte"] = *rg.Max
		}
		filter["attributes."+rg.Field] = cond
	}
	return filter
}
