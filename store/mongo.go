package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoCollection struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMongoCollection(db *mongo.Database, name string) Collection {
	return &mongoCollection{db: db, coll: db.Collection(name)}
}

func (m *mongoCollection) Name() string {
	return m.coll.Name()
}

// InsertOne assigns _id and the created/updated timestamps when the caller
// did not, then returns the stored document.
func (m *mongoCollection) InsertOne(ctx context.Context, doc bson.M) (bson.M, error) {
	out := make(bson.M, len(doc)+3)
	for k, v := range doc {
		out[k] = v
	}
	if _, ok := out["_id"]; !ok {
		out["_id"] = primitive.NewObjectID()
	}
	now := time.Now()
	if _, ok := out["created"]; !ok {
		out["created"] = now
	}
	if _, ok := out["updated"]; !ok {
		out["updated"] = now
	}

	if _, err := m.coll.InsertOne(ctx, out); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", m.coll.Name(), err)
	}
	return out, nil
}

func (m *mongoCollection) FindOne(ctx context.Context, filter bson.M, populate ...Populate) (bson.M, error) {
	var doc bson.M
	if err := m.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, err
	}
	if err := m.populate(ctx, []bson.M{doc}, populate); err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *mongoCollection) Find(ctx context.Context, filter bson.M, opts FindOptions) ([]bson.M, error) {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(castSort(opts.Sort))
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit != 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := m.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", m.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.coll.Name(), err)
	}
	if err = m.populate(ctx, docs, opts.Populate); err != nil {
		return nil, err
	}
	return docs, nil
}

func (m *mongoCollection) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	return m.coll.CountDocuments(ctx, filter)
}

func (m *mongoCollection) FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (bson.M, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	if err := m.coll.FindOneAndUpdate(ctx, filter, asUpdate(update), opts).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *mongoCollection) UpdateMany(ctx context.Context, filter bson.M, update bson.M) (int64, error) {
	res, err := m.coll.UpdateMany(ctx, filter, asUpdate(update))
	if err != nil {
		return 0, fmt.Errorf("update many in %s: %w", m.coll.Name(), err)
	}
	return res.MatchedCount, nil
}

func (m *mongoCollection) BulkUpdate(ctx context.Context, ops []UpdateOp) (int64, error) {
	models := make([]mongo.WriteModel, 0, len(ops))
	for _, op := range ops {
		models = append(models, mongo.NewUpdateOneModel().SetFilter(op.Filter).SetUpdate(asUpdate(op.Update)))
	}

	res, err := m.coll.BulkWrite(ctx, models)
	if err != nil {
		return 0, fmt.Errorf("bulk write in %s: %w", m.coll.Name(), err)
	}
	return res.MatchedCount, nil
}

func (m *mongoCollection) Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error) {
	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", m.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode aggregate %s: %w", m.coll.Name(), err)
	}
	return docs, nil
}

func (m *mongoCollection) populate(ctx context.Context, docs []bson.M, specs []Populate) error {
	for _, spec := range specs {
		var ids []primitive.ObjectID
		for _, doc := range docs {
			if id, ok := doc[spec.Path].(primitive.ObjectID); ok {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}

		findOpts := options.Find()
		if len(spec.Fields) > 0 {
			projection := bson.M{}
			for _, f := range spec.Fields {
				projection[f] = 1
			}
			findOpts.SetProjection(projection)
		}

		cursor, err := m.db.Collection(spec.From).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOpts)
		if err != nil {
			return fmt.Errorf("populate %s: %w", spec.Path, err)
		}
		var refs []bson.M
		if err = cursor.All(ctx, &refs); err != nil {
			return fmt.Errorf("populate %s: %w", spec.Path, err)
		}

		byID := make(map[primitive.ObjectID]bson.M, len(refs))
		for _, ref := range refs {
			if id, ok := ref["_id"].(primitive.ObjectID); ok {
				byID[id] = ref
			}
		}
		for _, doc := range docs {
			if id, ok := doc[spec.Path].(primitive.ObjectID); ok {
				if ref, found := byID[id]; found {
					doc[spec.Path] = ref
				}
			}
		}
	}
	return nil
}

// asUpdate moves plain fields of a mixed update document under $set, so a
// partial document can be passed where an update is expected.
func asUpdate(update bson.M) bson.M {
	out := bson.M{}
	set := bson.M{}
	for k, v := range update {
		if strings.HasPrefix(k, "$") {
			out[k] = v
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		return out
	}
	if existing, ok := out["$set"].(bson.M); ok {
		for k, v := range set {
			existing[k] = v
		}
		return out
	}
	out["$set"] = set
	return out
}

// castSort turns the textual directions accepted by the list endpoints into
// the numeric form the server expects.
func castSort(sort bson.D) bson.D {
	out := make(bson.D, 0, len(sort))
	for _, e := range sort {
		if s, ok := e.Value.(string); ok {
			switch strings.ToLower(s) {
			case "1", "asc", "ascending":
				e.Value = 1
			case "-1", "desc", "descending":
				e.Value = -1
			}
		}
		out = append(out, e)
	}
	return out
}
