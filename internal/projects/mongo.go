package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
	"github.com/lovestory/lovestory/backend/go-services/pkg/logger"
)

// MongoRepo stores projects keyed by a string "id" field. The content
// document is kept as an embedded BSON document so it stays queryable.
type MongoRepo struct {
	col *mongo.Collection
}

type mongoProject struct {
	ID               string     `bson:"id"`
	OwnerEmail       string     `bson:"ownerEmail"`
	TemplateType     string     `bson:"templateType"`
	TemplateCodeHash string     `bson:"templateCodeHash"`
	Slug             string     `bson:"slug"`
	IsPublished      bool       `bson:"isPublished"`
	Data             bson.Raw   `bson:"data,omitempty"`
	EditableUntil    *time.Time `bson:"editableUntil,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt"`
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "templateType", Value: 1}, {Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ownerEmail", Value: 1}, {Key: "templateType", Value: 1}}},
	}
	if _, err := col.Indexes().CreateMany(context.Background(), indexes); err != nil {
		logger.Warnf("projects: create indexes: %v", err)
	}
	return &MongoRepo{col: col}
}

// jsonToBSON converts a stored content document into an embedded BSON document.
func jsonToBSON(data json.RawMessage) (bson.Raw, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var d bson.D
	if err := bson.UnmarshalExtJSON(data, false, &d); err != nil {
		return nil, fmt.Errorf("%w: content document: %v", apperr.ErrValidation, err)
	}
	return bson.Marshal(d)
}

func bsonToJSON(raw bson.Raw) (json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	return bson.MarshalExtJSON(raw, false, false)
}

func (r mongoProject) project() (*Project, error) {
	data, err := bsonToJSON(r.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode project %s: %v", apperr.ErrPersistence, r.ID, err)
	}
	return &Project{
		ID:               r.ID,
		OwnerEmail:       r.OwnerEmail,
		TemplateType:     r.TemplateType,
		TemplateCodeHash: r.TemplateCodeHash,
		Slug:             r.Slug,
		IsPublished:      r.IsPublished,
		Data:             data,
		EditableUntil:    r.EditableUntil,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}, nil
}

func (m *MongoRepo) Create(ctx context.Context, p *Project) error {
	data, err := jsonToBSON(p.Data)
	if err != nil {
		return err
	}
	rec := mongoProject{
		ID:               p.ID,
		OwnerEmail:       p.OwnerEmail,
		TemplateType:     p.TemplateType,
		TemplateCodeHash: p.TemplateCodeHash,
		Slug:             p.Slug,
		IsPublished:      p.IsPublished,
		Data:             data,
		EditableUntil:    p.EditableUntil,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if _, err := m.col.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("%w: insert project: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (m *MongoRepo) findOne(ctx context.Context, filter bson.M) (*Project, error) {
	var rec mongoProject
	if err := m.col.FindOne(ctx, filter).Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: find project: %v", apperr.ErrPersistence, err)
	}
	return rec.project()
}

func (m *MongoRepo) GetByID(ctx context.Context, id string) (*Project, error) {
	return m.findOne(ctx, bson.M{"id": id})
}

func (m *MongoRepo) FindByOwner(ctx context.Context, email, template string) ([]*Project, error) {
	cur, err := m.col.Find(ctx, bson.M{"ownerEmail": email, "templateType": template})
	if err != nil {
		return nil, fmt.Errorf("%w: find projects: %v", apperr.ErrPersistence, err)
	}
	defer cur.Close(ctx)
	out := []*Project{}
	for cur.Next(ctx) {
		var rec mongoProject
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("%w: decode project: %v", apperr.ErrPersistence, err)
		}
		p, err := rec.project()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate projects: %v", apperr.ErrPersistence, err)
	}
	return out, nil
}

func (m *MongoRepo) FindPublishedBySlug(ctx context.Context, slug, template string) (*Project, error) {
	return m.findOne(ctx, bson.M{"slug": slug, "templateType": template, "isPublished": true})
}

func (m *MongoRepo) update(ctx context.Context, id string, set bson.M) error {
	res, err := m.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%w: update project %s: %v", apperr.ErrPersistence, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) UpdateData(ctx context.Context, id string, data json.RawMessage, at time.Time) error {
	doc, err := jsonToBSON(data)
	if err != nil {
		return err
	}
	return m.update(ctx, id, bson.M{"data": doc, "updatedAt": at})
}

func (m *MongoRepo) SetPublished(ctx context.Context, id string, published bool, at time.Time) error {
	return m.update(ctx, id, bson.M{"isPublished": published, "updatedAt": at})
}
