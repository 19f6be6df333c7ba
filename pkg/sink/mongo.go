package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/archlog/pkg/changelog"
)

// Defaults for the Mongo sink.
const (
	DefaultDatabase   = "archlog"
	DefaultCollection = "changelogs"
)

// upserter is the part of *mongo.Collection the sink needs.
type upserter interface {
	UpdateOne(ctx context.Context, filter any, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// Document is the stored form of one entry.
type Document struct {
	RunID     string         `bson:"run_id"`
	Package   string         `bson:"package"`
	Status    string         `bson:"status"`
	Entry     map[string]any `bson:"entry"`
	CreatedAt time.Time      `bson:"created_at"`
}

// Mongo upserts one document per (run, package).
type Mongo struct {
	client *mongo.Client
	coll   upserter
}

// NewMongo connects to uri and verifies the connection. An empty database
// is [DefaultDatabase].
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{client: client, coll: client.Database(database).Collection(DefaultCollection)}, nil
}

func (m *Mongo) Write(ctx context.Context, run Run) error {
	created := run.Started
	if created.IsZero() {
		created = time.Now()
	}
	for _, e := range run.Entries {
		doc, err := newDocument(run.ID, created, e)
		if err != nil {
			return err
		}
		filter := bson.D{{Key: "run_id", Value: doc.RunID}, {Key: "package", Value: doc.Package}}
		update := bson.D{{Key: "$set", Value: doc}}
		if _, err := m.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("store %s: %w", e.Name, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// newDocument stores the entry in its file schema so both sinks agree.
func newDocument(runID string, created time.Time, e changelog.Entry) (Document, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Document{}, fmt.Errorf("encode %s: %w", e.Name, err)
	}
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		return Document{}, fmt.Errorf("encode %s: %w", e.Name, err)
	}
	return Document{
		RunID:     runID,
		Package:   e.Name,
		Status:    string(e.Status),
		Entry:     entry,
		CreatedAt: created.UTC(),
	}, nil
}

var _ Writer = (*Mongo)(nil)
