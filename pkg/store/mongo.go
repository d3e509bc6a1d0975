package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/hillchart/pkg/cache"
	"github.com/matzehuels/hillchart/pkg/errors"
	"github.com/matzehuels/hillchart/pkg/hill"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "hillchart"
	DefaultMongoCollection = "charts"
)

// MongoStore keeps each chart as one document keyed by chart name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// chartDoc is the stored document. The chart name is the _id.
type chartDoc struct {
	Chart     string        `bson:"_id"`
	Version   int           `bson:"version"`
	Markers   []hill.Marker `bson:"markers"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// OpenMongo connects to uri and pings the primary.
func OpenMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect to mongo")
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return transient(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongo")
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}, nil
}

func (s *MongoStore) Name() string { return BackendMongo }

func (s *MongoStore) Load(ctx context.Context, chart string) (Document, error) {
	if err := errors.ValidateChartName(chart); err != nil {
		return Document{}, err
	}
	var d chartDoc
	err := cache.RetryWithBackoff(ctx, func() error {
		return transient(s.coll.FindOne(ctx, bson.M{"_id": chart}).Decode(&d))
	})
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, notFound(chart)
	}
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeStore, err, "load chart %q", chart)
	}
	if d.Version > SchemaVersion {
		return Document{}, errors.New(errors.ErrCodeUnsupported, "chart schema version %d is newer than supported %d", d.Version, SchemaVersion)
	}
	if d.Markers == nil {
		d.Markers = []hill.Marker{}
	}
	return Document{Version: SchemaVersion, Markers: d.Markers, UpdatedAt: d.UpdatedAt}, nil
}

func (s *MongoStore) Save(ctx context.Context, chart string, doc Document) error {
	if err := errors.ValidateChartName(chart); err != nil {
		return err
	}
	if doc.Markers == nil {
		doc.Markers = []hill.Marker{}
	}
	d := chartDoc{Chart: chart, Version: SchemaVersion, Markers: doc.Markers, UpdatedAt: doc.UpdatedAt}
	err := cache.RetryWithBackoff(ctx, func() error {
		_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": chart}, d, options.Replace().SetUpsert(true))
		return transient(err)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save chart %q", chart)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// transient marks network and timeout errors as retryable.
func transient(err error) error {
	if err != nil && (mongo.IsNetworkError(err) || mongo.IsTimeout(err)) {
		return cache.Retryable(err)
	}
	return err
}
