package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultDatabase   = "modsync"
	defaultCollection = "reports"
)

// Mongo stores every message as a document {text, title, sentAt} in a
// collection, giving a queryable history of runs.
type Mongo struct {
	uri        string
	host       string
	database   string
	collection string
	title      string

	client *mongo.Client
}

// NewMongo parses mongodb://host[:port]/database?collection=name. The
// database defaults to "modsync" and the collection to "reports".
func NewMongo(rawURL string) (*Mongo, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	coll := q.Get("collection")
	if coll == "" {
		coll = defaultCollection
	}
	q.Del("collection")
	u.RawQuery = q.Encode()

	db := strings.Trim(u.Path, "/")
	if db == "" {
		db = defaultDatabase
	}
	return &Mongo{uri: u.String(), host: u.Host, database: db, collection: coll}, nil
}

func (m *Mongo) Name() string { return "mongodb:" + m.host + "/" + m.database + "." + m.collection }

// SetTitle records the session title on stored documents.
func (m *Mongo) SetTitle(title string) { m.title = title }

func (m *Mongo) Connect(ctx context.Context) error {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return err
	}
	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return err
	}
	m.client = c
	return nil
}

func (m *Mongo) Send(ctx context.Context, text string) error {
	if m.client == nil {
		return fmt.Errorf("mongodb %s: not connected", m.host)
	}
	doc := bson.M{"text": text, "sentAt": time.Now().UTC()}
	if m.title != "" {
		doc["title"] = m.title
	}
	_, err := m.client.Database(m.database).Collection(m.collection).InsertOne(ctx, doc)
	return err
}

func (m *Mongo) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := m.client.Disconnect(ctx)
	m.client = nil
	return err
}
