package catalog

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jhifarskiy/eatune/internal/config"
	"github.com/jhifarskiy/eatune/internal/models"
)

// Store wraps the MongoDB collection that holds the track catalog.
// The jukebox only reads from it once at startup; the ingester is the
// only writer.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// trackDoc mirrors the document shape the ingester writes.
type trackDoc struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	Title    string        `bson:"title,omitempty"`
	Artist   string        `bson:"artist,omitempty"`
	Duration string        `bson:"duration,omitempty"`
	Genre    string        `bson:"genre,omitempty"`
	Year     *int          `bson:"year,omitempty"`
	URL      string        `bson:"url"`
	CoverURL *string       `bson:"coverUrl,omitempty"`
}

func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, err := mongo.Connect(
		options.Client().
			ApplyURI(cfg.Mongo.URI).
			SetConnectTimeout(10 * time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Println("✅ Connected to MongoDB")

	return &Store{
		client: client,
		coll:   client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection),
	}, nil
}

// LoadAll reads the full catalog into memory, applying display defaults
// for documents that predate the current ingester.
func (s *Store) LoadAll(ctx context.Context) ([]models.Track, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("catalog find: %w", err)
	}

	var docs []trackDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("catalog decode: %w", err)
	}

	tracks := make([]models.Track, 0, len(docs))
	for _, d := range docs {
		tracks = append(tracks, d.toTrack())
	}
	return tracks, nil
}

// UpsertByURL inserts or refreshes a track document keyed on its audio
// URL, so re-running the ingester never duplicates catalog entries.
func (s *Store) UpsertByURL(ctx context.Context, t models.Track) error {
	doc := bson.M{
		"title":    t.Title,
		"artist":   t.Artist,
		"duration": t.Duration,
		"genre":    t.Genre,
		"url":      t.TrackURL,
	}
	if t.Year != nil {
		doc["year"] = *t.Year
	}
	if t.CoverURL != nil {
		doc["coverUrl"] = *t.CoverURL
	}

	_, err := s.coll.UpdateOne(ctx,
		bson.M{"url": t.TrackURL},
		bson.M{"$set": doc},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (d trackDoc) toTrack() models.Track {
	t := models.Track{
		ID:       d.ID.Hex(),
		Title:    d.Title,
		Artist:   d.Artist,
		Duration: d.Duration,
		Genre:    d.Genre,
		Year:     d.Year,
		TrackURL: d.URL,
		CoverURL: d.CoverURL,
	}
	if t.Title == "" {
		t.Title = "Unknown Title"
	}
	if t.Artist == "" {
		t.Artist = "Unknown Artist"
	}
	if t.Duration == "" {
		t.Duration = "0:00"
	}
	if t.Genre == "" {
		t.Genre = "Pop"
	}
	return t
}
