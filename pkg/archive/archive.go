// Package archive persists survey documents and run records in MongoDB so
// beamline geometry can be compared across machine configurations over
// time. Surveys land in the `surveys` collection and run history in
// `runs`, both keyed by beamline name with a storage timestamp for
// latest-first retrieval.
package archive

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/runlog"
	"github.com/matzehuels/beamforge/pkg/survey"
)

// Options configures the MongoDB connection.
type Options struct {
	URI      string // mongodb://host:port, defaults to mongodb://localhost:27017
	Database string // defaults to beamforge
}

// Archive is a MongoDB-backed store for surveys and run records.
type Archive struct {
	client  *mongo.Client
	surveys *mongo.Collection
	runs    *mongo.Collection
}

// StoredSurvey is an archived survey document with its storage envelope.
type StoredSurvey struct {
	Line     string           `bson:"line" json:"line"`
	StoredAt time.Time        `bson:"stored_at" json:"stored_at"`
	Survey   *survey.Document `bson:"survey" json:"survey"`
}

// StoredRun is an archived run record with its storage envelope.
type StoredRun struct {
	Line     string         `bson:"line" json:"line"`
	StoredAt time.Time      `bson:"stored_at" json:"stored_at"`
	Run      *runlog.Record `bson:"run" json:"run"`
}

// Connect creates an archive on the given MongoDB deployment. The driver
// connects lazily, so an unreachable server surfaces on first use rather
// than here.
func Connect(ctx context.Context, opts Options) (*Archive, error) {
	if opts.URI == "" {
		opts.URI = "mongodb://localhost:27017"
	}
	if opts.Database == "" {
		opts.Database = "beamforge"
	}

	client, err := mongo.Connect(ctx, mongoopts.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "connecting to %s", opts.URI)
	}

	db := client.Database(opts.Database)
	return &Archive{
		client:  client,
		surveys: db.Collection("surveys"),
		runs:    db.Collection("runs"),
	}, nil
}

// EnsureIndexes creates the (line, stored_at) indexes that back
// latest-first queries. Call once at startup; requires a reachable server.
func (a *Archive) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: "line", Value: 1}, {Key: "stored_at", Value: -1}},
	}
	for _, coll := range []*mongo.Collection{a.surveys, a.runs} {
		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			return errors.Wrap(errors.ErrCodeArchive, err, "creating index on %s", coll.Name())
		}
	}
	return nil
}

// PutSurvey archives a survey document under its beamline name.
func (a *Archive) PutSurvey(ctx context.Context, doc *survey.Document) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil survey document")
	}
	stored := StoredSurvey{Line: doc.Name, StoredAt: time.Now().UTC(), Survey: doc}
	if _, err := a.surveys.InsertOne(ctx, stored); err != nil {
		return errors.Wrap(errors.ErrCodeArchive, err, "archiving survey for %q", doc.Name)
	}
	return nil
}

// LatestSurvey returns the most recently archived survey for a beamline.
func (a *Archive) LatestSurvey(ctx context.Context, line string) (*survey.Document, error) {
	opts := mongoopts.FindOne().SetSort(bson.D{{Key: "stored_at", Value: -1}})
	var stored StoredSurvey
	err := a.surveys.FindOne(ctx, bson.M{"line": line}, opts).Decode(&stored)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "no archived survey for %q", line)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "loading survey for %q", line)
	}
	return stored.Survey, nil
}

// ListSurveys returns all archived surveys for a beamline, newest first.
func (a *Archive) ListSurveys(ctx context.Context, line string) ([]StoredSurvey, error) {
	opts := mongoopts.Find().SetSort(bson.D{{Key: "stored_at", Value: -1}})
	cursor, err := a.surveys.Find(ctx, bson.M{"line": line}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "listing surveys for %q", line)
	}
	var stored []StoredSurvey
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "decoding surveys for %q", line)
	}
	return stored, nil
}

// PutRun archives a run record under its beamline name.
func (a *Archive) PutRun(ctx context.Context, rec *runlog.Record) error {
	if rec == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil run record")
	}
	stored := StoredRun{Line: rec.Line, StoredAt: time.Now().UTC(), Run: rec}
	if _, err := a.runs.InsertOne(ctx, stored); err != nil {
		return errors.Wrap(errors.ErrCodeArchive, err, "archiving run for %q", rec.Line)
	}
	return nil
}

// LatestRun returns the most recently archived run for a beamline.
func (a *Archive) LatestRun(ctx context.Context, line string) (*runlog.Record, error) {
	opts := mongoopts.FindOne().SetSort(bson.D{{Key: "stored_at", Value: -1}})
	var stored StoredRun
	err := a.runs.FindOne(ctx, bson.M{"line": line}, opts).Decode(&stored)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeRunNotFound, "no archived run for %q", line)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "loading run for %q", line)
	}
	return stored.Run, nil
}

// ListRuns returns all archived runs for a beamline, newest first.
func (a *Archive) ListRuns(ctx context.Context, line string) ([]StoredRun, error) {
	opts := mongoopts.Find().SetSort(bson.D{{Key: "stored_at", Value: -1}})
	cursor, err := a.runs.Find(ctx, bson.M{"line": line}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "listing runs for %q", line)
	}
	var stored []StoredRun
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "decoding runs for %q", line)
	}
	return stored, nil
}

// Close disconnects from the server.
func (a *Archive) Close(ctx context.Context) error {
	if err := a.client.Disconnect(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeArchive, err, "disconnecting")
	}
	return nil
}
