// Package store reads student records from MongoDB.
package store

import (
	"context"
	"fmt"

	"github.com/Ayash-Bera/student-lookup/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoGateway runs lookups against the student collection.
type MongoGateway struct {
	coll   *mongo.Collection
	logger *logrus.Logger
}

func NewMongoGateway(coll *mongo.Collection, logger *logrus.Logger) *MongoGateway {
	return &MongoGateway{
		coll:   coll,
		logger: logger,
	}
}

// Find returns every document matching filter in natural order. Zero
// matches is models.ErrNotFound. A document that cannot be decoded is logged
// and skipped so one malformed row does not hide the others.
func (g *MongoGateway) Find(ctx context.Context, filter bson.D) ([]models.StudentRecord, error) {
	cursor, err := g.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", g.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var (
		records []models.StudentRecord
		skipped int
		lastErr error
	)
	for cursor.Next(ctx) {
		var rec models.StudentRecord
		if err := cursor.Decode(&rec); err != nil {
			g.logger.WithError(err).WithFields(logrus.Fields{
				"collection": g.coll.Name(),
				"position":   len(records) + skipped,
			}).Warn("Skipping undecodable student document")
			skipped++
			lastErr = err
			continue
		}
		rec.Normalize()
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s documents: %w", g.coll.Name(), err)
	}

	g.logger.WithFields(logrus.Fields{
		"collection": g.coll.Name(),
		"matches":    len(records),
		"skipped":    skipped,
	}).Debug("Student query executed")

	if len(records) == 0 {
		if skipped > 0 {
			return nil, fmt.Errorf("failed to decode %d %s documents: %w", skipped, g.coll.Name(), lastErr)
		}
		return nil, models.ErrNotFound
	}
	return records, nil
}

// InsertMany stores raw documents as-is, preserving their original shapes.
func (g *MongoGateway) InsertMany(ctx context.Context, docs []interface{}) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	res, err := g.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", g.coll.Name(), err)
	}
	return len(res.InsertedIDs), nil
}

// Drop removes the whole collection.
func (g *MongoGateway) Drop(ctx context.Context) error {
	if err := g.coll.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop %s: %w", g.coll.Name(), err)
	}
	return nil
}

func (g *MongoGateway) Ping(ctx context.Context) error {
	return g.coll.Database().Client().Ping(ctx, readpref.Primary())
}
