package databases

// go generate: mockery --name SequenceDatabase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/courtsphere/courtsphere-api/models"
)

const counterCollectionName = "counters"

// SequenceDatabase hands out case numbers from an atomic per-year counter.
// The counter document is upserted with $inc in a single round-trip, so two
// concurrent registrations can never draw the same number.
type SequenceDatabase interface {
	NextCaseNumber(ctx context.Context, year int) (string, error)
}

type sequenceDatabase struct {
	db DatabaseHelper
}

// NewSequenceDatabase initializes a new instance of sequence database with the provided db connection
func NewSequenceDatabase(db DatabaseHelper) SequenceDatabase {
	return &sequenceDatabase{
		db: db,
	}
}

func (s *sequenceDatabase) NextCaseNumber(ctx context.Context, year int) (string, error) {
	after := options.After
	opts := &options.FindOneAndUpdateOptions{
		ReturnDocument: &after,
	}
	opts.SetUpsert(true)

	var counter models.Counter
	err := s.db.Collection(counterCollectionName).FindOneAndUpdate(ctx,
		bson.M{"_id": fmt.Sprintf("case-%d", year)},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CASE-%d-%04d", year, counter.Seq), nil
}
