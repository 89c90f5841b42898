package databases

// go generate: mockery --name SummaryDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/courtsphere/courtsphere-api/models"
)

const summaryCollectionName = "casesummaries"

// SummaryDatabase contains the methods to use with the case summary database
type SummaryDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseSummary, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type summaryDatabase struct {
	db DatabaseHelper
}

// NewSummaryDatabase initializes a new instance of summary database with the provided db connection
func NewSummaryDatabase(db DatabaseHelper) SummaryDatabase {
	return &summaryDatabase{
		db: db,
	}
}

func (s *summaryDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseSummary, error) {
	summary := &models.CaseSummary{}
	err := s.db.Collection(summaryCollectionName).FindOne(ctx, filter, opts...).Decode(&summary)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *summaryDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return s.db.Collection(summaryCollectionName).InsertOne(ctx, document, opts...)
}

func (s *summaryDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return s.db.Collection(summaryCollectionName).UpdateOne(ctx, filter, update, opts...)
}
