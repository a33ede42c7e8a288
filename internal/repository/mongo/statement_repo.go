package mongo

import (
	"context"
	"errors"
	"time"

	"gymdesk/membership-app/internal/domain"
	"gymdesk/membership-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const statementCollectionName = "statements"

// mongoStatementRepository implements repository.StatementRepository
type mongoStatementRepository struct {
	collection *mongo.Collection
}

// NewMongoStatementRepository creates a new statement repository backed by MongoDB.
func NewMongoStatementRepository(db *mongo.Database) repository.StatementRepository {
	return &mongoStatementRepository{
		collection: db.Collection(statementCollectionName),
	}
}

// Create records metadata of an uploaded statement.
func (r *mongoStatementRepository) Create(ctx context.Context, statement *domain.Statement) (primitive.ObjectID, error) {
	if statement.ClientID == 0 || statement.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("statement requires clientId and objectKey")
	}

	statement.ID = primitive.NewObjectID()
	statement.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, statement)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoStatementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Statement, error) {
	var statement domain.Statement
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&statement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &statement, nil
}

// ListByClient returns a client's statements, newest first.
func (r *mongoStatementRepository) ListByClient(ctx context.Context, clientID int64) ([]domain.Statement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"clientId": clientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	statements := []domain.Statement{}
	if err := cursor.All(ctx, &statements); err != nil {
		return nil, err
	}
	return statements, nil
}

// EnsureStatementIndexes creates the indexes for the statements collection.
func EnsureStatementIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "objectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
