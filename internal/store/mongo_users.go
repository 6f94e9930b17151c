package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"humbas_back_end/internal/models"
)

type MongoUserStore struct {
	users *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{users: db.Collection("users")}
}

func (s *MongoUserStore) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := s.users.InsertOne(ctx, user)
	return err
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}}
	var user models.User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) TakenByOther(ctx context.Context, id primitive.ObjectID, email, username string) (bool, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"email": email},
			bson.M{"username": username},
		},
		"_id": bson.M{"$ne": id},
	}
	count, err := s.users.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *MongoUserStore) Save(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWithOrderStats joint chaque utilisateur à ses commandes et calcule
// totalOrders, totalAmountSpent et les 5 commandes les plus récentes.
func (s *MongoUserStore) ListWithOrderStats(ctx context.Context) ([]models.UserWithStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "orders",
			"localField":   "_id",
			"foreignField": "userId",
			"as":           "ordersInfo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"totalOrders":      bson.M{"$size": "$ordersInfo"},
			"totalAmountSpent": bson.M{"$sum": "$ordersInfo.totalAmount"},
			"recentOrders": bson.M{"$map": bson.M{
				"input": bson.M{"$slice": bson.A{"$ordersInfo", 5}},
				"as":    "ord",
				"in": bson.M{
					"_id":         "$$ord._id",
					"totalAmount": "$$ord.totalAmount",
					"status":      "$$ord.status",
					"createdAt":   "$$ord.createdAt",
				},
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"username":         1,
			"email":            1,
			"phoneNumber":      1,
			"address":          1,
			"role":             1,
			"totalOrders":      1,
			"totalAmountSpent": 1,
			"recentOrders":     1,
			"createdAt":        1,
		}}},
	}

	cursor, err := s.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.UserWithStats
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
