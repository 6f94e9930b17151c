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

type MongoOrderStore struct {
	client *mongo.Client
	orders *mongo.Collection
	users  *mongo.Collection
}

func NewMongoOrderStore(client *mongo.Client, db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{
		client: client,
		orders: db.Collection("orders"),
		users:  db.Collection("users"),
	}
}

// Checkout insère la commande, vide le panier et ajoute la référence de
// commande au document utilisateur dans une même transaction. Sans ça,
// un crash entre les deux écritures laisserait un panier plein à côté
// d'une commande déjà créée.
func (s *MongoOrderStore) Checkout(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.orders.InsertOne(sc, order); err != nil {
			return nil, err
		}
		update := bson.M{
			"$set":  bson.M{"cartItems": []models.CartItem{}, "updatedAt": now},
			"$push": bson.M{"orders": models.OrderRef{OrderID: order.ID.Hex()}},
		}
		res, err := s.users.UpdateOne(sc, bson.M{"_id": order.UserID}, update)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
		return nil, nil
	})
	return err
}

func (s *MongoOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	res, err := s.orders.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoOrderStore) FindByUser(ctx context.Context, userID primitive.ObjectID, status string) ([]models.Order, error) {
	filter := bson.M{"userId": userID}
	if status != "" {
		filter["status"] = status
	}
	return s.find(ctx, filter)
}

func (s *MongoOrderStore) FindByStatus(ctx context.Context, status string) ([]models.Order, error) {
	return s.find(ctx, bson.M{"status": status})
}

func (s *MongoOrderStore) FindAll(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoOrderStore) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
