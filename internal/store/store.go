package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"humbas_back_end/internal/models"
)

// ErrNotFound est renvoyé quand l'entité demandée n'existe pas.
var ErrNotFound = errors.New("not found")

// UserStore cache la représentation de stockage des utilisateurs
// (panier embarqué compris) derrière une interface injectable.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByEmailOrUsername sert au contrôle d'unicité à l'inscription.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)
	// TakenByOther vérifie si email ou username est déjà pris par un autre compte.
	TakenByOther(ctx context.Context, id primitive.ObjectID, email, username string) (bool, error)
	// Save persiste le document complet (écriture mono-document atomique).
	Save(ctx context.Context, user *models.User) error
	ListWithOrderStats(ctx context.Context) ([]models.UserWithStats, error)
}

type ProductStore interface {
	Insert(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	FindFeatured(ctx context.Context) ([]models.Product, error)
	FindByCategory(ctx context.Context, category string) ([]models.Product, error)
	// Sample renvoie jusqu'à n produits au hasard (recommandations).
	Sample(ctx context.Context, n int) ([]models.Product, error)
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OrderStore interface {
	// Checkout insère la commande, vide le panier du propriétaire et
	// ajoute la référence de commande à son document, dans une frontière
	// transactionnelle unique.
	Checkout(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	// FindByUser filtre optionnellement par statut (status == "" : tous).
	FindByUser(ctx context.Context, userID primitive.ObjectID, status string) ([]models.Order, error)
	FindByStatus(ctx context.Context, status string) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
}

// TokenStore est la source de vérité de validité des refresh tokens.
// Une seule session active par utilisateur : chaque écriture remplace
// la précédente.
type TokenStore interface {
	StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, userID string) (string, error)
	DeleteRefreshToken(ctx context.Context, userID string) error
}

// ProductCache accélère la liste des produits mis en avant.
// Indisponibilité = cache miss silencieux, jamais une erreur.
type ProductCache interface {
	GetFeatured(ctx context.Context) ([]models.Product, bool)
	SetFeatured(ctx context.Context, products []models.Product)
	InvalidateFeatured(ctx context.Context)
}
