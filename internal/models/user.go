package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// CartItem est une ligne du panier embarqué dans le document User.
// La quantité est toujours >= 1 : une mise à jour à 0 supprime la ligne.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type OrderRef struct {
	OrderID string `bson:"orderId" json:"orderId"`
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username    string             `bson:"username" json:"username"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"`
	Address     string             `bson:"address" json:"address"`
	PhoneNumber string             `bson:"phoneNumber" json:"phoneNumber"`
	Role        string             `bson:"role" json:"role"`
	CartItems   []CartItem         `bson:"cartItems" json:"cartItems"`
	Orders      []OrderRef         `bson:"orders" json:"orders"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FindCartItem renvoie l'index de la ligne panier du produit, ou -1.
func (u *User) FindCartItem(productID primitive.ObjectID) int {
	for i := range u.CartItems {
		if u.CartItems[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// RecentOrder est le résumé de commande renvoyé par la liste admin des utilisateurs.
type RecentOrder struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	TotalAmount float64            `bson:"totalAmount" json:"totalAmount"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserWithStats est un utilisateur enrichi de ses statistiques de commandes.
type UserWithStats struct {
	ID               primitive.ObjectID `bson:"_id" json:"_id"`
	Username         string             `bson:"username" json:"username"`
	Email            string             `bson:"email" json:"email"`
	PhoneNumber      string             `bson:"phoneNumber" json:"phoneNumber"`
	Address          string             `bson:"address" json:"address"`
	Role             string             `bson:"role" json:"role"`
	TotalOrders      int                `bson:"totalOrders" json:"totalOrders"`
	TotalAmountSpent float64            `bson:"totalAmountSpent" json:"totalAmountSpent"`
	RecentOrders     []RecentOrder      `bson:"recentOrders" json:"recentOrders"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
