// Package memstore fournit des implémentations en mémoire des
// interfaces de stockage, pour des tests déterministes sans MongoDB ni
// Redis.
package memstore

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"humbas_back_end/internal/models"
	"humbas_back_end/internal/store"
)

type UserStore struct {
	mu     sync.Mutex
	users  map[primitive.ObjectID]models.User
	orders *OrderStore // pour ListWithOrderStats
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[primitive.ObjectID]models.User)}
}

// BindOrders relie le store commandes pour le calcul des statistiques.
func (s *UserStore) BindOrders(orders *OrderStore) {
	s.orders = orders
}

func (s *UserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = cloneUser(*user)
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := cloneUser(user)
	return &u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			u := cloneUser(user)
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) FindByEmailOrUsername(_ context.Context, email, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email || user.Username == username {
			u := cloneUser(user)
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) TakenByOther(_ context.Context, id primitive.ObjectID, email, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			continue
		}
		if user.Email == email || user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = cloneUser(*user)
	return nil
}

func (s *UserStore) ListWithOrderStats(ctx context.Context) ([]models.UserWithStats, error) {
	s.mu.Lock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, cloneUser(u))
	}
	s.mu.Unlock()

	stats := make([]models.UserWithStats, 0, len(users))
	for _, u := range users {
		entry := models.UserWithStats{
			ID:          u.ID,
			Username:    u.Username,
			Email:       u.Email,
			PhoneNumber: u.PhoneNumber,
			Address:     u.Address,
			Role:        u.Role,
			CreatedAt:   u.CreatedAt,
		}
		if s.orders != nil {
			orders, err := s.orders.FindByUser(ctx, u.ID, "")
			if err != nil {
				return nil, err
			}
			entry.TotalOrders = len(orders)
			for _, o := range orders {
				entry.TotalAmountSpent += o.TotalAmount
			}
			for i, o := range orders {
				if i == 5 {
					break
				}
				entry.RecentOrders = append(entry.RecentOrders, models.RecentOrder{
					ID:          o.ID,
					TotalAmount: o.TotalAmount,
					Status:      o.Status,
					CreatedAt:   o.CreatedAt,
				})
			}
		}
		stats = append(stats, entry)
	}
	return stats, nil
}

type ProductStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[primitive.ObjectID]models.Product)}
}

func (s *ProductStore) Insert(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = *product
	return nil
}

func (s *ProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &product, nil
}

func (s *ProductStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var products []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (s *ProductStore) FindAll(_ context.Context) ([]models.Product, error) {
	return s.filter(func(models.Product) bool { return true }), nil
}

func (s *ProductStore) FindFeatured(_ context.Context) ([]models.Product, error) {
	return s.filter(func(p models.Product) bool { return p.IsFeatured }), nil
}

func (s *ProductStore) FindByCategory(_ context.Context, category string) ([]models.Product, error) {
	return s.filter(func(p models.Product) bool { return p.Category == category }), nil
}

func (s *ProductStore) Sample(_ context.Context, n int) ([]models.Product, error) {
	all := s.filter(func(models.Product) bool { return true })
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (s *ProductStore) Save(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; !ok {
		return store.ErrNotFound
	}
	product.UpdatedAt = time.Now()
	s.products[product.ID] = *product
	return nil
}

func (s *ProductStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *ProductStore) filter(keep func(models.Product) bool) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	var products []models.Product
	for _, p := range s.products {
		if keep(p) {
			products = append(products, p)
		}
	}
	return products
}

type OrderStore struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]models.Order
	users  *UserStore
}

func NewOrderStore(users *UserStore) *OrderStore {
	os := &OrderStore{
		orders: make(map[primitive.ObjectID]models.Order),
		users:  users,
	}
	users.BindOrders(os)
	return os
}

func (s *OrderStore) Checkout(ctx context.Context, order *models.Order) error {
	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	s.orders[order.ID] = cloneOrder(*order)
	s.mu.Unlock()

	user.CartItems = []models.CartItem{}
	user.Orders = append(user.Orders, models.OrderRef{OrderID: order.ID.Hex()})
	return s.users.Save(ctx, user)
}

func (s *OrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o := cloneOrder(order)
	return &o, nil
}

func (s *OrderStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	s.orders[id] = order
	return nil
}

func (s *OrderStore) FindByUser(_ context.Context, userID primitive.ObjectID, status string) ([]models.Order, error) {
	return s.filter(func(o models.Order) bool {
		return o.UserID == userID && (status == "" || o.Status == status)
	}), nil
}

func (s *OrderStore) FindByStatus(_ context.Context, status string) ([]models.Order, error) {
	return s.filter(func(o models.Order) bool { return o.Status == status }), nil
}

func (s *OrderStore) FindAll(_ context.Context) ([]models.Order, error) {
	return s.filter(func(models.Order) bool { return true }), nil
}

func (s *OrderStore) filter(keep func(models.Order) bool) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []models.Order
	for _, o := range s.orders {
		if keep(o) {
			orders = append(orders, cloneOrder(o))
		}
	}
	return orders
}

type tokenEntry struct {
	token     string
	expiresAt time.Time
}

type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]tokenEntry
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]tokenEntry)}
}

func (s *TokenStore) StoreRefreshToken(_ context.Context, userID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = tokenEntry{token: token, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *TokenStore) GetRefreshToken(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[userID]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", store.ErrNotFound
	}
	return entry.token, nil
}

func (s *TokenStore) DeleteRefreshToken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}

type ProductCache struct {
	mu       sync.Mutex
	featured []models.Product
	set      bool
}

func NewProductCache() *ProductCache {
	return &ProductCache{}
}

func (c *ProductCache) GetFeatured(_ context.Context) ([]models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		return nil, false
	}
	return append([]models.Product(nil), c.featured...), true
}

func (c *ProductCache) SetFeatured(_ context.Context, products []models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.featured = append([]models.Product(nil), products...)
	c.set = true
}

func (c *ProductCache) InvalidateFeatured(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.featured = nil
	c.set = false
}

func cloneUser(u models.User) models.User {
	u.CartItems = append([]models.CartItem(nil), u.CartItems...)
	u.Orders = append([]models.OrderRef(nil), u.Orders...)
	return u
}

func cloneOrder(o models.Order) models.Order {
	o.Products = append([]models.OrderProduct(nil), o.Products...)
	return o
}
