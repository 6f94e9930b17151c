package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"humbas_back_end/internal/models"
	"humbas_back_end/internal/store"
)

// CartDetail est une ligne de panier jointe au produit courant du
// catalogue.
type CartDetail struct {
	models.Product
	Quantity int `json:"quantity"`
}

// cartDetails joint les lignes du panier aux produits existants. Les
// lignes orphelines (produit supprimé du catalogue) sont ignorées sans
// erreur.
func (a *API) cartDetails(ctx context.Context, user *models.User) ([]CartDetail, error) {
	ids := make([]primitive.ObjectID, 0, len(user.CartItems))
	for _, item := range user.CartItems {
		ids = append(ids, item.ProductID)
	}
	if len(ids) == 0 {
		return []CartDetail{}, nil
	}

	products, err := a.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	details := make([]CartDetail, 0, len(user.CartItems))
	for _, item := range user.CartItems {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		details = append(details, CartDetail{Product: product, Quantity: quantity})
	}
	return details, nil
}

func (a *API) GetCart(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	details, err := a.cartDetails(ctx, user)
	if err != nil {
		a.serverError(c, "GET CART CONTROLLER", err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// AddToCart incrémente la quantité si le produit est déjà dans le
// panier, sinon ajoute une ligne à quantité 1.
func (a *API) AddToCart(c *gin.Context) {
	user := currentUser(c)

	var input struct {
		ProductID string `json:"productId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.ProductID == "" {
		fail(c, http.StatusBadRequest, "Product ID is required")
		return
	}
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		fail(c, http.StatusBadRequest, "Product ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if _, err := a.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Product not found")
			return
		}
		a.serverError(c, "ADD TO CART CONTROLLER", err)
		return
	}

	if i := user.FindCartItem(productID); i >= 0 {
		user.CartItems[i].Quantity++
	} else {
		user.CartItems = append(user.CartItems, models.CartItem{ProductID: productID, Quantity: 1})
	}

	if err := a.users.Save(ctx, user); err != nil {
		a.serverError(c, "ADD TO CART CONTROLLER", err)
		return
	}
	c.JSON(http.StatusOK, user.CartItems)
}

// UpdateQuantity écrase la quantité d'une ligne. Une quantité 0
// supprime la ligne au lieu de stocker zéro.
func (a *API) UpdateQuantity(c *gin.Context) {
	user := currentUser(c)

	var input struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.ProductID == "" {
		fail(c, http.StatusBadRequest, "Product ID is required")
		return
	}
	if input.Quantity == nil || *input.Quantity < 0 {
		fail(c, http.StatusBadRequest, "Valid quantity is required")
		return
	}
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		fail(c, http.StatusBadRequest, "Product ID is required")
		return
	}

	i := user.FindCartItem(productID)
	if i < 0 {
		fail(c, http.StatusNotFound, "Product not found in cart. Please refresh and try again.")
		return
	}

	if *input.Quantity == 0 {
		user.CartItems = append(user.CartItems[:i], user.CartItems[i+1:]...)
	} else {
		user.CartItems[i].Quantity = *input.Quantity
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := a.users.Save(ctx, user); err != nil {
		a.serverError(c, "UPDATE QUANTITY CONTROLLER", err)
		return
	}

	details, err := a.cartDetails(ctx, user)
	if err != nil {
		a.serverError(c, "UPDATE QUANTITY CONTROLLER", err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// RemoveFromCart supprime une ligne, ou vide tout le panier si aucun
// productId n'est fourni.
func (a *API) RemoveFromCart(c *gin.Context) {
	user := currentUser(c)

	var input struct {
		ProductID string `json:"productId"`
	}
	// Corps absent ou vide = vider le panier.
	_ = c.ShouldBindJSON(&input)

	if input.ProductID == "" {
		user.CartItems = []models.CartItem{}
	} else {
		productID, err := primitive.ObjectIDFromHex(input.ProductID)
		if err != nil {
			fail(c, http.StatusBadRequest, "Product ID is required")
			return
		}
		kept := user.CartItems[:0]
		for _, item := range user.CartItems {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		user.CartItems = kept
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := a.users.Save(ctx, user); err != nil {
		a.serverError(c, "REMOVE FROM CART CONTROLLER", err)
		return
	}
	c.JSON(http.StatusOK, user.CartItems)
}

// CreateOrder transforme le panier en commande immuable : prix et
// quantités figés au moment de l'achat, panier vidé ensuite. Les lignes
// dont le produit a disparu du catalogue sont ignorées.
func (a *API) CreateOrder(c *gin.Context) {
	user := currentUser(c)

	if len(user.CartItems) == 0 {
		fail(c, http.StatusBadRequest, "Cart is empty")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	ids := make([]primitive.ObjectID, 0, len(user.CartItems))
	for _, item := range user.CartItems {
		ids = append(ids, item.ProductID)
	}
	products, err := a.products.FindByIDs(ctx, ids)
	if err != nil {
		a.serverError(c, "CREATE ORDER CONTROLLER", err)
		return
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var totalAmount float64
	orderProducts := make([]models.OrderProduct, 0, len(user.CartItems))
	for _, item := range user.CartItems {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		totalAmount += product.Price * float64(quantity)
		orderProducts = append(orderProducts, models.OrderProduct{
			ProductID: product.ID,
			Quantity:  quantity,
			Price:     product.Price,
		})
	}
	if len(orderProducts) == 0 {
		fail(c, http.StatusBadRequest, "No valid products found to create order")
		return
	}

	order := &models.Order{
		UserID:      user.ID,
		Products:    orderProducts,
		Status:      models.StatusPending,
		TotalAmount: totalAmount,
	}
	if err := a.orders.Checkout(ctx, order); err != nil {
		a.serverError(c, "CREATE ORDER CONTROLLER", err)
		return
	}

	// Champs d'affichage peuplés depuis les produits déjà résolus.
	for i := range order.Products {
		if product, ok := byID[order.Products[i].ProductID]; ok {
			order.Products[i].Name = product.Name
			order.Products[i].Image = product.Image
		}
	}

	c.JSON(http.StatusCreated, order)
}
