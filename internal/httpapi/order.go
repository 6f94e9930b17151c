package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"humbas_back_end/internal/models"
	"humbas_back_end/internal/store"
)

// populateOrders ajoute aux commandes les champs d'affichage produit
// (nom, image) et, si withUsers, le résumé du client. Le prix affiché
// reste celui figé au checkout.
func (a *API) populateOrders(ctx context.Context, orders []models.Order, withUsers bool) error {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, order := range orders {
		for _, line := range order.Products {
			idSet[line.ProductID] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	products, err := a.products.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for i := range orders {
		for j := range orders[i].Products {
			if product, ok := byID[orders[i].Products[j].ProductID]; ok {
				orders[i].Products[j].Name = product.Name
				orders[i].Products[j].Image = product.Image
			}
		}
		if withUsers {
			if user, err := a.users.FindByID(ctx, orders[i].UserID); err == nil {
				orders[i].User = &models.OrderUser{
					Username:    user.Username,
					Email:       user.Email,
					PhoneNumber: user.PhoneNumber,
					Address:     user.Address,
				}
			}
		}
	}
	return nil
}

// GetAllOrders (admin) liste toutes les commandes avec client et produits.
func (a *API) GetAllOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := a.orders.FindAll(ctx)
	if err != nil {
		a.serverError(c, "GET ALL ORDERS CONTROLLER", err)
		return
	}
	if err := a.populateOrders(ctx, orders, true); err != nil {
		a.serverError(c, "GET ALL ORDERS CONTROLLER", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// GetUserOrders liste les commandes de l'appelant, filtrables par statut.
func (a *API) GetUserOrders(c *gin.Context) {
	user := currentUser(c)
	status := c.Query("status")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := a.orders.FindByUser(ctx, user.ID, status)
	if err != nil {
		a.serverError(c, "GET USER ORDERS CONTROLLER", err)
		return
	}
	if err := a.populateOrders(ctx, orders, false); err != nil {
		a.serverError(c, "GET USER ORDERS CONTROLLER", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// UpdateOrderStatus applique les règles de la machine à états :
//   - un client ne peut qu'annuler, et uniquement ses propres commandes ;
//   - un admin peut poser n'importe quel statut de l'énumération, y
//     compris revenir en arrière (comportement assumé en l'état).
func (a *API) UpdateOrderStatus(c *gin.Context) {
	user := currentUser(c)

	var input struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.OrderID == "" || input.Status == "" {
		fail(c, http.StatusBadRequest, "Order ID and status are required")
		return
	}

	orderID, err := primitive.ObjectIDFromHex(input.OrderID)
	if err != nil {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := a.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Order not found")
			return
		}
		a.serverError(c, "UPDATE ORDER STATUS CONTROLLER", err)
		return
	}

	if input.Status == models.StatusCancelled && !user.IsAdmin() {
		if order.UserID != user.ID {
			fail(c, http.StatusForbidden, "You can only cancel your own orders")
			return
		}
	} else if !user.IsAdmin() {
		fail(c, http.StatusForbidden, "Admin access required to update order status")
		return
	}

	if !models.IsValidStatus(input.Status) {
		fail(c, http.StatusBadRequest,
			"Invalid status. Must be one of: "+strings.Join(models.ValidStatuses, ", "))
		return
	}

	if err := a.orders.UpdateStatus(ctx, orderID, input.Status); err != nil {
		a.serverError(c, "UPDATE ORDER STATUS CONTROLLER", err)
		return
	}
	order.Status = input.Status

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// GetOrdersByStatus (vue admin) liste les commandes d'un statut donné.
func (a *API) GetOrdersByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		fail(c, http.StatusBadRequest, "Status is required")
		return
	}
	status = strings.ToLower(status)
	if !models.IsValidStatus(status) {
		fail(c, http.StatusBadRequest,
			"Invalid status. Must be one of: "+strings.Join(models.ValidStatuses, ", "))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := a.orders.FindByStatus(ctx, status)
	if err != nil {
		a.serverError(c, "GET ORDERS BY STATUS CONTROLLER", err)
		return
	}
	if err := a.populateOrders(ctx, orders, true); err != nil {
		a.serverError(c, "GET ORDERS BY STATUS CONTROLLER", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
