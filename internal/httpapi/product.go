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

// GetProducts (admin) liste tout le catalogue.
func (a *API) GetProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := a.products.FindAll(ctx)
	if err != nil {
		a.serverError(c, "GET PRODUCTS CONTROLLER", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

// GetFeaturedProducts sert depuis le cache Redis quand il est chaud ;
// sinon la base répond et le cache est regarni. L'indisponibilité du
// cache dégrade silencieusement vers la base.
func (a *API) GetFeaturedProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if products, ok := a.cache.GetFeatured(ctx); ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
		return
	}

	products, err := a.products.FindFeatured(ctx)
	if err != nil {
		a.serverError(c, "GET FEATURED PRODUCTS CONTROLLER", err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	if len(products) > 0 {
		a.cache.SetFeatured(ctx, products)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (a *API) CreateProduct(c *gin.Context) {
	var input struct {
		Name        string  `json:"name"`
		Price       float64 `json:"price"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		Image       string  `json:"image"`
		Metric      string  `json:"metric"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "All fields are required.")
		return
	}
	if input.Name == "" || input.Description == "" || input.Category == "" ||
		input.Image == "" || input.Metric == "" {
		fail(c, http.StatusBadRequest, "All fields are required.")
		return
	}
	if input.Price <= 0 {
		fail(c, http.StatusBadRequest, "Price must be a positive number.")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product := &models.Product{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		Category:    input.Category,
		Image:       input.Image,
		Metric:      input.Metric,
	}
	if err := a.products.Insert(ctx, product); err != nil {
		a.serverError(c, "CREATE PRODUCT CONTROLLER", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"product": product,
		"message": "Product created successfully",
	})
}

func (a *API) DeleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := a.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Product not found")
			return
		}
		a.serverError(c, "DELETE PRODUCT CONTROLLER", err)
		return
	}

	if err := a.products.Delete(ctx, product.ID); err != nil {
		a.serverError(c, "DELETE PRODUCT CONTROLLER", err)
		return
	}
	if product.IsFeatured {
		a.cache.InvalidateFeatured(ctx)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
}

// GetRecommendedProducts renvoie 3 produits au hasard pour la page
// d'accueil.
func (a *API) GetRecommendedProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := a.products.Sample(ctx, 3)
	if err != nil {
		a.serverError(c, "GET RECOMMENDED PRODUCTS CONTROLLER", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (a *API) GetProductsByCategory(c *gin.Context) {
	category := c.Param("category")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := a.products.FindByCategory(ctx, category)
	if err != nil {
		a.serverError(c, "GET PRODUCTS BY CATEGORY CONTROLLER", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

// ToggleFeaturedProduct inverse le flag et invalide le cache pour que
// la prochaine lecture reparte de la base.
func (a *API) ToggleFeaturedProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := a.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Product not found")
			return
		}
		a.serverError(c, "TOGGLE FEATURED PRODUCT CONTROLLER", err)
		return
	}

	product.IsFeatured = !product.IsFeatured
	if err := a.products.Save(ctx, product); err != nil {
		a.serverError(c, "TOGGLE FEATURED PRODUCT CONTROLLER", err)
		return
	}
	a.cache.InvalidateFeatured(ctx)

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}
