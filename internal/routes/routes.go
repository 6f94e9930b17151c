package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"humbas_back_end/internal/auth"
	"humbas_back_end/internal/config"
	"humbas_back_end/internal/httpapi"
	"humbas_back_end/internal/middleware"
	"humbas_back_end/internal/store"
)

type Deps struct {
	API    *httpapi.API
	Users  store.UserStore
	Tokens *auth.TokenManager
	Cfg    *config.Config
}

func Register(r *gin.Engine, d Deps) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	protected := middleware.AuthRequired(d.Users, d.Tokens)
	admin := middleware.AdminRequired()

	v1 := r.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", d.API.Signup)
		authRoutes.POST("/login", d.API.Login)
		authRoutes.POST("/refreshToken", d.API.RefreshToken)
		authRoutes.POST("/logout", d.API.Logout)
		authRoutes.GET("/profile", protected, d.API.GetProfile)
		authRoutes.PUT("/updateProfile", protected, d.API.UpdateProfile)
		authRoutes.GET("/getAllUsers", protected, admin, d.API.GetAllUsers)
	}

	cartRoutes := v1.Group("/cart", protected)
	{
		cartRoutes.GET("", d.API.GetCart)
		cartRoutes.POST("", d.API.AddToCart)
		cartRoutes.PUT("", d.API.UpdateQuantity)
		cartRoutes.DELETE("", d.API.RemoveFromCart)
		cartRoutes.POST("/createOrder", d.API.CreateOrder)
	}

	orderRoutes := v1.Group("/order", protected)
	{
		orderRoutes.GET("", admin, d.API.GetAllOrders)
		orderRoutes.GET("/user", d.API.GetUserOrders)
		orderRoutes.PUT("", d.API.UpdateOrderStatus)
		orderRoutes.GET("/status", d.API.GetOrdersByStatus)
	}

	productRoutes := v1.Group("/product")
	{
		productRoutes.GET("/featured", d.API.GetFeaturedProducts)
		productRoutes.GET("/recommended", d.API.GetRecommendedProducts)
		productRoutes.GET("/category/:category", d.API.GetProductsByCategory)

		productRoutes.GET("", protected, admin, d.API.GetProducts)
		productRoutes.POST("", protected, admin, d.API.CreateProduct)
		productRoutes.DELETE("/:id", protected, admin, d.API.DeleteProduct)
		productRoutes.PUT("/:id/featured", protected, admin, d.API.ToggleFeaturedProduct)
	}
}
