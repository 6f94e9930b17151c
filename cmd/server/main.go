package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"humbas_back_end/internal/auth"
	"humbas_back_end/internal/config"
	"humbas_back_end/internal/database"
	"humbas_back_end/internal/httpapi"
	"humbas_back_end/internal/routes"
	"humbas_back_end/internal/store"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := database.ConnectMongo(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Échec initialisation MongoDB: %v", err)
	}
	redisClient, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Échec initialisation Redis: %v", err)
	}

	db := mongoClient.Database(cfg.MongoDB)

	users := store.NewMongoUserStore(db)
	products := store.NewMongoProductStore(db)
	orders := store.NewMongoOrderStore(mongoClient, db)
	tokens := store.NewRedisTokenStore(redisClient)
	cache := store.NewRedisProductCache(redisClient)

	tm := auth.NewTokenManager(cfg)
	api := httpapi.New(users, products, orders, tokens, cache, tm, cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	routes.Register(r, routes.Deps{API: api, Users: users, Tokens: tm, Cfg: cfg})

	log.Println("🚀 Serveur Humbas lancé sur le port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Serveur arrêté: %v", err)
	}
}
