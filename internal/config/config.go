package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config regroupe toute la configuration lue depuis l'environnement.
type Config struct {
	Port string
	Env  string // "development" ou "production"

	MongoURL  string
	MongoDB   string
	RedisAddr string
	RedisPass string

	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	CookieDomain string
	CORSOrigins  []string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("APP_ENV", "development"),
		MongoURL:         getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:          getEnv("MONGO_DB", "humbas"),
		RedisAddr:        getEnv("REDIS_HOST", "localhost:6379"),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		JWTAccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTokenTTL:   getDuration("JWT_ACCESS_EXPIREIN", 15*time.Minute),
		RefreshTokenTTL:  getDuration("JWT_REFRESH_EXPIREIN", 7*24*time.Hour),
		CookieDomain:     os.Getenv("COOKIE_DOMAIN"),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	} else {
		cfg.CORSOrigins = []string{"http://localhost:5173"}
	}

	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		log.Fatal("❌ JWT_ACCESS_SECRET / JWT_REFRESH_SECRET manquants dans .env")
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %s utilisée", key, v, fallback)
		return fallback
	}
	return d
}
