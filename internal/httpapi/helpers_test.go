package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"humbas_back_end/internal/auth"
	"humbas_back_end/internal/config"
	"humbas_back_end/internal/httpapi"
	"humbas_back_end/internal/models"
	"humbas_back_end/internal/routes"
	"humbas_back_end/internal/store/memstore"
)

type testEnv struct {
	router   *gin.Engine
	users    *memstore.UserStore
	products *memstore.ProductStore
	orders   *memstore.OrderStore
	tokens   *memstore.TokenStore
	cache    *memstore.ProductCache
	tm       *auth.TokenManager
	cfg      *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:              "development",
		JWTAccessSecret:  "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		CORSOrigins:      []string{"http://localhost:5173"},
	}

	users := memstore.NewUserStore()
	orders := memstore.NewOrderStore(users)
	products := memstore.NewProductStore()
	tokens := memstore.NewTokenStore()
	cache := memstore.NewProductCache()
	tm := auth.NewTokenManager(cfg)

	api := httpapi.New(users, products, orders, tokens, cache, tm, cfg)

	router := gin.New()
	routes.Register(router, routes.Deps{API: api, Users: users, Tokens: tm, Cfg: cfg})

	return &testEnv{
		router:   router,
		users:    users,
		products: products,
		orders:   orders,
		tokens:   tokens,
		cache:    cache,
		tm:       tm,
		cfg:      cfg,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signup crée un compte via l'API et renvoie les cookies d'authentification.
func (e *testEnv) signup(t *testing.T, username, email string) []*http.Cookie {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username":    username,
		"email":       email,
		"password":    "secret123",
		"address":     "12 Test Street",
		"phoneNumber": "0470000000",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return w.Result().Cookies()
}

func (e *testEnv) login(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    email,
		"password": password,
	}, nil)
}

// seedAdmin insère un compte admin directement dans le store puis se
// connecte via l'API.
func (e *testEnv) seedAdmin(t *testing.T) []*http.Cookie {
	t.Helper()
	hash, err := auth.HashPassword("admin-secret")
	require.NoError(t, err)
	admin := &models.User{
		Username:    "admin",
		Email:       "admin@test.local",
		Password:    hash,
		Address:     "1 Admin Road",
		PhoneNumber: "0471111111",
		Role:        models.RoleAdmin,
	}
	require.NoError(t, e.users.Insert(context.Background(), admin))

	w := e.login(t, "admin@test.local", "admin-secret")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return w.Result().Cookies()
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       price,
		Category:    "test",
		Image:       "https://img.test/" + name + ".jpg",
		Metric:      "kg",
	}
	require.NoError(t, e.products.Insert(context.Background(), product))
	return product
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// findUser relit l'utilisateur depuis le store par email.
func (e *testEnv) findUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := e.users.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return user
}

// checkout passe une commande via l'API et renvoie son identifiant.
func (e *testEnv) checkout(t *testing.T, cookies []*http.Cookie) primitive.ObjectID {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/cart/createOrder", nil, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.False(t, order.ID.IsZero())
	return order.ID
}

func (e *testEnv) addToCart(t *testing.T, cookies []*http.Cookie, productID primitive.ObjectID, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		w := e.do(t, http.MethodPost, "/api/v1/cart", gin.H{"productId": productID.Hex()}, cookies)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
}
