package httpapi

import (
	"log"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"humbas_back_end/internal/auth"
	"humbas_back_end/internal/config"
	"humbas_back_end/internal/middleware"
	"humbas_back_end/internal/models"
	"humbas_back_end/internal/store"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// API regroupe les handlers HTTP et leurs dépendances injectées.
type API struct {
	users    store.UserStore
	products store.ProductStore
	orders   store.OrderStore
	tokens   store.TokenStore
	cache    store.ProductCache
	tm       *auth.TokenManager
	cfg      *config.Config
}

func New(
	users store.UserStore,
	products store.ProductStore,
	orders store.OrderStore,
	tokens store.TokenStore,
	cache store.ProductCache,
	tm *auth.TokenManager,
	cfg *config.Config,
) *API {
	return &API{
		users:    users,
		products: products,
		orders:   orders,
		tokens:   tokens,
		cache:    cache,
		tm:       tm,
		cfg:      cfg,
	}
}

// fail écrit la réponse d'erreur uniforme {success:false, message}.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// serverError masque le détail de l'erreur hors développement.
func (a *API) serverError(c *gin.Context, controller string, err error) {
	log.Printf("❌ Error in %s: %v", controller, err)
	message := "Internal server error"
	if !a.cfg.IsProduction() && err != nil {
		message = err.Error()
	}
	fail(c, http.StatusInternalServerError, message)
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

// --- Cookies ---

func (a *API) cookieSameSite() http.SameSite {
	if a.cfg.IsProduction() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (a *API) cookieDomain() string {
	if a.cfg.IsProduction() {
		return a.cfg.CookieDomain
	}
	return ""
}

func (a *API) setAccessCookie(c *gin.Context, accessToken string) {
	c.SetSameSite(a.cookieSameSite())
	c.SetCookie("accessToken", accessToken, int(a.tm.AccessTTL().Seconds()),
		"/", a.cookieDomain(), a.cfg.IsProduction(), true)
}

func (a *API) setAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	a.setAccessCookie(c, accessToken)
	c.SetSameSite(a.cookieSameSite())
	c.SetCookie("refreshToken", refreshToken, int(a.tm.RefreshTTL().Seconds()),
		"/", a.cookieDomain(), a.cfg.IsProduction(), true)
}

func (a *API) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(a.cookieSameSite())
	c.SetCookie("accessToken", "", -1, "/", a.cookieDomain(), a.cfg.IsProduction(), true)
	c.SetCookie("refreshToken", "", -1, "/", a.cookieDomain(), a.cfg.IsProduction(), true)
}
