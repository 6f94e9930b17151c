package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"humbas_back_end/internal/auth"
	"humbas_back_end/internal/models"
	"humbas_back_end/internal/store"
)

// UserKey est la clé du contexte Gin sous laquelle AuthRequired dépose
// l'utilisateur authentifié.
const UserKey = "user"

// AuthRequired vérifie le cookie accessToken, recharge l'utilisateur et
// le met dans le contexte. Toutes les routes protégées passent par ici.
func AuthRequired(users store.UserStore, tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, err := c.Cookie("accessToken")
		if err != nil || accessToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "Unauthorized: No access token found",
			})
			return
		}

		userID, err := tokens.VerifyAccessToken(accessToken)
		if err != nil {
			msg := "Unauthorized: Invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "Token expired. Please refresh your token."
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": msg,
			})
			return
		}

		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "Unauthorized: Invalid token",
			})
			return
		}

		// Le compte peut avoir disparu depuis l'émission du token.
		user, err := users.FindByID(c.Request.Context(), oid)
		if err != nil {
			status := http.StatusInternalServerError
			msg := "Internal server error"
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
				msg = "User not found"
			}
			c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// AdminRequired suppose AuthRequired déjà passé.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false, "message": "Forbidden: Admin access required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser renvoie l'utilisateur déposé par AuthRequired, ou nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
