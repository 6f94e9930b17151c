package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"humbas_back_end/internal/auth"
	"humbas_back_end/internal/models"
	"humbas_back_end/internal/store"
)

// issueTokens émet la paire access/refresh et remplace le refresh token
// stocké — une seule session active par utilisateur.
func (a *API) issueTokens(ctx context.Context, c *gin.Context, userID string) error {
	accessToken, refreshToken, err := a.tm.GenerateTokenPair(userID)
	if err != nil {
		return err
	}
	if err := a.tokens.StoreRefreshToken(ctx, userID, refreshToken, a.tm.RefreshTTL()); err != nil {
		return err
	}
	a.setAuthCookies(c, accessToken, refreshToken)
	return nil
}

func (a *API) Signup(c *gin.Context) {
	var input struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		Address     string `json:"address"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "All fields are required.")
		return
	}
	if input.Username == "" || input.Email == "" || input.Password == "" ||
		input.Address == "" || input.PhoneNumber == "" {
		fail(c, http.StatusBadRequest, "All fields are required.")
		return
	}
	if !emailRegex.MatchString(input.Email) {
		fail(c, http.StatusBadRequest, "Invalid email format.")
		return
	}
	if len(input.Password) < 6 {
		fail(c, http.StatusBadRequest, "Password must be at least 6 characters.")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if _, err := a.users.FindByEmailOrUsername(ctx, input.Email, input.Username); err == nil {
		fail(c, http.StatusBadRequest, "User with this email or username already exists!")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		a.serverError(c, "SIGNUP CONTROLLER", err)
		return
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		a.serverError(c, "SIGNUP CONTROLLER", err)
		return
	}

	user := &models.User{
		Username:    input.Username,
		Email:       input.Email,
		Password:    hashed,
		Address:     input.Address,
		PhoneNumber: input.PhoneNumber,
		Role:        models.RoleUser,
		CartItems:   []models.CartItem{},
		Orders:      []models.OrderRef{},
	}
	if err := a.users.Insert(ctx, user); err != nil {
		a.serverError(c, "SIGNUP CONTROLLER", err)
		return
	}

	if err := a.issueTokens(ctx, c, user.ID.Hex()); err != nil {
		a.serverError(c, "SIGNUP CONTROLLER", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
		"message": "User created successfully",
	})
}

func (a *API) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "All fields are required.")
		return
	}
	if input.Email == "" || input.Password == "" {
		fail(c, http.StatusBadRequest, "All fields are required.")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := a.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		a.serverError(c, "LOGIN CONTROLLER", err)
		return
	}
	if !auth.CheckPassword(user.Password, input.Password) {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := a.issueTokens(ctx, c, user.ID.Hex()); err != nil {
		a.serverError(c, "LOGIN CONTROLLER", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"message": "User logged in successfully",
	})
}

// RefreshToken échange un refresh token valide contre un nouveau token
// d'accès. Le refresh token lui-même n'est pas renouvelé, et il doit
// être octet pour octet identique à celui stocké — un login plus récent
// ou une révocation fait échouer l'échange.
func (a *API) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie("refreshToken")
	if err != nil || refreshToken == "" {
		fail(c, http.StatusUnauthorized, "No refresh token found. Please login again.")
		return
	}

	userID, err := a.tm.VerifyRefreshToken(refreshToken)
	if err != nil {
		a.clearAuthCookies(c)
		fail(c, http.StatusUnauthorized, "Token expired. Please login again.")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// Redis est la source de vérité : sans lui, le refresh échoue fermé.
	stored, err := a.tokens.GetRefreshToken(ctx, userID)
	if err != nil || stored != refreshToken {
		fail(c, http.StatusUnauthorized, "Unauthorized: Invalid refresh token")
		return
	}

	accessToken, err := a.tm.GenerateAccessToken(userID)
	if err != nil {
		a.serverError(c, "REFRESH TOKEN CONTROLLER", err)
		return
	}
	a.setAccessCookie(c, accessToken)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token refreshed successfully."})
}

// Logout supprime l'enregistrement du refresh token au mieux ; les
// cookies sont effacés dans tous les cas.
func (a *API) Logout(c *gin.Context) {
	if refreshToken, err := c.Cookie("refreshToken"); err == nil && refreshToken != "" {
		if userID, err := a.tm.VerifyRefreshToken(refreshToken); err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			_ = a.tokens.DeleteRefreshToken(ctx, userID)
		}
	}

	a.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User logged out successfully."})
}

func (a *API) GetProfile(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (a *API) UpdateProfile(c *gin.Context) {
	user := currentUser(c)

	var input struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Address     string `json:"address"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "All fields are required.")
		return
	}
	if input.Username == "" || input.Email == "" || input.Address == "" || input.PhoneNumber == "" {
		fail(c, http.StatusBadRequest, "All fields are required.")
		return
	}
	if !emailRegex.MatchString(input.Email) {
		fail(c, http.StatusBadRequest, "Invalid email format.")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	taken, err := a.users.TakenByOther(ctx, user.ID, input.Email, input.Username)
	if err != nil {
		a.serverError(c, "UPDATE PROFILE CONTROLLER", err)
		return
	}
	if taken {
		fail(c, http.StatusBadRequest, "Email or username already taken.")
		return
	}

	user.Username = input.Username
	user.Email = input.Email
	user.Address = input.Address
	user.PhoneNumber = input.PhoneNumber
	if err := a.users.Save(ctx, user); err != nil {
		a.serverError(c, "UPDATE PROFILE CONTROLLER", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"message": "Profile updated successfully",
	})
}

// GetAllUsers (admin) joint chaque utilisateur à ses statistiques de
// commandes pour le tableau de bord.
func (a *API) GetAllUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	users, err := a.users.ListWithOrderStats(ctx)
	if err != nil {
		a.serverError(c, "GET ALL USERS CONTROLLER", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}
