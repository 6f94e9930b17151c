package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		payload gin.H
		message string
	}{
		{
			name:    "missing fields",
			payload: gin.H{"username": "bob", "email": "bob@test.local"},
			message: "All fields are required.",
		},
		{
			name: "invalid email",
			payload: gin.H{
				"username": "bob", "email": "not-an-email", "password": "secret123",
				"address": "12 Test Street", "phoneNumber": "0470000000",
			},
			message: "Invalid email format.",
		},
		{
			name: "short password",
			payload: gin.H{
				"username": "bob", "email": "bob@test.local", "password": "abc",
				"address": "12 Test Street", "phoneNumber": "0470000000",
			},
			message: "Password must be at least 6 characters.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/auth/signup", tc.payload, nil)
			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.message, body["message"])
		})
	}
}

func TestSignupRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice", "alice@test.local")

	// Même email, username différent.
	w := env.do(t, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username": "alice2", "email": "alice@test.local", "password": "secret123",
		"address": "12 Test Street", "phoneNumber": "0470000000",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User with this email or username already exists!", decodeBody(t, w)["message"])

	// Même username, email différent.
	w = env.do(t, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username": "alice", "email": "alice2@test.local", "password": "secret123",
		"address": "12 Test Street", "phoneNumber": "0470000000",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupDoesNotLeakPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username": "alice", "email": "alice@test.local", "password": "secret123",
		"address": "12 Test Street", "phoneNumber": "0470000000",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, user, "password")
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "user", user["role"])
}

func TestSignupThenLoginIssuesFreshTokens(t *testing.T) {
	env := newTestEnv(t)
	signupCookies := env.signup(t, "alice", "alice@test.local")
	signupAccess := cookieNamed(signupCookies, "accessToken")
	require.NotNil(t, signupAccess)
	require.NotNil(t, cookieNamed(signupCookies, "refreshToken"))

	w := env.login(t, "alice@test.local", "secret123")
	require.Equal(t, http.StatusOK, w.Code)
	loginAccess := cookieNamed(w.Result().Cookies(), "accessToken")
	require.NotNil(t, loginAccess)

	// Chaque émission produit un token d'accès distinct.
	assert.NotEqual(t, signupAccess.Value, loginAccess.Value)

	w = env.login(t, "alice@test.local", "secret123")
	require.Equal(t, http.StatusOK, w.Code)
	secondAccess := cookieNamed(w.Result().Cookies(), "accessToken")
	assert.NotEqual(t, loginAccess.Value, secondAccess.Value)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice", "alice@test.local")

	w := env.login(t, "alice@test.local", "wrong-password")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, w)["message"])

	w = env.login(t, "nobody@test.local", "secret123")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshTokenIssuesNewAccessToken(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signup(t, "alice", "alice@test.local")
	refresh := cookieNamed(cookies, "refreshToken")
	oldAccess := cookieNamed(cookies, "accessToken")

	w := env.do(t, http.MethodPost, "/api/v1/auth/refreshToken", nil, []*http.Cookie{refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	newAccess := cookieNamed(w.Result().Cookies(), "accessToken")
	require.NotNil(t, newAccess)
	assert.NotEqual(t, oldAccess.Value, newAccess.Value)

	// Le refresh token lui-même n'est pas renouvelé.
	assert.Nil(t, cookieNamed(w.Result().Cookies(), "refreshToken"))
}

func TestRefreshFailsWithoutCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/refreshToken", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No refresh token found. Please login again.", decodeBody(t, w)["message"])
}

func TestRefreshFailsAfterNewerLogin(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signup(t, "alice", "alice@test.local")
	oldRefresh := cookieNamed(cookies, "refreshToken")

	// Un login plus récent écrase le refresh token stocké : une seule
	// session active par utilisateur.
	w := env.login(t, "alice@test.local", "secret123")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/refreshToken", nil, []*http.Cookie{oldRefresh})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized: Invalid refresh token", decodeBody(t, w)["message"])

	// Le refresh token du dernier login reste valide.
	w = env.login(t, "alice@test.local", "secret123")
	require.Equal(t, http.StatusOK, w.Code)
	latest := cookieNamed(w.Result().Cookies(), "refreshToken")
	require.NotNil(t, latest)
	w = env.do(t, http.MethodPost, "/api/v1/auth/refreshToken", nil, []*http.Cookie{latest})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signup(t, "alice", "alice@test.local")
	refresh := cookieNamed(cookies, "refreshToken")

	w := env.do(t, http.MethodPost, "/api/v1/auth/logout", nil, []*http.Cookie{refresh})
	require.Equal(t, http.StatusOK, w.Code)

	// Les deux cookies sont effacés dans tous les cas.
	cleared := w.Result().Cookies()
	access := cookieNamed(cleared, "accessToken")
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	require.NotNil(t, cookieNamed(cleared, "refreshToken"))

	// L'enregistrement serveur a disparu : le refresh échoue.
	w = env.do(t, http.MethodPost, "/api/v1/auth/refreshToken", nil, []*http.Cookie{refresh})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRouteRequiresValidToken(t *testing.T) {
	env := newTestEnv(t)

	// Pas de cookie.
	w := env.do(t, http.MethodGet, "/api/v1/cart", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized: No access token found", decodeBody(t, w)["message"])

	// Token falsifié.
	w = env.do(t, http.MethodGet, "/api/v1/cart", nil, []*http.Cookie{
		{Name: "accessToken", Value: "garbage"},
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized: Invalid token", decodeBody(t, w)["message"])
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signup(t, "alice", "alice@test.local")
	env.signup(t, "bob", "bob@test.local")

	// Email déjà pris par un autre compte.
	w := env.do(t, http.MethodPut, "/api/v1/auth/updateProfile", gin.H{
		"username": "alice", "email": "bob@test.local",
		"address": "12 Test Street", "phoneNumber": "0470000000",
	}, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email or username already taken.", decodeBody(t, w)["message"])

	// Garder son propre email est autorisé.
	w = env.do(t, http.MethodPut, "/api/v1/auth/updateProfile", gin.H{
		"username": "alice", "email": "alice@test.local",
		"address": "99 New Street", "phoneNumber": "0499999999",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	user := env.findUser(t, "alice@test.local")
	assert.Equal(t, "99 New Street", user.Address)
}

func TestGetAllUsersIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	userCookies := env.signup(t, "alice", "alice@test.local")

	w := env.do(t, http.MethodGet, "/api/v1/auth/getAllUsers", nil, userCookies)
	require.Equal(t, http.StatusForbidden, w.Code)

	adminCookies := env.seedAdmin(t)
	w = env.do(t, http.MethodGet, "/api/v1/auth/getAllUsers", nil, adminCookies)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	users, ok := body["users"].([]any)
	require.True(t, ok)
	assert.Len(t, users, 2)
}
