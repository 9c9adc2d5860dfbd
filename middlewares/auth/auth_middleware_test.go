package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joy095/settlement/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func sign(t *testing.T, key []byte, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/ping", AdminMiddleware(secret), func(c *gin.Context) {
		id, err := utils.GetAdminIDFromContext(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id)
	})
	return r
}

func call(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminMiddleware(t *testing.T) {
	r := newRouter()
	exp := time.Now().Add(time.Hour).Unix()

	valid := sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin-7", "role": "admin", "exp": exp})
	w := call(r, "Bearer "+valid)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-7", w.Body.String())

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"wrong key", "Bearer " + sign(t, []byte("other"), jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a", "role": "admin", "exp": exp}), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a", "role": "admin", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"no subject", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin", "exp": exp}), http.StatusUnauthorized},
		{"hs512 rejected", "Bearer " + sign(t, secret, jwt.SigningMethodHS512, jwt.MapClaims{"sub": "a", "role": "admin", "exp": exp}), http.StatusUnauthorized},
		{"not admin", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a", "role": "reseller", "exp": exp}), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, call(r, tc.header).Code)
		})
	}
}
