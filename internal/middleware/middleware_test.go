package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet_ledger/internal/domain"
	"wallet_ledger/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUsers map[uint]*domain.User

func (s stubUsers) ByID(_ context.Context, id uint) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "email": p.Email})
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := newRouter(JWTAuthMiddleware("secret"))
	token, err := utils.GenerateJWT(7, "alice@example.com", "Alice", "secret", time.Hour)
	require.NoError(t, err)

	w := do(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"email":"alice@example.com"}`, w.Body.String())

	w = do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = do(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	users := stubUsers{
		1: {ID: 1, Role: domain.RoleAdmin},
		2: {ID: 2, Role: domain.RoleUser},
	}
	r := newRouter(JWTAuthMiddleware("secret"), AdminOnlyMiddleware(users))

	tests := []struct {
		name   string
		userID uint
		want   int
	}{
		{name: "admin", userID: 1, want: http.StatusOK},
		{name: "regular user", userID: 2, want: http.StatusForbidden},
		{name: "deleted user", userID: 3, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := utils.GenerateJWT(tt.userID, "x@example.com", "X", "secret", time.Hour)
			require.NoError(t, err)
			assert.Equal(t, tt.want, do(r, token).Code)
		})
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := newRouter(RequestID(), RequestLogger(logger))

	w := do(r, "")
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, id, entry.Data["request_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	given := uuid.NewString()
	req.Header.Set(RequestIDHeader, given)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, given, w.Header().Get(RequestIDHeader))
}
