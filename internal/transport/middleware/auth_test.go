package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evently/evently/internal/entity"
	"github.com/evently/evently/internal/service"
	"github.com/evently/evently/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "evently_session"

func newAuthRouter(sessions *session.Manager, onActor func(*service.Actor), roles ...entity.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	group := router.Group("/", RequireSession(sessions, testCookie))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		if onActor != nil {
			onActor(ActorFromContext(c))
		}
		c.Status(http.StatusOK)
	})
	return router
}

func getProtected(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireSession(t *testing.T) {
	sessions := session.NewManager("test-secret", time.Hour)

	t.Run("missing cookie", func(t *testing.T) {
		router := newAuthRouter(sessions, nil)
		recorder := getProtected(router, "")
		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "FORBIDDEN")
	})

	t.Run("garbage token", func(t *testing.T) {
		router := newAuthRouter(sessions, nil)
		recorder := getProtected(router, "not-a-token")
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("valid session passes", func(t *testing.T) {
		userID := uuid.New()
		token, err := sessions.Sign(userID.String(), "owner", "Alice", "a@b.com")
		require.NoError(t, err)

		var actor *service.Actor
		router := newAuthRouter(sessions, func(a *service.Actor) { actor = a })
		recorder := getProtected(router, token)
		assert.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, actor)
		assert.Equal(t, userID, actor.ID)
		assert.Equal(t, entity.RoleOwner, actor.Role)
	})
}

func TestRequireRole(t *testing.T) {
	sessions := session.NewManager("test-secret", time.Hour)

	ownerToken, err := sessions.Sign(uuid.New().String(), "owner", "O", "o@b.com")
	require.NoError(t, err)
	adminToken, err := sessions.Sign(uuid.New().String(), "admin", "A", "a@b.com")
	require.NoError(t, err)

	router := newAuthRouter(sessions, nil, entity.RoleAdmin)

	recorder := getProtected(router, ownerToken)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = getProtected(router, adminToken)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
