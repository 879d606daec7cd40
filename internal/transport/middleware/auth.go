package middleware

import (
	"net/http"

	"github.com/evently/evently/internal/entity"
	"github.com/evently/evently/internal/service"
	"github.com/evently/evently/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const actorKey = "actor"

// RequireSession проверяет сессионную куку и кладет Actor в контекст
// запроса. Запросы без валидной сессии отклоняются одинаковым 403,
// не раскрывая, существует ли защищенный ресурс.
func RequireSession(sessions *session.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			abortWithCode(c, http.StatusForbidden, "FORBIDDEN")
			return
		}

		claims, err := sessions.Parse(token)
		if err != nil {
			abortWithCode(c, http.StatusForbidden, "FORBIDDEN")
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			abortWithCode(c, http.StatusForbidden, "FORBIDDEN")
			return
		}

		c.Set(actorKey, &service.Actor{
			ID:    userID,
			Role:  entity.UserRole(claims.Role),
			Name:  claims.Name,
			Email: claims.Email,
		})
		c.Next()
	}
}

// RequireRole пропускает только пользователей с одной из перечисленных
// ролей. Должен стоять после RequireSession.
func RequireRole(roles ...entity.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if actor == nil {
			abortWithCode(c, http.StatusForbidden, "FORBIDDEN")
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		abortWithCode(c, http.StatusForbidden, "FORBIDDEN")
	}
}

// ActorFromContext возвращает аутентифицированного пользователя запроса
// или nil.
func ActorFromContext(c *gin.Context) *service.Actor {
	value, exists := c.Get(actorKey)
	if !exists {
		return nil
	}
	actor, ok := value.(*service.Actor)
	if !ok {
		return nil
	}
	return actor
}

func abortWithCode(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   code,
	})
}
