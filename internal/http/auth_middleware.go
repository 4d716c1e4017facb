package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"devconnect/internal/service"
)

const authUserIDKey = "auth_user_id"

// El token viaja en un header dedicado, no en Authorization.
const authHeader = "x-auth-token"

// AuthMiddleware valida el bearer token y guarda el id del usuario en el
// contexto. Corre antes de cualquier operación privada y nunca toca los
// stores.
func AuthMiddleware(tokenSvc *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "token service not configured"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(c.GetHeader(authHeader))
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorised to access this route"})
			c.Abort()
			return
		}

		userID, err := tokenSvc.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Invalid token, not authorised to access this route"})
			c.Abort()
			return
		}

		c.Set(authUserIDKey, userID)
		c.Next()
	}
}

// GetAuthUserID obtiene el id del usuario autenticado desde el contexto.
func GetAuthUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(authUserIDKey)
	if !ok {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok
}
