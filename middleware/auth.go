package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/movefit/streakd/config"
	"github.com/movefit/streakd/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextServiceCallerKey marks a request authenticated with the service key.
	ContextServiceCallerKey = "service_caller"
	// ServiceKeyHeader carries the scheduler's plaintext API key.
	ServiceKeyHeader = "X-Service-Key"
)

// AuthRequired ensures the request is authenticated via a user JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := bearerUserID(ctx)
		if !ok {
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserIDKey, userID)
		ctx.Next()
	}
}

// InvokerAuth authorizes the engine's invocation contract: either an
// authenticated user (Bearer JWT) or a privileged service caller
// (X-Service-Key). Exactly one mode must succeed; absence of both is a hard
// failure before any processing.
func InvokerAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if key := ctx.GetHeader(ServiceKeyHeader); key != "" {
			cfg := config.Get()
			if cfg.ServiceKeyHash == "" || !utils.CheckServiceKey(cfg.ServiceKeyHash, key) {
				utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid service key")
				ctx.Abort()
				return
			}
			ctx.Set(ContextServiceCallerKey, true)
			ctx.Next()
			return
		}

		if ctx.GetHeader("Authorization") != "" {
			userID, ok := bearerUserID(ctx)
			if !ok {
				ctx.Abort()
				return
			}
			ctx.Set(ContextUserIDKey, userID)
			ctx.Next()
			return
		}

		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		ctx.Abort()
	}
}

// ServiceRequired restricts a route to privileged service callers.
func ServiceRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.GetHeader(ServiceKeyHeader)
		if key == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40107, "service key required")
			ctx.Abort()
			return
		}
		cfg := config.Get()
		if cfg.ServiceKeyHash == "" || !utils.CheckServiceKey(cfg.ServiceKeyHash, key) {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid service key")
			ctx.Abort()
			return
		}
		ctx.Set(ContextServiceCallerKey, true)
		ctx.Next()
	}
}

// bearerUserID validates the Authorization header and extracts the user id,
// writing the error response itself on failure.
func bearerUserID(ctx *gin.Context) (uint, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
		return 0, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
		return 0, false
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
		return 0, false
	}

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return 0, false
	}

	return claims.UserID, true
}
