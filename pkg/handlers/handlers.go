package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/easishift/clinic-scheduler-go/pkg/auth"
	"github.com/easishift/clinic-scheduler-go/pkg/metrics"
	"github.com/easishift/clinic-scheduler-go/pkg/models"
	"github.com/easishift/clinic-scheduler-go/pkg/scheduler"
)

const (
	ctxClaims = "claims"
	ctxTenant = "tenant"
)

// Handler contains dependencies for the route handlers.
type Handler struct {
	DB        *gorm.DB
	Scheduler *scheduler.Service
	Logger    *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		DB:        db,
		Scheduler: scheduler.NewService(db, logger),
		Logger:    logger,
	}
}

// AuthMiddleware verifies the JWT token and attaches its claims.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// TenantMiddleware resolves the tenant from the token claims and rejects
// requests whose tenant no longer exists.
func (h *Handler) TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing tenant context"})
			c.Abort()
			return
		}

		var tenant models.Tenant
		if err := h.DB.First(&tenant, claims.TenantID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
			c.Abort()
			return
		}

		c.Set(ctxTenant, &tenant)
		c.Next()
	}
}

// RequireRole rejects requests whose authenticated role is not listed.
func (h *Handler) RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied. No user found."})
			c.Abort()
			return
		}

		for _, role := range allowed {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied. Insufficient role."})
		c.Abort()
	}
}

// MetricsMiddleware records request counts and latencies per route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	raw, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, ok := raw.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

func tenantFrom(c *gin.Context) *models.Tenant {
	raw, ok := c.Get(ctxTenant)
	if !ok {
		return nil
	}
	tenant, ok := raw.(*models.Tenant)
	if !ok {
		return nil
	}
	return tenant
}

// bindStrict decodes a JSON body rejecting fields outside the allow-list
// of the destination struct.
func bindStrict(c *gin.Context, dst any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// idParam parses a numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be numeric"})
		return 0, false
	}
	return uint(id), true
}

// notFound reports whether err is a gorm record-not-found.
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
