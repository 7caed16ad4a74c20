package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

// GetMyTenant returns the authenticated user's tenant.
func (h *Handler) GetMyTenant(c *gin.Context) {
	tenant := tenantFrom(c)
	if tenant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// UpdateMyTenant applies the allow-listed tenant profile fields (admin
// only). Subscription and plan state is owned by the billing integration
// and cannot be changed here.
func (h *Handler) UpdateMyTenant(c *gin.Context) {
	claims := claimsFrom(c)

	var upd models.TenantUpdate
	if err := bindStrict(c, &upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changes := upd.Changes()
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := h.DB.Model(&models.Tenant{}).
		Where("id = ?", claims.TenantID).
		Updates(changes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update tenant"})
		return
	}

	var tenant models.Tenant
	h.DB.First(&tenant, claims.TenantID)
	c.JSON(http.StatusOK, tenant)
}
