package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

// RequestTimeOff files a time-off request for the authenticated staff
// member. Requests start pending and only block scheduling once approved.
func (h *Handler) RequestTimeOff(c *gin.Context) {
	claims := claimsFrom(c)

	var req struct {
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
		Reason    string    `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time and end_time required"})
		return
	}
	if !req.StartTime.Before(req.EndTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	to := models.TimeOff{
		TenantID:  claims.TenantID,
		StaffID:   claims.UserID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
		Status:    models.TimeOffPending,
	}
	if err := h.DB.Create(&to).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create request"})
		return
	}
	c.JSON(http.StatusCreated, to)
}

// ListTimeOff returns time-off requests. Admins see the whole tenant
// (optionally filtered by staff_id); everyone else sees only their own.
func (h *Handler) ListTimeOff(c *gin.Context) {
	claims := claimsFrom(c)

	q := h.DB.Where("tenant_id = ?", claims.TenantID)
	if claims.Role != models.RoleAdmin {
		q = q.Where("staff_id = ?", claims.UserID)
	} else if staffID := c.Query("staff_id"); staffID != "" {
		q = q.Where("staff_id = ?", staffID)
	}

	var list []models.TimeOff
	if err := q.Order("start_time").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list time off"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// ReviewTimeOff approves or denies a request (admin only).
func (h *Handler) ReviewTimeOff(c *gin.Context) {
	claims := claimsFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.TimeOffStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.TimeOffApproved && req.Status != models.TimeOffDenied {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	now := time.Now().UTC()
	res := h.DB.Model(&models.TimeOff{}).
		Where("id = ? AND tenant_id = ?", id, claims.TenantID).
		Updates(map[string]any{
			"status":         req.Status,
			"reviewed_by_id": claims.UserID,
			"reviewed_at":    now,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not review request"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}

	var to models.TimeOff
	h.DB.Where("id = ? AND tenant_id = ?", id, claims.TenantID).First(&to)
	c.JSON(http.StatusOK, to)
}
