package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

// CreateMessage sends an internal message between two users of the tenant.
// Delivery to external channels happens asynchronously via the reminder
// dispatcher.
func (h *Handler) CreateMessage(c *gin.Context) {
	claims := claimsFrom(c)

	var req struct {
		ReceiverID uint   `json:"receiver_id"`
		Subject    string `json:"subject"`
		Body       string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ReceiverID == 0 || req.Subject == "" || req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver_id, subject, body are required"})
		return
	}

	var receiver models.User
	if err := h.DB.Where("id = ? AND tenant_id = ?", req.ReceiverID, claims.TenantID).First(&receiver).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Receiver not found"})
		return
	}

	msg := models.Message{
		TenantID:       claims.TenantID,
		SenderID:       claims.UserID,
		ReceiverID:     req.ReceiverID,
		Subject:        req.Subject,
		Body:           req.Body,
		DeliveryStatus: models.DeliveryPending,
	}
	if err := h.DB.Create(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create message"})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListMessages returns tenant messages. Admins see all; staff see messages
// they sent or received.
func (h *Handler) ListMessages(c *gin.Context) {
	claims := claimsFrom(c)

	q := h.DB.Where("tenant_id = ?", claims.TenantID)
	if claims.Role != models.RoleAdmin {
		q = q.Where("(sender_id = ? OR receiver_id = ?)", claims.UserID, claims.UserID)
	}

	var msgs []models.Message
	if err := q.Order("created_at desc").Find(&msgs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list messages"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// Inbox returns messages addressed to the authenticated user.
func (h *Handler) Inbox(c *gin.Context) {
	claims := claimsFrom(c)

	var msgs []models.Message
	if err := h.DB.
		Where("tenant_id = ? AND receiver_id = ?", claims.TenantID, claims.UserID).
		Order("created_at desc").
		Find(&msgs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list messages"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// MarkMessageRead marks one of the user's received messages as read.
func (h *Handler) MarkMessageRead(c *gin.Context) {
	claims := claimsFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	res := h.DB.Model(&models.Message{}).
		Where("id = ? AND tenant_id = ? AND receiver_id = ?", id, claims.TenantID, claims.UserID).
		Update("read", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update message"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	var msg models.Message
	h.DB.First(&msg, id)
	c.JSON(http.StatusOK, msg)
}

// UnreadCount returns the number of unread messages for the user.
func (h *Handler) UnreadCount(c *gin.Context) {
	claims := claimsFrom(c)

	var count int64
	if err := h.DB.Model(&models.Message{}).
		Where("tenant_id = ? AND receiver_id = ? AND read = ?", claims.TenantID, claims.UserID, false).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not count messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// DeleteMessage removes a message the user sent or received.
func (h *Handler) DeleteMessage(c *gin.Context) {
	claims := claimsFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	q := h.DB.Where("id = ? AND tenant_id = ?", id, claims.TenantID)
	if claims.Role != models.RoleAdmin {
		q = q.Where("(sender_id = ? OR receiver_id = ?)", claims.UserID, claims.UserID)
	}

	res := q.Delete(&models.Message{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete message"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}
