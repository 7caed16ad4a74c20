package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easishift/clinic-scheduler-go/pkg/auth"
	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

// RegisterStaff creates a staff user under the tenant (admin only). The
// tenant's seat limit caps the number of users with a login.
func (h *Handler) RegisterStaff(c *gin.Context) {
	claims := claimsFrom(c)
	tenant := tenantFrom(c)

	var req struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, password are required"})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleStaff
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	if tenant != nil {
		var seats int64
		h.DB.Model(&models.User{}).Where("tenant_id = ?", claims.TenantID).Count(&seats)
		if seats >= int64(tenant.SeatLimit) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Seat limit reached for current plan"})
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
		return
	}

	user := models.User{
		TenantID:     claims.TenantID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not create user: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Staff created successfully", "user": user})
}

// ListUsers returns the tenant's users, optionally filtered by role.
func (h *Handler) ListUsers(c *gin.Context) {
	claims := claimsFrom(c)

	q := h.DB.Where("tenant_id = ?", claims.TenantID)
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Order("name").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns one user in the tenant.
func (h *Handler) GetUser(c *gin.Context) {
	claims := claimsFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	err := h.DB.Where("id = ? AND tenant_id = ?", id, claims.TenantID).First(&user).Error
	if notFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser applies the allow-listed user fields (admin only).
func (h *Handler) UpdateUser(c *gin.Context) {
	claims := claimsFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var upd models.UserUpdate
	if err := bindStrict(c, &upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if upd.Role != nil && !upd.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	changes := upd.Changes()
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	res := h.DB.Model(&models.User{}).
		Where("id = ? AND tenant_id = ?", id, claims.TenantID).
		Updates(changes)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update user"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var user models.User
	h.DB.Where("id = ? AND tenant_id = ?", id, claims.TenantID).First(&user)
	c.JSON(http.StatusOK, gin.H{"message": "User updated", "user": user})
}

// DeleteUser removes a user from the tenant (admin only).
func (h *Handler) DeleteUser(c *gin.Context) {
	claims := claimsFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	res := h.DB.Where("id = ? AND tenant_id = ?", id, claims.TenantID).Delete(&models.User{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete user"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
