package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

func validWeekdays(days []int) bool {
	for _, d := range days {
		if d < 0 || d > 6 {
			return false
		}
	}
	return true
}

// GetMyPreferences returns the authenticated staff member's preferences,
// or an empty object if none were saved yet.
func (h *Handler) GetMyPreferences(c *gin.Context) {
	claims := claimsFrom(c)

	var prefs models.Preferences
	err := h.DB.Where("staff_id = ? AND tenant_id = ?", claims.UserID, claims.TenantID).First(&prefs).Error
	if notFound(err) {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load preferences"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpsertMyPreferences creates or updates the authenticated staff member's
// preferences from the allow-listed field set.
func (h *Handler) UpsertMyPreferences(c *gin.Context) {
	claims := claimsFrom(c)

	var upd models.PreferencesUpdate
	if err := bindStrict(c, &upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if upd.UnavailableDaysOfWeek != nil && !validWeekdays(*upd.UnavailableDaysOfWeek) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekdays must be 0-6"})
		return
	}
	if upd.PreferredDaysOfWeek != nil && !validWeekdays(*upd.PreferredDaysOfWeek) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekdays must be 0-6"})
		return
	}

	var prefs models.Preferences
	err := h.DB.Where("staff_id = ? AND tenant_id = ?", claims.UserID, claims.TenantID).First(&prefs).Error
	if notFound(err) {
		prefs = models.Preferences{
			TenantID: claims.TenantID,
			StaffID:  claims.UserID,
			Timezone: "UTC",
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load preferences"})
		return
	}

	upd.Apply(&prefs)

	if err := h.DB.Save(&prefs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save preferences"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// GetPreferencesForStaff returns any staff member's preferences (admin
// only).
func (h *Handler) GetPreferencesForStaff(c *gin.Context) {
	claims := claimsFrom(c)
	staffID, ok := idParam(c, "staffId")
	if !ok {
		return
	}

	var prefs models.Preferences
	err := h.DB.Where("staff_id = ? AND tenant_id = ?", staffID, claims.TenantID).First(&prefs).Error
	if notFound(err) {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load preferences"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}
