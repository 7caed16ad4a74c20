package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easishift/clinic-scheduler-go/pkg/models"
	"github.com/easishift/clinic-scheduler-go/pkg/scheduler"
)

func startOfDayUTC(now time.Time) time.Time {
	return scheduler.NormalizeToUTCDate(now)
}

func endOfDayUTC(now time.Time) time.Time {
	return startOfDayUTC(now).Add(24*time.Hour - time.Millisecond)
}

// Weeks run Sunday through Saturday in UTC.
func startOfWeekUTC(now time.Time) time.Time {
	day := startOfDayUTC(now)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func endOfWeekUTC(now time.Time) time.Time {
	return startOfWeekUTC(now).AddDate(0, 0, 6).Add(24*time.Hour - time.Millisecond)
}

// GetStaffSummary returns a staff member's dashboard numbers: this week's
// shifts and hours, unread messages, and upcoming approved time off.
func (h *Handler) GetStaffSummary(c *gin.Context) {
	claims := claimsFrom(c)
	staffID, ok := idParam(c, "staffId")
	if !ok {
		return
	}

	var staff models.User
	if err := h.DB.Where("id = ? AND tenant_id = ?", staffID, claims.TenantID).First(&staff).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff not found for tenant"})
		return
	}

	now := time.Now()

	var unread int64
	h.DB.Model(&models.Message{}).
		Where("tenant_id = ? AND receiver_id = ? AND read = ?", claims.TenantID, staffID, false).
		Count(&unread)

	var upcomingTimeOff int64
	h.DB.Model(&models.TimeOff{}).
		Where("tenant_id = ? AND staff_id = ? AND status = ? AND end_time >= ?",
			claims.TenantID, staffID, models.TimeOffApproved, startOfDayUTC(now)).
		Count(&upcomingTimeOff)

	var week []models.Shift
	h.DB.
		Where("tenant_id = ? AND staff_id = ?", claims.TenantID, staffID).
		Where("start_time >= ? AND start_time <= ?", startOfWeekUTC(now), endOfWeekUTC(now)).
		Where("status <> ?", models.ShiftCancelled).
		Order("start_time").
		Find(&week)

	var hours float64
	for _, sh := range week {
		if sh.EndTime.After(sh.StartTime) {
			hours += sh.EndTime.Sub(sh.StartTime).Hours()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"staff_id":                staffID,
		"staff_role":              staff.Role,
		"unread_messages":         unread,
		"approved_time_off_count": upcomingTimeOff,
		"shifts_this_week_count":  len(week),
		"hours_this_week":         math.Round(hours*100) / 100,
	})
}

// GetAdminSummary returns the tenant-wide dashboard: today's schedules,
// coverage staffing levels, pending time off, and staff headcount (admin
// only).
func (h *Handler) GetAdminSummary(c *gin.Context) {
	claims := claimsFrom(c)

	now := time.Now()
	todayStart := startOfDayUTC(now)
	todayEnd := endOfDayUTC(now)

	var schedulesToday []models.Shift
	h.DB.
		Where("tenant_id = ?", claims.TenantID).
		Where("start_time >= ? AND start_time <= ?", todayStart, todayEnd).
		Where("status <> ?", models.ShiftCancelled).
		Find(&schedulesToday)

	var coverageToday []models.Coverage
	h.DB.Where("tenant_id = ? AND date = ?", claims.TenantID, todayStart).Find(&coverageToday)

	var pendingTimeOff int64
	h.DB.Model(&models.TimeOff{}).
		Where("tenant_id = ? AND status = ?", claims.TenantID, models.TimeOffPending).
		Count(&pendingTimeOff)

	var staffCount int64
	h.DB.Model(&models.User{}).Where("tenant_id = ?", claims.TenantID).Count(&staffCount)

	fills, err := h.Scheduler.FillCounts(c.Request.Context(), claims.TenantID, coverageToday)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not compute coverage fill"})
		return
	}

	fullyStaffed := 0
	understaffed := 0
	for _, f := range fills {
		if f.AssignedCount >= f.RequiredCount {
			fullyStaffed++
		} else {
			understaffed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"active_staff_count":    staffCount,
		"schedules_today_count": len(schedulesToday),
		"coverage_today_count":  len(coverageToday),
		"fully_staffed_count":   fullyStaffed,
		"understaffed_count":    understaffed,
		"pending_time_off":      pendingTimeOff,
	})
}
