package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easishift/clinic-scheduler-go/pkg/metrics"
	"github.com/easishift/clinic-scheduler-go/pkg/models"
	"github.com/easishift/clinic-scheduler-go/pkg/scheduler"
)

// AutoGenerateSchedule runs the allocation engine for the selected
// coverage requirements.
func (h *Handler) AutoGenerateSchedule(c *gin.Context) {
	claims := claimsFrom(c)

	var req struct {
		CoverageIDs []uint `json:"coverage_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Scheduler.AutoGenerate(c.Request.Context(), claims.TenantID, claims.UserID, req.CoverageIDs)
	switch {
	case errors.Is(err, scheduler.ErrNoCoverageIDs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "coverage_ids are required"})
		return
	case errors.Is(err, scheduler.ErrCoverageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No valid coverage found"})
		return
	case err != nil:
		// Shifts committed before the failure stay committed; report both.
		payload := gin.H{"error": "Auto-scheduling failed partway: " + err.Error()}
		if res != nil {
			payload["generated_count"] = res.GeneratedCount
			payload["schedules"] = res.Shifts
		}
		c.JSON(http.StatusInternalServerError, payload)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Auto-scheduling complete",
		"generated_count": res.GeneratedCount,
		"schedules":       res.Shifts,
	})
}

// CreateSchedule creates a shift after checking for conflicts. A conflict
// rejects the write with 409 and nothing is persisted.
func (h *Handler) CreateSchedule(c *gin.Context) {
	claims := claimsFrom(c)

	var req struct {
		StaffID   uint        `json:"staff_id"`
		Role      models.Role `json:"role"`
		StartTime time.Time   `json:"start_time"`
		EndTime   time.Time   `json:"end_time"`
		Notes     string      `json:"notes"`
		Timezone  string      `json:"timezone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.StaffID == 0 || req.Role == "" || req.StartTime.IsZero() || req.EndTime.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "staff_id, role, start_time, end_time are required"})
		return
	}
	if !req.Role.Schedulable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	if !req.StartTime.Before(req.EndTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	conflict, err := h.Scheduler.HasConflict(c.Request.Context(), claims.TenantID, req.StaffID, req.StartTime, req.EndTime, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Conflict check failed"})
		return
	}
	if conflict != nil {
		metrics.ObserveConflictRejection()
		c.JSON(http.StatusConflict, gin.H{"error": "Schedule conflict", "conflict": conflict})
		return
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	shift := models.Shift{
		TenantID:    claims.TenantID,
		StaffID:     req.StaffID,
		Role:        req.Role,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      models.ShiftScheduled,
		Notes:       req.Notes,
		Timezone:    timezone,
		CreatedByID: claims.UserID,
	}
	if err := h.DB.Create(&shift).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create schedule"})
		return
	}

	c.JSON(http.StatusCreated, shift)
}

// ListSchedules returns the tenant's shifts with optional staff/role/window
// filters.
func (h *Handler) ListSchedules(c *gin.Context) {
	claims := claimsFrom(c)

	q := h.DB.Where("tenant_id = ?", claims.TenantID)
	if staffID := c.Query("staff_id"); staffID != "" {
		q = q.Where("staff_id = ?", staffID)
	}
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		q = q.Where("end_time >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		q = q.Where("start_time <= ?", t)
	}

	var shifts []models.Shift
	if err := q.Order("start_time").Find(&shifts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list schedules"})
		return
	}
	c.JSON(http.StatusOK, shifts)
}

// GetSchedule returns one shift.
func (h *Handler) GetSchedule(c *gin.Context) {
	claims := claimsFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var shift models.Shift
	err := h.DB.Where("id = ? AND tenant_id = ?", id, claims.TenantID).First(&shift).Error
	if notFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load schedule"})
		return
	}
	c.JSON(http.StatusOK, shift)
}

// UpdateSchedule applies the allow-listed shift fields. Changing the
// interval or the assignee re-runs the conflict check against the merged
// values before anything is written.
func (h *Handler) UpdateSchedule(c *gin.Context) {
	claims := claimsFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var upd models.ShiftUpdate
	if err := bindStrict(c, &upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if upd.Role != nil && !upd.Role.Schedulable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	if upd.Status != nil && !upd.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	var shift models.Shift
	err := h.DB.Where("id = ? AND tenant_id = ?", id, claims.TenantID).First(&shift).Error
	if notFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load schedule"})
		return
	}

	if upd.TouchesTimes() {
		start := shift.StartTime
		end := shift.EndTime
		staffID := shift.StaffID
		if upd.StartTime != nil {
			start = *upd.StartTime
		}
		if upd.EndTime != nil {
			end = *upd.EndTime
		}
		if upd.StaffID != nil {
			staffID = *upd.StaffID
		}
		if !start.Before(end) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
			return
		}

		conflict, err := h.Scheduler.HasConflict(c.Request.Context(), claims.TenantID, staffID, start, end, shift.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Conflict check failed"})
			return
		}
		if conflict != nil {
			metrics.ObserveConflictRejection()
			c.JSON(http.StatusConflict, gin.H{"error": "Schedule conflict", "conflict": conflict})
			return
		}
	}

	changes := upd.Changes()
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := h.DB.Model(&shift).Updates(changes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update schedule"})
		return
	}
	c.JSON(http.StatusOK, shift)
}

// DeleteSchedule removes a shift.
func (h *Handler) DeleteSchedule(c *gin.Context) {
	claims := claimsFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	res := h.DB.Where("id = ? AND tenant_id = ?", id, claims.TenantID).Delete(&models.Shift{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete schedule"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted"})
}
