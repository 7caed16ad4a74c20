package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easishift/clinic-scheduler-go/pkg/models"
	"github.com/easishift/clinic-scheduler-go/pkg/scheduler"
)

// CreateCoverage creates a coverage requirement (admin only). The date is
// normalized to UTC midnight; duplicates on (date, role, start, end) are
// rejected by the unique index.
func (h *Handler) CreateCoverage(c *gin.Context) {
	claims := claimsFrom(c)

	var req struct {
		Date          time.Time   `json:"date"`
		Role          models.Role `json:"role"`
		StartTime     time.Time   `json:"start_time"`
		EndTime       time.Time   `json:"end_time"`
		RequiredCount *int        `json:"required_count"`
		Note          string      `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Role.Schedulable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	if req.Date.IsZero() || req.StartTime.IsZero() || req.EndTime.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date, start_time, end_time are required"})
		return
	}
	if !req.StartTime.Before(req.EndTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	// Absent defaults to 1; an explicit zero stays zero.
	required := 1
	if req.RequiredCount != nil {
		if *req.RequiredCount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "required_count must not be negative"})
			return
		}
		required = *req.RequiredCount
	}

	cov := models.Coverage{
		TenantID:      claims.TenantID,
		Date:          scheduler.NormalizeToUTCDate(req.Date),
		Role:          req.Role,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		RequiredCount: required,
		Note:          req.Note,
	}
	if err := h.DB.Create(&cov).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not create coverage: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cov)
}

// ListCoverage returns coverage requirements, filterable by exact date,
// month, or role.
func (h *Handler) ListCoverage(c *gin.Context) {
	claims := claimsFrom(c)

	q := h.DB.Where("tenant_id = ?", claims.TenantID)

	if date := c.Query("date"); date != "" {
		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			if t, err = time.Parse("2006-01-02", date); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be RFC3339 or YYYY-MM-DD"})
				return
			}
		}
		q = q.Where("date = ?", scheduler.NormalizeToUTCDate(t))
	}

	if month := c.Query("month"); month != "" {
		year := c.Query("year")
		y, errY := strconv.Atoi(year)
		m, errM := strconv.Atoi(month)
		if errY != nil || errM != nil || m < 1 || m > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month and year must be numeric"})
			return
		}
		start := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		q = q.Where("date >= ? AND date < ?", start, end)
	}

	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var list []models.Coverage
	if err := q.Order("date, start_time").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list coverage"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateCoverage applies the allow-listed coverage fields (admin only).
func (h *Handler) UpdateCoverage(c *gin.Context) {
	claims := claimsFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var upd models.CoverageUpdate
	if err := bindStrict(c, &upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if upd.Role != nil && !upd.Role.Schedulable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	if upd.RequiredCount != nil && *upd.RequiredCount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "required_count must not be negative"})
		return
	}
	if upd.Date != nil {
		normalized := scheduler.NormalizeToUTCDate(*upd.Date)
		upd.Date = &normalized
	}

	var cov models.Coverage
	err := h.DB.Where("id = ? AND tenant_id = ?", id, claims.TenantID).First(&cov).Error
	if notFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coverage not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load coverage"})
		return
	}

	// The interval invariant holds against the merged values, so a partial
	// update cannot invert an existing window.
	start := cov.StartTime
	end := cov.EndTime
	if upd.StartTime != nil {
		start = *upd.StartTime
	}
	if upd.EndTime != nil {
		end = *upd.EndTime
	}
	if !start.Before(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	changes := upd.Changes()
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := h.DB.Model(&cov).Updates(changes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update coverage"})
		return
	}
	c.JSON(http.StatusOK, cov)
}

// DeleteCoverage removes a coverage requirement (admin only).
func (h *Handler) DeleteCoverage(c *gin.Context) {
	claims := claimsFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	res := h.DB.Where("id = ? AND tenant_id = ?", id, claims.TenantID).Delete(&models.Coverage{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete coverage"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coverage not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Coverage deleted"})
}

// ListUnfilledCoverage annotates the tenant's coverage requirements with
// assigned headcount and remaining need. role is required here; the
// auto-generation variant below treats it as optional.
func (h *Handler) ListUnfilledCoverage(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}
	h.listCoverageFill(c, role)
}

// ListUnfilledCoverageForAuto is the picker feed for auto-generation:
// same annotation, any role unless one is given.
func (h *Handler) ListUnfilledCoverageForAuto(c *gin.Context) {
	h.listCoverageFill(c, c.Query("role"))
}

func (h *Handler) listCoverageFill(c *gin.Context, role string) {
	claims := claimsFrom(c)

	q := h.DB.Where("tenant_id = ?", claims.TenantID)
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var coverages []models.Coverage
	if err := q.Order("date, start_time").Find(&coverages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list coverage"})
		return
	}

	fills, err := h.Scheduler.FillCounts(c.Request.Context(), claims.TenantID, coverages)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not compute coverage fill"})
		return
	}
	c.JSON(http.StatusOK, fills)
}
