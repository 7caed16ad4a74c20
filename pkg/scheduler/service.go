package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/easishift/clinic-scheduler-go/pkg/metrics"
	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

var (
	// ErrNoCoverageIDs is returned when auto-generation is invoked without
	// any coverage requirement ids. Rejected before any work happens.
	ErrNoCoverageIDs = errors.New("coverage ids are required")

	// ErrCoverageNotFound is returned when none of the requested ids
	// resolve to a coverage requirement for the tenant.
	ErrCoverageNotFound = errors.New("no valid coverage found")
)

// Service runs the allocation engine against the database. It loads the
// run inputs once, executes sequentially, and persists each shift before
// the next requirement is processed.
type Service struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{DB: db, Logger: logger}
}

// AutoGenerate fills the requested coverage requirements for a tenant and
// returns the shifts it created. createdBy is the acting admin, recorded on
// every generated shift for audit.
func (s *Service) AutoGenerate(ctx context.Context, tenantID, createdBy uint, coverageIDs []uint) (*Result, error) {
	if len(coverageIDs) == 0 {
		return nil, ErrNoCoverageIDs
	}

	db := s.DB.WithContext(ctx)

	var coverages []models.Coverage
	if err := db.
		Where("tenant_id = ? AND id IN ?", tenantID, coverageIDs).
		Order("date, start_time").
		Find(&coverages).Error; err != nil {
		return nil, err
	}
	if len(coverages) == 0 {
		return nil, ErrCoverageNotFound
	}

	s.Logger.Info("auto-generation starting",
		slog.Uint64("tenant_id", uint64(tenantID)),
		slog.Int("coverages", len(coverages)),
	)

	windowStart := coverages[0].StartTime
	windowEnd := coverages[0].EndTime
	for _, cov := range coverages[1:] {
		if cov.StartTime.Before(windowStart) {
			windowStart = cov.StartTime
		}
		if cov.EndTime.After(windowEnd) {
			windowEnd = cov.EndTime
		}
	}

	var timeOff []models.TimeOff
	if err := db.
		Where("tenant_id = ? AND status = ?", tenantID, models.TimeOffApproved).
		Where("start_time <= ? AND end_time >= ?", windowEnd, windowStart).
		Find(&timeOff).Error; err != nil {
		return nil, err
	}
	timeOffByStaff := make(map[uint][]models.TimeOff)
	for _, to := range timeOff {
		timeOffByStaff[to.StaffID] = append(timeOffByStaff[to.StaffID], to)
	}

	var existing []models.Shift
	if err := db.
		Where("tenant_id = ? AND status NOT IN ?", tenantID, models.TerminalShiftStatuses).
		Where("start_time >= ? AND start_time <= ?", windowStart, windowEnd).
		Find(&existing).Error; err != nil {
		return nil, err
	}

	roleSet := make(map[models.Role]bool)
	for _, cov := range coverages {
		roleSet[cov.Role] = true
	}
	roles := make([]models.Role, 0, len(roleSet))
	for role := range roleSet {
		roles = append(roles, role)
	}

	var staff []models.User
	if err := db.
		Where("tenant_id = ? AND role IN ?", tenantID, roles).
		Order("id").
		Find(&staff).Error; err != nil {
		return nil, err
	}
	roster := make(map[models.Role][]models.User)
	staffIDs := make([]uint, 0, len(staff))
	for _, u := range staff {
		roster[u.Role] = append(roster[u.Role], u)
		staffIDs = append(staffIDs, u.ID)
	}

	prefsByStaff := make(map[uint]models.Preferences)
	if len(staffIDs) > 0 {
		var prefs []models.Preferences
		if err := db.
			Where("tenant_id = ? AND staff_id IN ?", tenantID, staffIDs).
			Find(&prefs).Error; err != nil {
			return nil, err
		}
		for _, p := range prefs {
			prefsByStaff[p.StaffID] = p
		}
	}

	run := &Run{
		TenantID:    tenantID,
		CreatedBy:   createdBy,
		Coverages:   coverages,
		Roster:      roster,
		Preferences: prefsByStaff,
		TimeOff:     timeOffByStaff,
		Existing:    existing,
		Logger:      s.Logger,
	}

	started := time.Now()
	res, err := run.Execute(ctx, func(ctx context.Context, shift *models.Shift) error {
		return s.DB.WithContext(ctx).Create(shift).Error
	})
	if res != nil {
		metrics.ObserveRun(res.GeneratedCount, time.Since(started))
	}
	return res, err
}

// HasConflict returns the first non-terminal shift for the staff member
// that overlaps [start, end), or nil if there is none. excludeShiftID
// skips the shift being updated.
func (s *Service) HasConflict(ctx context.Context, tenantID, staffID uint, start, end time.Time, excludeShiftID uint) (*models.Shift, error) {
	q := s.DB.WithContext(ctx).
		Where("tenant_id = ? AND staff_id = ?", tenantID, staffID).
		Where("status NOT IN ?", models.TerminalShiftStatuses).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeShiftID != 0 {
		q = q.Where("id <> ?", excludeShiftID)
	}

	var shift models.Shift
	err := q.First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// CoverageFill reports assigned headcount against a coverage requirement.
type CoverageFill struct {
	models.Coverage
	AssignedCount int `json:"assigned_count"`
	Remaining     int `json:"remaining"`
}

// FillCounts annotates coverages with how many non-terminal shifts exactly
// match each one's (role, start, end) slot.
func (s *Service) FillCounts(ctx context.Context, tenantID uint, coverages []models.Coverage) ([]CoverageFill, error) {
	result := make([]CoverageFill, 0, len(coverages))
	if len(coverages) == 0 {
		return result, nil
	}

	windowStart := coverages[0].StartTime
	windowEnd := coverages[0].EndTime
	for _, cov := range coverages[1:] {
		if cov.StartTime.Before(windowStart) {
			windowStart = cov.StartTime
		}
		if cov.EndTime.After(windowEnd) {
			windowEnd = cov.EndTime
		}
	}

	var shifts []models.Shift
	if err := s.DB.WithContext(ctx).
		Where("tenant_id = ? AND status NOT IN ?", tenantID, models.TerminalShiftStatuses).
		Where("start_time >= ? AND start_time <= ?", windowStart, windowEnd).
		Find(&shifts).Error; err != nil {
		return nil, err
	}

	counts := make(map[slotKey]int)
	for _, sh := range shifts {
		counts[slotKeyFor(sh.Role, sh.StartTime, sh.EndTime)]++
	}

	for _, cov := range coverages {
		assigned := counts[slotKeyFor(cov.Role, cov.StartTime, cov.EndTime)]
		remaining := cov.RequiredCount - assigned
		if remaining < 0 {
			remaining = 0
		}
		result = append(result, CoverageFill{
			Coverage:      cov,
			AssignedCount: assigned,
			Remaining:     remaining,
		})
	}
	return result, nil
}
