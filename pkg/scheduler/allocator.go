package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/easishift/clinic-scheduler-go/pkg/metrics"
	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

// CommitFunc persists one shift. It must complete before the allocator
// moves on, so that later requirements in the same run observe the write.
type CommitFunc func(ctx context.Context, shift *models.Shift) error

// Run is one allocation pass over a set of coverage requirements. All data
// is loaded up front; the allocator never reloads mid-run and instead keeps
// its snapshot self-consistent as it assigns.
type Run struct {
	TenantID  uint
	CreatedBy uint // acting admin, recorded on every generated shift

	Coverages   []models.Coverage
	Roster      map[models.Role][]models.User
	Preferences map[uint]models.Preferences
	TimeOff     map[uint][]models.TimeOff
	Existing    []models.Shift // non-terminal shifts in the coverage window

	Logger *slog.Logger
}

// Result is what an allocation run produced.
type Result struct {
	GeneratedCount int            `json:"generated_count"`
	Shifts         []models.Shift `json:"shifts"`
}

// Execute processes coverage requirements in (date, startTime) order. For
// each one it filters the role roster down to available staff, ranks them
// by ascending accumulated workload (stable, so roster order breaks ties),
// and commits a shift per missing headcount. Requirements with no roster,
// no available staff, or no remaining need are skipped, not failed.
//
// There is no rollback: if a commit fails partway through, shifts already
// committed in this run stay committed and the error is returned alongside
// the partial result.
func (r *Run) Execute(ctx context.Context, commit CommitFunc) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sort.SliceStable(r.Coverages, func(i, j int) bool {
		if !r.Coverages[i].Date.Equal(r.Coverages[j].Date) {
			return r.Coverages[i].Date.Before(r.Coverages[j].Date)
		}
		return r.Coverages[i].StartTime.Before(r.Coverages[j].StartTime)
	})

	st := newRunState(r.Existing)
	res := &Result{Shifts: []models.Shift{}}

	for _, cov := range r.Coverages {
		covLog := logger.With(
			slog.Uint64("coverage_id", uint64(cov.ID)),
			slog.String("role", string(cov.Role)),
			slog.Time("start", cov.StartTime),
			slog.Time("end", cov.EndTime),
		)

		roster := r.Roster[cov.Role]
		if len(roster) == 0 {
			covLog.Info("no staff registered for role, skipping")
			metrics.ObserveCoverageSkip("no_staff_for_role")
			continue
		}

		available := st.availableStaff(cov, roster, r.Preferences, r.TimeOff, covLog)
		if len(available) == 0 {
			covLog.Info("no available staff, skipping")
			metrics.ObserveCoverageSkip("no_available_staff")
			continue
		}

		needed := cov.RequiredCount - st.assignedCount(cov.Role, cov.StartTime, cov.EndTime)
		if needed <= 0 {
			covLog.Info("coverage already fully assigned, skipping")
			metrics.ObserveCoverageSkip("fully_staffed")
			continue
		}
		if needed > len(available) {
			needed = len(available)
		}

		sort.SliceStable(available, func(i, j int) bool {
			return st.load(available[i].ID) < st.load(available[j].ID)
		})

		for _, staff := range available[:needed] {
			shift := models.Shift{
				TenantID:      r.TenantID,
				StaffID:       staff.ID,
				Role:          cov.Role,
				StartTime:     cov.StartTime,
				EndTime:       cov.EndTime,
				Status:        models.ShiftScheduled,
				Notes:         "Auto-generated",
				Timezone:      "UTC",
				AutoGenerated: true,
				CreatedByID:   r.CreatedBy,
			}

			if err := commit(ctx, &shift); err != nil {
				return res, fmt.Errorf("commit shift for coverage %d: %w", cov.ID, err)
			}

			st.add(shift)
			res.Shifts = append(res.Shifts, shift)
			res.GeneratedCount++

			covLog.Info("staff assigned",
				slog.Uint64("staff_id", uint64(staff.ID)),
				slog.Int64("workload_minutes", st.minutes(staff.ID)),
			)
		}
	}

	logger.Info("auto-scheduling complete", slog.Int("generated", res.GeneratedCount))
	return res, nil
}
