package scheduler

import (
	"log/slog"

	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

// ExclusionReason says why a staff member was ruled out for a coverage
// requirement. Reasons are diagnostic only; any single reason excludes.
type ExclusionReason string

const (
	ExcludedWeekday      ExclusionReason = "unavailable_weekday"
	ExcludedTimeOff      ExclusionReason = "approved_time_off"
	ExcludedShiftOverlap ExclusionReason = "overlapping_shift"
	ExcludedRestBuffer   ExclusionReason = "rest_buffer"
)

// availableStaff returns the subset of the roster eligible for the coverage
// requirement, preserving roster order. Checks run in a fixed priority
// order and the first failing check wins, so the logged reason is stable.
func (st *runState) availableStaff(
	cov models.Coverage,
	roster []models.User,
	prefs map[uint]models.Preferences,
	timeOff map[uint][]models.TimeOff,
	logger *slog.Logger,
) []models.User {
	weekday := int(cov.Date.UTC().Weekday())

	var available []models.User
	for _, staff := range roster {
		if reason := st.exclusionFor(staff.ID, weekday, cov, prefs, timeOff); reason != "" {
			logger.Debug("staff excluded from coverage",
				slog.Uint64("staff_id", uint64(staff.ID)),
				slog.Uint64("coverage_id", uint64(cov.ID)),
				slog.String("reason", string(reason)),
			)
			continue
		}
		available = append(available, staff)
	}
	return available
}

func (st *runState) exclusionFor(
	staffID uint,
	weekday int,
	cov models.Coverage,
	prefs map[uint]models.Preferences,
	timeOff map[uint][]models.TimeOff,
) ExclusionReason {
	if pref, ok := prefs[staffID]; ok {
		for _, d := range pref.UnavailableDaysOfWeek {
			if d == weekday {
				return ExcludedWeekday
			}
		}
	}

	// Time-off bounds are inclusive: a request touching the requirement
	// boundary still blocks the day.
	for _, to := range timeOff[staffID] {
		if !to.StartTime.After(cov.EndTime) && !to.EndTime.Before(cov.StartTime) {
			return ExcludedTimeOff
		}
	}

	for _, sh := range st.byStaff[staffID] {
		if Overlaps(sh.StartTime, sh.EndTime, cov.StartTime, cov.EndTime) {
			return ExcludedShiftOverlap
		}
	}

	for _, sh := range st.byStaff[staffID] {
		gap := sh.EndTime.Sub(cov.StartTime)
		if gap < 0 {
			gap = -gap
		}
		if gap < RestBuffer {
			return ExcludedRestBuffer
		}
	}

	return ""
}
