package scheduler

import (
	"time"

	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

// RestBuffer is the minimum gap required between the end of one shift and
// the start of the next for the same staff member.
const RestBuffer = 30 * time.Minute

// Overlaps checks if two half-open time ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching or zero-length intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// NormalizeToUTCDate truncates a timestamp to UTC midnight of the same
// calendar date, so requirements on the same logical day compare equal.
func NormalizeToUTCDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// slotKey identifies a coverage slot by role and exact interval. Correlating
// coverage with shifts goes through this key rather than formatted strings.
type slotKey struct {
	role  models.Role
	start int64 // unix milliseconds
	end   int64
}

func slotKeyFor(role models.Role, start, end time.Time) slotKey {
	return slotKey{role: role, start: start.UnixMilli(), end: end.UnixMilli()}
}

// runState is the mutable snapshot a single allocation run works against:
// accumulated assigned time per staff member, each staff member's
// non-terminal shifts, and headcount per slot. The allocator exclusively
// owns it; every committed shift is folded back in so later requirements in
// the same run see earlier assignments.
type runState struct {
	workload map[uint]time.Duration
	byStaff  map[uint][]models.Shift
	bySlot   map[slotKey]int
}

func newRunState(existing []models.Shift) *runState {
	st := &runState{
		workload: make(map[uint]time.Duration),
		byStaff:  make(map[uint][]models.Shift),
		bySlot:   make(map[slotKey]int),
	}
	for _, sh := range existing {
		st.add(sh)
	}
	return st
}

func (st *runState) add(sh models.Shift) {
	st.workload[sh.StaffID] += sh.EndTime.Sub(sh.StartTime)
	st.byStaff[sh.StaffID] = append(st.byStaff[sh.StaffID], sh)
	st.bySlot[slotKeyFor(sh.Role, sh.StartTime, sh.EndTime)]++
}

// load returns the exact accumulated assigned time for a staff member.
// Fairness ranking compares these, so sub-minute durations still count.
func (st *runState) load(staffID uint) time.Duration {
	return st.workload[staffID]
}

// minutes is the whole-minute view of load, for logging.
func (st *runState) minutes(staffID uint) int64 {
	return int64(st.workload[staffID] / time.Minute)
}

// assignedCount returns how many shifts in the snapshot exactly match the
// given slot, regardless of staff member.
func (st *runState) assignedCount(role models.Role, start, end time.Time) int {
	return st.bySlot[slotKeyFor(role, start, end)]
}
