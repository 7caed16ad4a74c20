package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

// memCommit assigns sequential ids without persisting anywhere.
func memCommit() CommitFunc {
	var next uint
	return func(_ context.Context, shift *models.Shift) error {
		next++
		shift.ID = next
		return nil
	}
}

func nurseCoverage(required int) models.Coverage {
	return models.Coverage{
		ID:            1,
		TenantID:      1,
		Date:          time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Role:          models.RoleNurse,
		StartTime:     ts(2, 8, 0),
		EndTime:       ts(2, 16, 0),
		RequiredCount: required,
	}
}

var (
	alice = models.User{ID: 10, TenantID: 1, Name: "Alice", Role: models.RoleNurse}
	bob   = models.User{ID: 11, TenantID: 1, Name: "Bob", Role: models.RoleNurse}
)

func nurseRoster() map[models.Role][]models.User {
	return map[models.Role][]models.User{
		models.RoleNurse: {alice, bob},
	}
}

func TestExecute_LeastLoadedFirst(t *testing.T) {
	// Bob carries 480 minutes of prior load from an earlier shift in the
	// window; Alice has none. Both must be assigned, Alice first.
	run := &Run{
		TenantID:  1,
		CreatedBy: 99,
		Coverages: []models.Coverage{nurseCoverage(2)},
		Roster:    nurseRoster(),
		Existing: []models.Shift{
			{ID: 1, TenantID: 1, StaffID: bob.ID, Role: models.RoleNurse,
				StartTime: ts(1, 8, 0), EndTime: ts(1, 16, 0), Status: models.ShiftScheduled},
		},
	}

	res, err := run.Execute(context.Background(), memCommit())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.GeneratedCount != 2 {
		t.Fatalf("expected 2 generated shifts, got %d", res.GeneratedCount)
	}
	if res.Shifts[0].StaffID != alice.ID {
		t.Errorf("expected Alice (least loaded) first, got staff %d", res.Shifts[0].StaffID)
	}
	if res.Shifts[1].StaffID != bob.ID {
		t.Errorf("expected Bob second, got staff %d", res.Shifts[1].StaffID)
	}
	for _, sh := range res.Shifts {
		if !sh.AutoGenerated || sh.CreatedByID != 99 {
			t.Errorf("generated shift missing audit fields: %+v", sh)
		}
		if sh.Status != models.ShiftScheduled {
			t.Errorf("expected scheduled status, got %s", sh.Status)
		}
		if !sh.StartTime.Equal(ts(2, 8, 0)) || !sh.EndTime.Equal(ts(2, 16, 0)) {
			t.Errorf("shift times must copy the coverage verbatim: %+v", sh)
		}
	}
}

func TestExecute_SubMinuteLoadBreaksTies(t *testing.T) {
	// Alice carries 30 seconds of prior load. The tally keeps exact
	// durations, so even a sub-minute difference must rank Bob first.
	run := &Run{
		TenantID:  1,
		Coverages: []models.Coverage{nurseCoverage(1)},
		Roster:    nurseRoster(),
		Existing: []models.Shift{
			{ID: 1, TenantID: 1, StaffID: alice.ID, Role: models.RoleNurse,
				StartTime: ts(1, 8, 0), EndTime: ts(1, 8, 0).Add(30 * time.Second),
				Status: models.ShiftScheduled},
		},
	}

	res, err := run.Execute(context.Background(), memCommit())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.GeneratedCount != 1 || res.Shifts[0].StaffID != bob.ID {
		t.Errorf("expected Bob (zero load) assigned, got %+v", res.Shifts)
	}
}

func TestExecute_ApprovedTimeOffExcludes(t *testing.T) {
	run := &Run{
		TenantID:  1,
		Coverages: []models.Coverage{nurseCoverage(2)},
		Roster:    nurseRoster(),
		TimeOff: map[uint][]models.TimeOff{
			alice.ID: {{
				StaffID: alice.ID, Status: models.TimeOffApproved,
				StartTime: ts(2, 7, 0), EndTime: ts(2, 17, 0),
			}},
		},
	}

	res, err := run.Execute(context.Background(), memCommit())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.GeneratedCount != 1 {
		t.Fatalf("expected 1 generated shift, got %d", res.GeneratedCount)
	}
	if res.Shifts[0].StaffID != bob.ID {
		t.Errorf("expected only Bob assigned, got staff %d", res.Shifts[0].StaffID)
	}
}

func TestExecute_RestBufferExcludes(t *testing.T) {
	// Bob's previous shift ends 07:45, 15 minutes before the coverage
	// starts. That violates the 30 minute rest buffer.
	run := &Run{
		TenantID:  1,
		Coverages: []models.Coverage{nurseCoverage(2)},
		Roster:    nurseRoster(),
		Existing: []models.Shift{
			{ID: 1, TenantID: 1, StaffID: bob.ID, Role: models.RoleNurse,
				StartTime: ts(2, 4, 0), EndTime: ts(2, 7, 45), Status: models.ShiftScheduled},
		},
	}

	res, err := run.Execute(context.Background(), memCommit())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.GeneratedCount != 1 {
		t.Fatalf("expected 1 generated shift, got %d", res.GeneratedCount)
	}
	if res.Shifts[0].StaffID != alice.ID {
		t.Errorf("expected only Alice assigned, got staff %d", res.Shifts[0].StaffID)
	}
}

func TestExecute_WeekdayUnavailability(t *testing.T) {
	// 2025-06-02 is a Monday (weekday 1).
	run := &Run{
		TenantID:  1,
		Coverages: []models.Coverage{nurseCoverage(2)},
		Roster:    nurseRoster(),
		Preferences: map[uint]models.Preferences{
			alice.ID: {StaffID: alice.ID, UnavailableDaysOfWeek: []int{1}},
		},
	}

	res, err := run.Execute(context.Background(), memCommit())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.GeneratedCount != 1 || res.Shifts[0].StaffID != bob.ID {
		t.Errorf("expected only Bob assigned, got %+v", res.Shifts)
	}
}

func TestExecute_FullyStaffedIsSkipped(t *testing.T) {
	cov := nurseCoverage(2)

	first := &Run{
		TenantID:  1,
		Coverages: []models.Coverage{cov},
		Roster:    nurseRoster(),
	}
	res, err := first.Execute(context.Background(), memCommit())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if res.GeneratedCount != 2 {
		t.Fatalf("expected 2 shifts in first run, got %d", res.GeneratedCount)
	}

	// Second run sees the first run's shifts as existing and must be a no-op.
	second := &Run{
		TenantID:  1,
		Coverages: []models.Coverage{cov},
		Roster:    nurseRoster(),
		Existing:  res.Shifts,
	}
	res2, err := second.Execute(context.Background(), memCommit())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if res2.GeneratedCount != 0 {
		t.Errorf("expected idempotent skip, got %d new shifts", res2.GeneratedCount)
	}
}

func TestExecute_NoDoubleBooking(t *testing.T) {
	// Two overlapping requirements with a single nurse: the second must be
	// skipped because the first assignment now overlaps.
	cov1 := nurseCoverage(1)
	cov2 := nurseCoverage(1)
	cov2.ID = 2
	cov2.StartTime = ts(2, 12, 0)
	cov2.EndTime = ts(2, 20, 0)

	run := &Run{
		TenantID:  1,
		Coverages: []models.Coverage{cov1, cov2},
		Roster:    map[models.Role][]models.User{models.RoleNurse: {alice}},
	}

	res, err := run.Execute(context.Background(), memCommit())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.GeneratedCount != 1 {
		t.Fatalf("expected exactly 1 shift, got %d", res.GeneratedCount)
	}

	for i := 0; i < len(res.Shifts); i++ {
		for j := i + 1; j < len(res.Shifts); j++ {
			a, b := res.Shifts[i], res.Shifts[j]
			if a.StaffID == b.StaffID && Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
				t.Errorf("double booking: %+v overlaps %+v", a, b)
			}
		}
	}
}

func TestExecute_ProcessesInDateOrder(t *testing.T) {
	// Coverages arrive unsorted; assignments must follow (date, start) order
	// so that workload from the earlier day influences the later one.
	dayTwo := nurseCoverage(1)
	dayOne := nurseCoverage(1)
	dayOne.ID = 2
	dayOne.Date = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dayOne.StartTime = ts(1, 8, 0)
	dayOne.EndTime = ts(1, 16, 0)

	run := &Run{
		TenantID:  1,
		Coverages: []models.Coverage{dayTwo, dayOne},
		Roster:    nurseRoster(),
	}

	res, err := run.Execute(context.Background(), memCommit())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.GeneratedCount != 2 {
		t.Fatalf("expected 2 shifts, got %d", res.GeneratedCount)
	}
	if !res.Shifts[0].StartTime.Equal(ts(1, 8, 0)) {
		t.Errorf("expected the June 1st coverage filled first, got %+v", res.Shifts[0])
	}
	// Fairness across days: Alice got day one, so Bob must get day two.
	if res.Shifts[0].StaffID != alice.ID || res.Shifts[1].StaffID != bob.ID {
		t.Errorf("expected Alice then Bob, got %d then %d", res.Shifts[0].StaffID, res.Shifts[1].StaffID)
	}
}

func TestExecute_NoRosterSkips(t *testing.T) {
	run := &Run{
		TenantID:  1,
		Coverages: []models.Coverage{nurseCoverage(2)},
		Roster:    map[models.Role][]models.User{},
	}

	res, err := run.Execute(context.Background(), memCommit())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.GeneratedCount != 0 {
		t.Errorf("expected no shifts without a roster, got %d", res.GeneratedCount)
	}
}

func TestExecute_PartialFailureKeepsEarlierCommits(t *testing.T) {
	boom := errors.New("db down")
	var committed int
	commit := func(_ context.Context, shift *models.Shift) error {
		if committed == 1 {
			return boom
		}
		committed++
		shift.ID = uint(committed)
		return nil
	}

	run := &Run{
		TenantID:  1,
		Coverages: []models.Coverage{nurseCoverage(2)},
		Roster:    nurseRoster(),
	}

	res, err := run.Execute(context.Background(), commit)
	if !errors.Is(err, boom) {
		t.Fatalf("expected commit error, got %v", err)
	}
	if res == nil || res.GeneratedCount != 1 {
		t.Fatalf("expected the first commit to survive, got %+v", res)
	}
}
