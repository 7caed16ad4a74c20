package models

import "time"

// Update payloads are explicit allow-lists: only the fields below may be
// mutated through the API, and handlers reject request bodies carrying
// anything else. Each Changes method maps the set fields to column updates.

// ShiftUpdate is the permitted mutation set for a shift.
type ShiftUpdate struct {
	StaffID   *uint        `json:"staff_id"`
	Role      *Role        `json:"role"`
	StartTime *time.Time   `json:"start_time"`
	EndTime   *time.Time   `json:"end_time"`
	Status    *ShiftStatus `json:"status"`
	Notes     *string      `json:"notes"`
	Timezone  *string      `json:"timezone"`
}

// TouchesTimes reports whether the update can move the shift interval or
// reassign it, which forces a fresh conflict check.
func (u ShiftUpdate) TouchesTimes() bool {
	return u.StartTime != nil || u.EndTime != nil || u.StaffID != nil
}

func (u ShiftUpdate) Changes() map[string]any {
	ch := map[string]any{}
	if u.StaffID != nil {
		ch["staff_id"] = *u.StaffID
	}
	if u.Role != nil {
		ch["role"] = *u.Role
	}
	if u.StartTime != nil {
		ch["start_time"] = *u.StartTime
	}
	if u.EndTime != nil {
		ch["end_time"] = *u.EndTime
	}
	if u.Status != nil {
		ch["status"] = *u.Status
	}
	if u.Notes != nil {
		ch["notes"] = *u.Notes
	}
	if u.Timezone != nil {
		ch["timezone"] = *u.Timezone
	}
	return ch
}

// CoverageUpdate is the permitted mutation set for a coverage requirement.
type CoverageUpdate struct {
	Date          *time.Time `json:"date"`
	Role          *Role      `json:"role"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	RequiredCount *int       `json:"required_count"`
	Note          *string    `json:"note"`
}

func (u CoverageUpdate) Changes() map[string]any {
	ch := map[string]any{}
	if u.Date != nil {
		ch["date"] = *u.Date
	}
	if u.Role != nil {
		ch["role"] = *u.Role
	}
	if u.StartTime != nil {
		ch["start_time"] = *u.StartTime
	}
	if u.EndTime != nil {
		ch["end_time"] = *u.EndTime
	}
	if u.RequiredCount != nil {
		ch["required_count"] = *u.RequiredCount
	}
	if u.Note != nil {
		ch["note"] = *u.Note
	}
	return ch
}

// PreferencesUpdate is the permitted mutation set for staff preferences.
type PreferencesUpdate struct {
	PreferredDaysOfWeek    *[]int   `json:"preferred_days_of_week"`
	UnavailableDaysOfWeek  *[]int   `json:"unavailable_days_of_week"`
	PreferredShiftStart    *string  `json:"preferred_shift_start"`
	PreferredShiftEnd      *string  `json:"preferred_shift_end"`
	MaxHoursPerWeek        *float64 `json:"max_hours_per_week"`
	MinHoursPerWeek        *float64 `json:"min_hours_per_week"`
	DislikesNights         *bool    `json:"dislikes_nights"`
	PrefersBlockScheduling *bool    `json:"prefers_block_scheduling"`
	Timezone               *string  `json:"timezone"`
}

// Apply copies the set fields onto p.
func (u PreferencesUpdate) Apply(p *Preferences) {
	if u.PreferredDaysOfWeek != nil {
		p.PreferredDaysOfWeek = *u.PreferredDaysOfWeek
	}
	if u.UnavailableDaysOfWeek != nil {
		p.UnavailableDaysOfWeek = *u.UnavailableDaysOfWeek
	}
	if u.PreferredShiftStart != nil {
		p.PreferredShiftStart = *u.PreferredShiftStart
	}
	if u.PreferredShiftEnd != nil {
		p.PreferredShiftEnd = *u.PreferredShiftEnd
	}
	if u.MaxHoursPerWeek != nil {
		p.MaxHoursPerWeek = u.MaxHoursPerWeek
	}
	if u.MinHoursPerWeek != nil {
		p.MinHoursPerWeek = u.MinHoursPerWeek
	}
	if u.DislikesNights != nil {
		p.DislikesNights = *u.DislikesNights
	}
	if u.PrefersBlockScheduling != nil {
		p.PrefersBlockScheduling = *u.PrefersBlockScheduling
	}
	if u.Timezone != nil {
		p.Timezone = *u.Timezone
	}
}

// UserUpdate is the permitted mutation set for a user record.
type UserUpdate struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *Role   `json:"role"`
}

func (u UserUpdate) Changes() map[string]any {
	ch := map[string]any{}
	if u.Name != nil {
		ch["name"] = *u.Name
	}
	if u.Email != nil {
		ch["email"] = *u.Email
	}
	if u.Role != nil {
		ch["role"] = *u.Role
	}
	return ch
}

// TenantUpdate is the permitted mutation set for the tenant profile.
// Subscription state is only mutated by billing collaborators, never here.
type TenantUpdate struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	BillingEmail *string `json:"billing_email"`
}

func (u TenantUpdate) Changes() map[string]any {
	ch := map[string]any{}
	if u.Name != nil {
		ch["name"] = *u.Name
	}
	if u.Phone != nil {
		ch["phone"] = *u.Phone
	}
	if u.Address != nil {
		ch["address"] = *u.Address
	}
	if u.BillingEmail != nil {
		ch["billing_email"] = *u.BillingEmail
	}
	return ch
}
