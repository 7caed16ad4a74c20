package models

import (
	"time"
)

// Role classifies a user within a tenant. Admins manage the clinic;
// every other role can be scheduled against coverage requirements.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RoleReceptionist Role = "receptionist"
	RoleBilling      Role = "billing"
	RoleStaff        Role = "staff"
	RoleOther        Role = "other"
)

// SchedulableRoles are the roles a coverage requirement may ask for.
var SchedulableRoles = []Role{
	RoleDoctor, RoleNurse, RoleReceptionist, RoleBilling, RoleStaff, RoleOther,
}

// Valid reports whether r is a known role, including admin.
func (r Role) Valid() bool {
	if r == RoleAdmin {
		return true
	}
	return r.Schedulable()
}

// Schedulable reports whether r is eligible for coverage assignment.
func (r Role) Schedulable() bool {
	for _, s := range SchedulableRoles {
		if r == s {
			return true
		}
	}
	return false
}

// ShiftStatus is the lifecycle state of a shift.
type ShiftStatus string

const (
	ShiftScheduled ShiftStatus = "scheduled"
	ShiftCompleted ShiftStatus = "completed"
	ShiftCancelled ShiftStatus = "cancelled"
)

// Valid reports whether s is a known shift status.
func (s ShiftStatus) Valid() bool {
	return s == ShiftScheduled || s == ShiftCompleted || s == ShiftCancelled
}

// Terminal shifts no longer block conflicts or count toward workload.
func (s ShiftStatus) Terminal() bool {
	return s == ShiftCompleted || s == ShiftCancelled
}

// TerminalShiftStatuses is the exclusion list used by conflict, availability
// and workload queries.
var TerminalShiftStatuses = []ShiftStatus{ShiftCompleted, ShiftCancelled}

// TimeOffStatus is the review state of a time-off request. Only approved
// requests block scheduling.
type TimeOffStatus string

const (
	TimeOffPending  TimeOffStatus = "pending"
	TimeOffApproved TimeOffStatus = "approved"
	TimeOffDenied   TimeOffStatus = "denied"
)

// SubscriptionStatus tracks the tenant's billing state.
type SubscriptionStatus string

const (
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Tenant is a clinic. It is the isolation boundary: every other row carries
// a TenantID and every query is scoped to one tenant.
type Tenant struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"unique;not null" json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`

	// Seat = a user with a login. Signup creates the admin, hence default 1.
	SeatLimit          int                `gorm:"default:1" json:"seat_limit"`
	PlanKey            string             `json:"plan_key,omitempty"`
	SubscriptionStatus SubscriptionStatus `gorm:"default:inactive;index" json:"subscription_status"`
	BillingEmail       string             `json:"billing_email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a staff member (or admin) belonging to a tenant.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	TenantID     uint   `gorm:"index;not null" json:"tenant_id"`
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"index;default:staff" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Coverage is a staffing requirement: RequiredCount staff of Role during
// [StartTime, EndTime) on Date. Date is always stored as UTC midnight so
// requirements on the same logical day compare equal.
type Coverage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      uint      `gorm:"uniqueIndex:idx_coverage_slot;index;not null" json:"tenant_id"`
	Date          time.Time `gorm:"uniqueIndex:idx_coverage_slot;index;not null" json:"date"`
	Role          Role      `gorm:"uniqueIndex:idx_coverage_slot;index;not null" json:"role"`
	StartTime     time.Time `gorm:"uniqueIndex:idx_coverage_slot;not null" json:"start_time"`
	EndTime       time.Time `gorm:"uniqueIndex:idx_coverage_slot;not null" json:"end_time"`
	RequiredCount int       `gorm:"default:1" json:"required_count"`
	Note          string    `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Shift assigns one staff member to one time window.
type Shift struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	TenantID  uint        `gorm:"index;not null" json:"tenant_id"`
	StaffID   uint        `gorm:"index;not null" json:"staff_id"`
	Role      Role        `gorm:"index;not null" json:"role"`
	StartTime time.Time   `gorm:"index;not null" json:"start_time"`
	EndTime   time.Time   `gorm:"index;not null" json:"end_time"`
	Status    ShiftStatus `gorm:"default:scheduled" json:"status"`
	Notes     string      `json:"notes,omitempty"`
	Timezone  string      `gorm:"default:UTC" json:"timezone"`

	// Audit trail: who created the shift and whether the allocator did.
	AutoGenerated bool       `json:"auto_generated"`
	CreatedByID   uint       `json:"created_by_id,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimeOff is a staff absence request. Approved requests gate availability.
type TimeOff struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	TenantID  uint          `gorm:"index;not null" json:"tenant_id"`
	StaffID   uint          `gorm:"index;not null" json:"staff_id"`
	StartTime time.Time     `gorm:"not null" json:"start_time"`
	EndTime   time.Time     `gorm:"not null" json:"end_time"`
	Reason    string        `json:"reason,omitempty"`
	Status    TimeOffStatus `gorm:"default:pending;index" json:"status"`

	ReviewedByID *uint      `json:"reviewed_by_id,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preferences holds per-staff scheduling preferences. Only
// UnavailableDaysOfWeek is a hard constraint; the rest are advisory and the
// allocator does not enforce them.
type Preferences struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"uniqueIndex:idx_prefs_staff;not null" json:"tenant_id"`
	StaffID  uint `gorm:"uniqueIndex:idx_prefs_staff;not null" json:"staff_id"`

	// Weekday numbers, 0 = Sunday .. 6 = Saturday.
	PreferredDaysOfWeek   []int `gorm:"serializer:json" json:"preferred_days_of_week"`
	UnavailableDaysOfWeek []int `gorm:"serializer:json" json:"unavailable_days_of_week"`

	PreferredShiftStart string `json:"preferred_shift_start,omitempty"` // "08:00"
	PreferredShiftEnd   string `json:"preferred_shift_end,omitempty"`   // "17:00"

	MaxHoursPerWeek *float64 `json:"max_hours_per_week,omitempty"`
	MinHoursPerWeek *float64 `json:"min_hours_per_week,omitempty"`

	DislikesNights         bool   `json:"dislikes_nights"`
	PrefersBlockScheduling bool   `json:"prefers_block_scheduling"`
	Timezone               string `gorm:"default:UTC" json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeliveryStatus tracks outbound notification delivery for a message.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Message is internal tenant messaging between two users.
type Message struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	TenantID   uint   `gorm:"index;not null" json:"tenant_id"`
	SenderID   uint   `gorm:"index;not null" json:"sender_id"`
	ReceiverID uint   `gorm:"index;not null" json:"receiver_id"`
	Subject    string `gorm:"not null" json:"subject"`
	Body       string `gorm:"not null" json:"body"`
	Read       bool   `gorm:"default:false" json:"read"`

	DeliveryStatus DeliveryStatus `gorm:"default:pending;index" json:"delivery_status"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
