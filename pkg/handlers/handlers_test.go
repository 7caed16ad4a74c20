package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/easishift/clinic-scheduler-go/pkg/auth"
	"github.com/easishift/clinic-scheduler-go/pkg/database"
	"github.com/easishift/clinic-scheduler-go/pkg/handlers"
	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tenant models.Tenant
	admin  models.User
	nurse  models.User
}

func setupEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	tenant := models.Tenant{Name: "Clinic", Email: "clinic@example.com", SeatLimit: 10}
	require.NoError(t, db.Create(&tenant).Error)

	admin := models.User{TenantID: tenant.ID, Name: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	nurse := models.User{TenantID: tenant.ID, Name: "Alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleNurse}
	require.NoError(t, db.Create(&nurse).Error)

	h := handlers.NewHandler(db, nil)
	router := gin.New()
	h.Routes(router)

	return &testEnv{db: db, router: router, tenant: tenant, admin: admin, nurse: nurse}
}

func (e *testEnv) tokenFor(t *testing.T, u models.User) string {
	token, err := auth.CreateToken(&u)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func shiftAt(day, startHour, endHour int) map[string]any {
	return map[string]any{
		"start_time": time.Date(2025, 6, day, startHour, 0, 0, 0, time.UTC).Format(time.RFC3339),
		"end_time":   time.Date(2025, 6, day, endHour, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}
}

func TestSchedules_RequireAuth(t *testing.T) {
	env := setupEnv(t)

	w := env.request(t, http.MethodGet, "/api/v1/schedules", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/schedules", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateSchedule_ConflictRejected(t *testing.T) {
	env := setupEnv(t)
	token := env.tokenFor(t, env.admin)

	body := shiftAt(2, 8, 16)
	body["staff_id"] = env.nurse.ID
	body["role"] = "nurse"

	w := env.request(t, http.MethodPost, "/api/v1/schedules", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Overlapping window for the same nurse must be rejected.
	overlap := shiftAt(2, 12, 20)
	overlap["staff_id"] = env.nurse.ID
	overlap["role"] = "nurse"

	w = env.request(t, http.MethodPost, "/api/v1/schedules", token, overlap)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var count int64
	env.db.Model(&models.Shift{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// Back to back is fine.
	adjacent := shiftAt(2, 16, 20)
	adjacent["staff_id"] = env.nurse.ID
	adjacent["role"] = "nurse"

	w = env.request(t, http.MethodPost, "/api/v1/schedules", token, adjacent)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCreateSchedule_AdminOnly(t *testing.T) {
	env := setupEnv(t)
	token := env.tokenFor(t, env.nurse)

	body := shiftAt(2, 8, 16)
	body["staff_id"] = env.nurse.ID
	body["role"] = "nurse"

	w := env.request(t, http.MethodPost, "/api/v1/schedules", token, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateSchedule_RejectsUnknownFields(t *testing.T) {
	env := setupEnv(t)
	token := env.tokenFor(t, env.admin)

	shift := models.Shift{
		TenantID: env.tenant.ID, StaffID: env.nurse.ID, Role: models.RoleNurse,
		StartTime: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC),
		Status:    models.ShiftScheduled,
	}
	require.NoError(t, env.db.Create(&shift).Error)

	path := fmt.Sprintf("/api/v1/schedules/%d", shift.ID)

	w := env.request(t, http.MethodPut, path, token, map[string]any{"tenant_id": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = env.request(t, http.MethodPut, path, token, map[string]any{"notes": "swapped with Bob"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Shift
	require.NoError(t, env.db.First(&got, shift.ID).Error)
	assert.Equal(t, "swapped with Bob", got.Notes)
	assert.Equal(t, env.tenant.ID, got.TenantID)
}

func TestUpdateSchedule_ConflictOnReschedule(t *testing.T) {
	env := setupEnv(t)
	token := env.tokenFor(t, env.admin)

	morning := models.Shift{
		TenantID: env.tenant.ID, StaffID: env.nurse.ID, Role: models.RoleNurse,
		StartTime: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		Status:    models.ShiftScheduled,
	}
	evening := models.Shift{
		TenantID: env.tenant.ID, StaffID: env.nurse.ID, Role: models.RoleNurse,
		StartTime: time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC),
		Status:    models.ShiftScheduled,
	}
	require.NoError(t, env.db.Create(&morning).Error)
	require.NoError(t, env.db.Create(&evening).Error)

	// Moving the evening shift onto the morning one must conflict.
	w := env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/schedules/%d", evening.ID), token, map[string]any{
		"start_time": morning.StartTime.Format(time.RFC3339),
		"end_time":   morning.EndTime.Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// Updating a shift's own window in place is not a self-conflict.
	w = env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/schedules/%d", evening.ID), token, map[string]any{
		"end_time": time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdateSchedule_RejectsUnknownStatus(t *testing.T) {
	env := setupEnv(t)
	token := env.tokenFor(t, env.admin)

	shift := models.Shift{
		TenantID: env.tenant.ID, StaffID: env.nurse.ID, Role: models.RoleNurse,
		StartTime: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC),
		Status:    models.ShiftScheduled,
	}
	require.NoError(t, env.db.Create(&shift).Error)

	path := fmt.Sprintf("/api/v1/schedules/%d", shift.ID)

	w := env.request(t, http.MethodPut, path, token, map[string]any{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var got models.Shift
	require.NoError(t, env.db.First(&got, shift.ID).Error)
	assert.Equal(t, models.ShiftScheduled, got.Status)

	w = env.request(t, http.MethodPut, path, token, map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, env.db.First(&got, shift.ID).Error)
	assert.Equal(t, models.ShiftCancelled, got.Status)
}

func TestCreateCoverage_RequiredCountDefaults(t *testing.T) {
	env := setupEnv(t)
	token := env.tokenFor(t, env.admin)

	base := map[string]any{
		"date":       "2025-06-02T00:00:00Z",
		"role":       "nurse",
		"start_time": "2025-06-02T08:00:00Z",
		"end_time":   "2025-06-02T16:00:00Z",
	}

	// Absent required_count defaults to 1.
	w := env.request(t, http.MethodPost, "/api/v1/coverage", token, base)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Coverage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 1, created.RequiredCount)

	// An explicit zero stays zero.
	zero := map[string]any{
		"date":           "2025-06-03T00:00:00Z",
		"role":           "nurse",
		"start_time":     "2025-06-03T08:00:00Z",
		"end_time":       "2025-06-03T16:00:00Z",
		"required_count": 0,
	}
	w = env.request(t, http.MethodPost, "/api/v1/coverage", token, zero)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 0, created.RequiredCount)

	zero["required_count"] = -1
	w = env.request(t, http.MethodPost, "/api/v1/coverage", token, zero)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestUpdateCoverage_RejectsInvertedInterval(t *testing.T) {
	env := setupEnv(t)
	token := env.tokenFor(t, env.admin)

	cov := models.Coverage{
		TenantID:      env.tenant.ID,
		Date:          time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Role:          models.RoleNurse,
		StartTime:     time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC),
		RequiredCount: 2,
	}
	require.NoError(t, env.db.Create(&cov).Error)

	path := fmt.Sprintf("/api/v1/coverage/%d", cov.ID)

	// end_time alone cannot land before the existing start.
	w := env.request(t, http.MethodPut, path, token, map[string]any{
		"end_time": "2025-06-02T06:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// start_time alone cannot land after the existing end.
	w = env.request(t, http.MethodPut, path, token, map[string]any{
		"start_time": "2025-06-02T17:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var got models.Coverage
	require.NoError(t, env.db.First(&got, cov.ID).Error)
	assert.True(t, got.StartTime.Equal(cov.StartTime))
	assert.True(t, got.EndTime.Equal(cov.EndTime))

	// A consistent merged window is accepted.
	w = env.request(t, http.MethodPut, path, token, map[string]any{
		"end_time": "2025-06-02T18:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, env.db.First(&got, cov.ID).Error)
	assert.True(t, got.EndTime.Equal(time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)))

	w = env.request(t, http.MethodPut, path, token, map[string]any{"required_count": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestAutoGenerateEndpoint(t *testing.T) {
	env := setupEnv(t)
	token := env.tokenFor(t, env.admin)

	cov := models.Coverage{
		TenantID:      env.tenant.ID,
		Date:          time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Role:          models.RoleNurse,
		StartTime:     time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC),
		RequiredCount: 1,
	}
	require.NoError(t, env.db.Create(&cov).Error)

	w := env.request(t, http.MethodPost, "/api/v1/schedules/auto-generate", token, map[string]any{
		"coverage_ids": []uint{cov.ID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		GeneratedCount int            `json:"generated_count"`
		Schedules      []models.Shift `json:"schedules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.GeneratedCount)
	assert.Equal(t, env.nurse.ID, resp.Schedules[0].StaffID)
	assert.True(t, resp.Schedules[0].AutoGenerated)

	// Empty selection is a client error.
	w = env.request(t, http.MethodPost, "/api/v1/schedules/auto-generate", token, map[string]any{
		"coverage_ids": []uint{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown coverage ids are a 404.
	w = env.request(t, http.MethodPost, "/api/v1/schedules/auto-generate", token, map[string]any{
		"coverage_ids": []uint{9999},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSignupAndLogin(t *testing.T) {
	env := setupEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"name":       "New Clinic",
		"admin_name": "Owner",
		"email":      "owner@newclinic.example.com",
		"password":   "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var signup struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, models.RoleAdmin, signup.User.Role)

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "owner@newclinic.example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "owner@newclinic.example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTenantScoping(t *testing.T) {
	env := setupEnv(t)

	other := models.Tenant{Name: "Other", Email: "other@example.com"}
	require.NoError(t, env.db.Create(&other).Error)
	outsider := models.User{TenantID: other.ID, Name: "Eve", Email: "eve@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, env.db.Create(&outsider).Error)

	shift := models.Shift{
		TenantID: env.tenant.ID, StaffID: env.nurse.ID, Role: models.RoleNurse,
		StartTime: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC),
		Status:    models.ShiftScheduled,
	}
	require.NoError(t, env.db.Create(&shift).Error)

	token := env.tokenFor(t, outsider)
	w := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/schedules/%d", shift.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
