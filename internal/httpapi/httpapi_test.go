package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unburdy/scheduler-module/internal/clockport"
	"github.com/unburdy/scheduler-module/internal/config"
	"github.com/unburdy/scheduler-module/internal/domain"
	"github.com/unburdy/scheduler-module/internal/logging"
	"github.com/unburdy/scheduler-module/internal/reminder"
	"github.com/unburdy/scheduler-module/internal/store/memory"
)

const testSecretCode = "test-secret-code"

func testEngine(t *testing.T) (*gin.Engine, *memory.Store, *Deps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memory.New()
	validator, err := NewRequestValidator()
	require.NoError(t, err)
	deps := &Deps{
		Stores: Stores{
			Accounts: s.Accounts, Users: s.Users, Calendars: s.Calendars, Events: s.Events,
			Schedules: s.Schedules, Services: s.Services, ServiceUsers: s.ServiceUsers,
			Reservations: s.Reservations, Cascade: s,
		},
		Expander: &reminder.Expander{
			Jobs: s.Jobs, Reminders: s.Reminders, Events: s.Events,
			Clock: clockport.Real{}, Horizon: time.Hour, MaxWindow: 24 * time.Hour,
			Logger: logging.New(),
		},
		Clock:                       clockport.Real{},
		Logger:                      logging.New(),
		Validator:                   validator,
		CreateSecretCode:            testSecretCode,
		EventInstancesQueryDuration: 90 * 24 * time.Hour,
		BookingSlotsQueryDuration:   30 * 24 * time.Hour,
	}
	rl := config.RateLimitConfig{Enabled: false, Requests: 100, Duration: time.Minute}
	return NewEngine(deps, rl), s, deps
}

func doRequest(r *gin.Engine, method, path, apiKey string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTestAccount(t *testing.T, r *gin.Engine) accountDTO {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/v1/account", "", createAccountRequest{Code: testSecretCode})
	require.Equal(t, http.StatusCreated, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var acc accountDTO
	require.NoError(t, json.Unmarshal(raw, &acc))
	return acc
}

func TestCreateAccount_RejectsWrongSecretCode(t *testing.T) {
	r, _, _ := testEngine(t)
	w := doRequest(r, http.MethodPost, "/api/v1/account", "", createAccountRequest{Code: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAccount_Succeeds(t *testing.T) {
	r, _, _ := testEngine(t)
	acc := createTestAccount(t, r)
	assert.NotEmpty(t, acc.ID)
	assert.NotEmpty(t, acc.SecretAPIKey)
}

func TestAdminAuth_RejectsMissingAndWrongKey(t *testing.T) {
	r, _, _ := testEngine(t)
	createTestAccount(t, r)

	w := doRequest(r, http.MethodGet, "/api/v1/account", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/account", "not-a-real-key", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuth_GetAccount_Succeeds(t *testing.T) {
	r, _, _ := testEngine(t)
	acc := createTestAccount(t, r)

	w := doRequest(r, http.MethodGet, "/api/v1/account", acc.SecretAPIKey, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
}

func TestUserLifecycle(t *testing.T) {
	r, _, _ := testEngine(t)
	acc := createTestAccount(t, r)

	w := doRequest(r, http.MethodPost, "/api/v1/user", acc.SecretAPIKey, createUserRequest{Metadata: map[string]string{"team": "sales"}})
	require.Equal(t, http.StatusCreated, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	raw, _ := json.Marshal(env.Data)
	var u userDTO
	require.NoError(t, json.Unmarshal(raw, &u))
	assert.Equal(t, acc.ID, u.AccountID)

	w = doRequest(r, http.MethodGet, "/api/v1/user/"+string(u.ID), acc.SecretAPIKey, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, "/api/v1/user/"+string(u.ID), acc.SecretAPIKey, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/user/"+string(u.ID), acc.SecretAPIKey, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserScopedToOwningAccount(t *testing.T) {
	r, _, _ := testEngine(t)
	accA := createTestAccount(t, r)
	accB := createTestAccount(t, r)

	w := doRequest(r, http.MethodPost, "/api/v1/user", accA.SecretAPIKey, createUserRequest{})
	require.Equal(t, http.StatusCreated, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	raw, _ := json.Marshal(env.Data)
	var u userDTO
	require.NoError(t, json.Unmarshal(raw, &u))

	w = doRequest(r, http.MethodGet, "/api/v1/user/"+string(u.ID), accB.SecretAPIKey, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalendarAndEventLifecycle(t *testing.T) {
	r, _, _ := testEngine(t)
	acc := createTestAccount(t, r)

	w := doRequest(r, http.MethodPost, "/api/v1/user", acc.SecretAPIKey, createUserRequest{})
	require.Equal(t, http.StatusCreated, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	raw, _ := json.Marshal(env.Data)
	var u userDTO
	require.NoError(t, json.Unmarshal(raw, &u))

	w = doRequest(r, http.MethodPost, "/api/v1/calendar", acc.SecretAPIKey, createCalendarRequest{
		UserID: u.ID, WeekStart: 0, Timezone: "UTC",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	env = envelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	raw, _ = json.Marshal(env.Data)
	var cal calendarDTO
	require.NoError(t, json.Unmarshal(raw, &cal))
	assert.Equal(t, "UTC", cal.Timezone)

	w = doRequest(r, http.MethodPost, "/api/v1/calendar/"+string(cal.ID)+"/event", acc.SecretAPIKey, createEventRequest{
		CalendarID: cal.ID,
		StartTs:    1_000_000,
		DurationMs: 3_600_000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	env = envelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	raw, _ = json.Marshal(env.Data)
	var ev eventDTO
	require.NoError(t, json.Unmarshal(raw, &ev))

	w = doRequest(r, http.MethodGet, "/api/v1/event/"+string(ev.ID), acc.SecretAPIKey, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, "/api/v1/calendar/"+string(cal.ID), acc.SecretAPIKey, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// deleting the calendar cascades to its events (lifecycle & ownership note).
	w = doRequest(r, http.MethodGet, "/api/v1/event/"+string(ev.ID), acc.SecretAPIKey, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicAccount_RequiresKnownAccountHeader(t *testing.T) {
	r, _, _ := testEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/service/"+string(domain.NewID())+"/booking-slots", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/public/service/"+string(domain.NewID())+"/booking-slots", nil)
	req.Header.Set("nettu-account", "not-a-valid-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPolicy_AllowsAndRejectsRoutes(t *testing.T) {
	allowAll := (*domain.Policy)(nil)
	assert.True(t, allowAll.Allows("calendar:read"))

	restricted := &domain.Policy{Allow: []string{"calendar:read"}}
	assert.True(t, restricted.Allows("calendar:read"))
	assert.False(t, restricted.Allows("event:read"))

	rejecting := &domain.Policy{Reject: []string{"booking:write"}}
	assert.True(t, rejecting.Allows("booking:read"))
	assert.False(t, rejecting.Allows("booking:write"))
}

func TestAccountWebhookRoundTrip(t *testing.T) {
	r, _, _ := testEngine(t)
	acc := createTestAccount(t, r)

	w := doRequest(r, http.MethodPut, "/api/v1/account/webhook", acc.SecretAPIKey, setWebhookRequest{URL: "https://example.com/hooks/reminders"})
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	raw, _ := json.Marshal(env.Data)
	var updated accountDTO
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, "https://example.com/hooks/reminders", updated.WebhookURL)
}

func TestCreateEvent_RejectsRecurrenceFailingSchema(t *testing.T) {
	r, _, _ := testEngine(t)
	acc := createTestAccount(t, r)

	w := doRequest(r, http.MethodPost, "/api/v1/user", acc.SecretAPIKey, createUserRequest{})
	require.Equal(t, http.StatusCreated, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	raw, _ := json.Marshal(env.Data)
	var u userDTO
	require.NoError(t, json.Unmarshal(raw, &u))

	w = doRequest(r, http.MethodPost, "/api/v1/calendar", acc.SecretAPIKey, createCalendarRequest{
		UserID: u.ID, WeekStart: 0, Timezone: "UTC",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	env = envelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	raw, _ = json.Marshal(env.Data)
	var cal calendarDTO
	require.NoError(t, json.Unmarshal(raw, &cal))

	// "fortnightly" isn't one of the four frequencies the schema contract
	// enumerates (§11), so this must fail schema validation before it ever
	// reaches domain.NewCalendarEvent.
	body := map[string]interface{}{
		"calendarId": cal.ID,
		"startTs":    1_000_000,
		"durationMs": 3_600_000,
		"recurrence": map[string]interface{}{
			"frequency": "fortnightly",
			"interval":  1,
			"weekStart": 0,
		},
	}
	w = doRequest(r, http.MethodPost, "/api/v1/calendar/"+string(cal.ID)+"/event", acc.SecretAPIKey, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUser_RejectsMetadataFailingSchema(t *testing.T) {
	r, _, _ := testEngine(t)
	acc := createTestAccount(t, r)

	// a non-string metadata value violates the bundled schema's
	// additionalProperties contract.
	body := map[string]interface{}{
		"metadata": map[string]interface{}{"count": 5},
	}
	w := doRequest(r, http.MethodPost, "/api/v1/user", acc.SecretAPIKey, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
