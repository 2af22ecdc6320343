package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"matchport/internal/account"
	accounthandler "matchport/internal/account/handler"
	accountservice "matchport/internal/account/service"
	accountstore "matchport/internal/account/store"
	adminhandler "matchport/internal/admin/handler"
	"matchport/internal/board"
	boardhandler "matchport/internal/board/handler"
	"matchport/internal/catalog"
	"matchport/internal/history"
	httpapi "matchport/internal/http"
	"matchport/internal/jwttoken"
	"matchport/internal/notify"
	notifyhandler "matchport/internal/notify/handler"
	"matchport/internal/profile"
	profilehandler "matchport/internal/profile/handler"
	"matchport/internal/request"
	requesthandler "matchport/internal/request/handler"
	requestservice "matchport/internal/request/service"
	id "matchport/pkg/domain"
	"matchport/pkg/platform/tx"
)

// server is a full stack on in-memory stores, exercised through the router
// exactly as a client would.
type server struct {
	handler  http.Handler
	tokens   *jwttoken.Service
	accounts *accountstore.InMemory
}

func newServer(t *testing.T) *server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accounts := accountstore.NewInMemory()
	profiles := profile.NewInMemoryStore()
	catalogs := catalog.NewInMemoryStore()
	requests := request.NewInMemoryStore()
	notes := notify.NewInMemoryStore()
	runner := tx.NewMemoryRunner()

	require.NoError(t, catalog.Seed(context.Background(), catalogs))

	tokens := jwttoken.NewService("router-test-key", "matchport-test", time.Hour)
	dispatcher := notify.NewDispatcher(notes, logger, nil)
	ledger := history.NewLedger(history.NewInMemoryStore())

	accountSvc := accountservice.New(accounts, tokens, dispatcher, runner, logger, nil)
	profileSvc := profile.NewService(profiles, accounts, nil, runner, logger)
	requestSvc := requestservice.New(requests, accounts, profiles, catalogs, ledger, dispatcher, runner, logger, nil)
	boardSvc := board.New(requests, profiles, ledger, nil, logger)
	inboxSvc := notify.NewService(notes)

	handler := httpapi.NewRouter(httpapi.Deps{
		Accounts:      accounthandler.New(accountSvc, logger),
		Requests:      requesthandler.New(requestSvc, logger),
		Board:         boardhandler.New(boardSvc, catalogs, logger),
		Profiles:      profilehandler.New(profileSvc, logger),
		Notifications: notifyhandler.New(inboxSvc, logger),
		Admin:         adminhandler.New(accountSvc, requestSvc, boardSvc, logger),
		Auth:          tokens,
		Logger:        logger,
	})

	return &server{handler: handler, tokens: tokens, accounts: accounts}
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

// seedAdmin inserts a vetted admin directly; registration only accepts cbo
// and donor roles.
func (s *server) seedAdmin(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	a := &account.Account{
		ID:           id.NewAccountID(),
		Email:        "admin@matchport.test",
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         account.RoleAdmin,
		IsVetted:     true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.accounts.Create(context.Background(), a))
	token, err := s.tokens.GenerateAccessToken(a.ID, string(account.RoleAdmin))
	require.NoError(t, err)
	return token
}

func (s *server) register(t *testing.T, email, role string) map[string]any {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    email,
		"username": email,
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[map[string]any](t, rr)
}

func (s *server) login(t *testing.T, email string) string {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode[map[string]any](t, rr)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)

	created := s.register(t, "cbo@example.org", "cbo")
	assert.Equal(t, false, created["is_vetted"], "new CBOs start unvetted")

	token := s.login(t, "cbo@example.org")

	rr := s.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[map[string]any](t, rr)
	assert.Equal(t, "cbo@example.org", me["email"])

	rr = s.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "cbo@example.org",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequestLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)
	adminToken := s.seedAdmin(t)

	cbo := s.register(t, "cbo@example.org", "cbo")
	cboToken := s.login(t, "cbo@example.org")

	// Unvetted CBOs cannot post requests.
	rr := s.do(t, http.MethodPost, "/api/requests", cboToken, map[string]any{
		"cause_area_id": id.NewCategoryID().String(),
		"description":   "Laptops for after-school program",
		"amount_cents":  50000,
		"urgency":       "high",
		"zipcode":       "64110",
	})
	require.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, "/api/admin/accounts/"+cbo["id"].(string)+"/vet", adminToken,
		map[string]any{"vetted": true, "note": "501c3 verified"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPut, "/api/profile/organization", cboToken, map[string]any{
		"name":    "Northside Community Center",
		"mission": "Bridging the digital divide",
		"email":   "org@example.org",
		"zipcode": "64110",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/api/cause-areas", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	causeAreas := decode[[]map[string]any](t, rr)
	require.NotEmpty(t, causeAreas)
	causeAreaID := causeAreas[0]["id"].(string)

	rr = s.do(t, http.MethodPost, "/api/requests", cboToken, map[string]any{
		"cause_area_id": causeAreaID,
		"description":   "Laptops for after-school program",
		"amount_cents":  50000,
		"urgency":       "high",
		"zipcode":       "64110",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[map[string]any](t, rr)
	requestID := created["id"].(string)
	assert.Equal(t, "open", created["status"])
	assert.Equal(t, "500.00", created["amount"])

	// The open request is publicly visible.
	rr = s.do(t, http.MethodGet, "/api/requests", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[map[string]any](t, rr)
	assert.EqualValues(t, 1, page["total"])

	s.register(t, "donor@example.org", "donor")
	donorToken := s.login(t, "donor@example.org")

	rr = s.do(t, http.MethodPost, "/api/claim/"+requestID, donorToken,
		map[string]any{"donor_note": "Happy to help"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	claimed := decode[map[string]any](t, rr)
	assert.Equal(t, true, claimed["success"])
	assert.NotEmpty(t, claimed["claimed_at"])

	// A second donor claiming the same request gets a conflict.
	s.register(t, "donor2@example.org", "donor")
	donor2Token := s.login(t, "donor2@example.org")
	rr = s.do(t, http.MethodPost, "/api/claim/"+requestID, donor2Token, map[string]any{})
	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, "/api/fulfill/"+requestID, donorToken,
		map[string]any{"fulfillment_type": "monetary", "donor_notes": "Sent via check"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	fulfilled := decode[map[string]any](t, rr)
	assert.Equal(t, true, fulfilled["success"])
	assert.NotEmpty(t, fulfilled["fulfilled_at"])

	// Public detail page shows the final state and the full timeline.
	rr = s.do(t, http.MethodGet, "/api/requests/"+requestID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decode[map[string]any](t, rr)
	assert.Equal(t, "fulfilled", detail["request"].(map[string]any)["status"])
	timeline := detail["timeline"].([]any)
	require.Len(t, timeline, 3)

	// Both parties were notified along the way.
	rr = s.do(t, http.MethodGet, "/api/notifications", donorToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	inbox := decode[[]map[string]any](t, rr)
	assert.NotEmpty(t, inbox)
}

func TestAdminModerationOverHTTP(t *testing.T) {
	s := newServer(t)
	adminToken := s.seedAdmin(t)

	cbo := s.register(t, "cbo@example.org", "cbo")
	cboToken := s.login(t, "cbo@example.org")
	s.do(t, http.MethodPost, "/api/admin/accounts/"+cbo["id"].(string)+"/vet", adminToken,
		map[string]any{"vetted": true})
	s.do(t, http.MethodPut, "/api/profile/organization", cboToken, map[string]any{
		"name":    "Northside Community Center",
		"mission": "Bridging the digital divide",
		"email":   "org@example.org",
		"zipcode": "64110",
	})

	rr := s.do(t, http.MethodGet, "/api/cause-areas", "", nil)
	causeAreaID := decode[[]map[string]any](t, rr)[0]["id"].(string)

	rr = s.do(t, http.MethodPost, "/api/requests", cboToken, map[string]any{
		"cause_area_id": causeAreaID,
		"description":   "Bus passes for job seekers",
		"amount_cents":  12500,
		"urgency":       "medium",
		"zipcode":       "64110",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	requestID := decode[map[string]any](t, rr)["id"].(string)

	// Non-admins are rejected from the moderation surface.
	rr = s.do(t, http.MethodPost, "/api/admin/requests/bulk", cboToken, map[string]any{
		"action": "deny", "ids": []string{requestID}, "reason": "spam",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/admin/requests/"+requestID+"/deny", adminToken,
		map[string]any{"reason": "duplicate submission"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	denied := decode[map[string]any](t, rr)
	assert.Equal(t, "denied", denied["status"])
	assert.Equal(t, "duplicate submission", denied["denial_reason"])

	// Denied requests drop off the public board.
	rr = s.do(t, http.MethodGet, "/api/requests", "", nil)
	page := decode[map[string]any](t, rr)
	assert.EqualValues(t, 0, page["total"])

	rr = s.do(t, http.MethodPost, "/api/admin/requests/"+requestID+"/approve", adminToken, map[string]any{})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	approved := decode[map[string]any](t, rr)
	assert.Equal(t, "open", approved["status"])

	rr = s.do(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	dashboard := decode[map[string]any](t, rr)
	assert.EqualValues(t, 1, dashboard["open"])
}

func TestHealthz(t *testing.T) {
	s := newServer(t)
	rr := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
