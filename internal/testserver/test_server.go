// Package testserver runs an in-memory stand-in for the CRM backend:
// JWT-authenticated REST endpoints over in-memory state, close enough
// to the real API for client and store tests.
package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"

	"github.com/owuorviny109/crmsync/internal/crm"
)

const tokenLifetime = time.Hour

type account struct {
	user     crm.User
	password string
}

// TestServer is a fake CRM API over httptest.
type TestServer struct {
	Server *httptest.Server
	secret []byte

	mu              sync.Mutex
	accounts        map[string]*account
	leads           []crm.Lead
	contacts        []crm.Contact
	notes           []crm.Note
	reminders       []crm.Reminder
	correspondences []crm.Correspondence
	audit           map[int64][]crm.AuditLogEntry
	nextID          int64
}

// New starts a fake CRM API and registers its shutdown with t.
func New(t *testing.T) *TestServer {
	t.Helper()

	ts := &TestServer{
		secret:   []byte("testserver-secret"),
		accounts: make(map[string]*account),
		audit:    make(map[int64][]crm.AuditLogEntry),
		nextID:   1,
	}
	ts.Server = httptest.NewServer(ts.router())
	t.Cleanup(ts.Server.Close)
	return ts
}

// URL is the API base URL.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// AddUser registers an account directly, bypassing the register
// endpoint.
func (ts *TestServer) AddUser(username, password string, role crm.Role) crm.User {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	user := crm.User{
		ID:       ts.nextID,
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	ts.nextID++
	ts.accounts[username] = &account{user: user, password: password}
	return user
}

// IssueToken mints a valid access token for an existing user, letting
// tests build authenticated clients without a login round trip.
func (ts *TestServer) IssueToken(username string) string {
	return ts.signToken(username, tokenLifetime)
}

// LeadCount reports how many leads the server holds.
func (ts *TestServer) LeadCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.leads)
}

func (ts *TestServer) router() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/auth/login/", ts.handleLogin)
	r.Post("/api/auth/register/", ts.handleRegister)
	r.Post("/api/auth/token/refresh/", ts.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(ts.authMiddleware)

		r.Get("/api/auth/me/", ts.handleMe)
		r.Patch("/api/auth/me/", ts.handleUpdateMe)

		r.Get("/api/leads/", ts.handleListLeads)
		r.Post("/api/leads/", ts.handleCreateLead)
		r.Get("/api/leads/my_leads/", ts.handleMyLeads)
		r.Get("/api/leads/{id}/", ts.handleGetLead)
		r.Patch("/api/leads/{id}/", ts.handleUpdateLead)
		r.Delete("/api/leads/{id}/", ts.handleDeleteLead)
		r.Get("/api/leads/{id}/audit_log/", ts.handleAuditLog)

		r.Get("/api/contacts/", ts.handleListContacts)
		r.Post("/api/contacts/", ts.handleCreateContact)
		r.Get("/api/contacts/{id}/", ts.handleGetContact)
		r.Patch("/api/contacts/{id}/", ts.handleUpdateContact)
		r.Delete("/api/contacts/{id}/", ts.handleDeleteContact)
		r.Get("/api/contacts/{id}/correspondences/", ts.handleContactCorrespondences)

		r.Get("/api/notes/", ts.handleListNotes)
		r.Post("/api/notes/", ts.handleCreateNote)
		r.Patch("/api/notes/{id}/", ts.handleUpdateNote)
		r.Delete("/api/notes/{id}/", ts.handleDeleteNote)

		r.Get("/api/reminders/", ts.handleListReminders)
		r.Post("/api/reminders/", ts.handleCreateReminder)
		r.Get("/api/reminders/my_reminders/", ts.handleMyReminders)
		r.Get("/api/reminders/overdue/", ts.handleOverdueReminders)
		r.Get("/api/reminders/{id}/", ts.handleGetReminder)
		r.Patch("/api/reminders/{id}/", ts.handleUpdateReminder)
		r.Delete("/api/reminders/{id}/", ts.handleDeleteReminder)

		r.Get("/api/correspondences/", ts.handleListCorrespondences)
		r.Post("/api/correspondences/", ts.handleCreateCorrespondence)
		r.Patch("/api/correspondences/{id}/", ts.handleUpdateCorrespondence)
		r.Delete("/api/correspondences/{id}/", ts.handleDeleteCorrespondence)
	})

	return r
}

// --- auth ---

func (ts *TestServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	ts.mu.Lock()
	acct, ok := ts.accounts[req.Username]
	ts.mu.Unlock()
	if !ok || acct.password != req.Password {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access":  ts.signToken(req.Username, tokenLifetime),
		"refresh": ts.signToken(req.Username, 24*time.Hour),
		"user":    acct.user,
	})
}

func (ts *TestServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string   `json:"username"`
		Email    string   `json:"email"`
		Password string   `json:"password"`
		Role     crm.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}
	if req.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"username": {"This field is required."},
		})
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if _, exists := ts.accounts[req.Username]; exists {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"username": {"A user with that username already exists."},
		})
		return
	}

	role := req.Role
	if role == "" {
		role = crm.RoleAgent
	}
	user := crm.User{
		ID:       ts.nextID,
		Username: req.Username,
		Email:    req.Email,
		Role:     role,
	}
	ts.nextID++
	ts.accounts[req.Username] = &account{user: user, password: req.Password}

	writeJSON(w, http.StatusCreated, user)
}

func (ts *TestServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	username, err := ts.verifyToken(req.Refresh)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access": ts.signToken(username, tokenLifetime),
	})
}

func (ts *TestServer) handleMe(w http.ResponseWriter, r *http.Request) {
	acct := ts.requester(r)
	writeJSON(w, http.StatusOK, acct.user)
}

func (ts *TestServer) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch struct {
		Email     *string `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Phone     *string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	ts.mu.Lock()
	acct := ts.accounts[usernameFrom(r)]
	if patch.Email != nil {
		acct.user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		acct.user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		acct.user.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		acct.user.Phone = patch.Phone
	}
	user := acct.user
	ts.mu.Unlock()

	writeJSON(w, http.StatusOK, user)
}

// --- leads ---

func (ts *TestServer) handleListLeads(w http.ResponseWriter, r *http.Request) {
	ts.mu.Lock()
	results := append([]crm.Lead(nil), ts.leads...)
	ts.mu.Unlock()

	sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(results),
		"next":     nil,
		"previous": nil,
		"results":  results,
	})
}

func (ts *TestServer) handleMyLeads(w http.ResponseWriter, r *http.Request) {
	me := ts.requester(r).user

	ts.mu.Lock()
	results := []crm.Lead{}
	for _, lead := range ts.leads {
		if lead.Owner != nil && lead.Owner.ID == me.ID {
			results = append(results, lead)
		}
	}
	ts.mu.Unlock()

	writeJSON(w, http.StatusOK, results)
}

func (ts *TestServer) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var lead crm.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}
	if lead.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"name": {"This field is required."},
		})
		return
	}

	me := ts.requester(r).user

	ts.mu.Lock()
	lead.ID = ts.nextID
	ts.nextID++
	if lead.Status == "" {
		lead.Status = crm.LeadStatusNew
	}
	owner := me
	lead.Owner = &owner
	lead.CreatedAt = time.Now().UTC()
	lead.UpdatedAt = lead.CreatedAt
	ts.leads = append(ts.leads, lead)
	ts.recordAudit(lead.ID, me, "create")
	ts.mu.Unlock()

	writeJSON(w, http.StatusCreated, lead)
}

func (ts *TestServer) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, lead := range ts.leads {
		if lead.ID == id {
			writeJSON(w, http.StatusOK, lead)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (ts *TestServer) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	me := ts.requester(r).user

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := range ts.leads {
		if ts.leads[i].ID != id {
			continue
		}
		applyPatch(&ts.leads[i], patch)
		ts.leads[i].ID = id
		ts.leads[i].UpdatedAt = time.Now().UTC()
		ts.recordAudit(id, me, "update")
		writeJSON(w, http.StatusOK, ts.leads[i])
		return
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (ts *TestServer) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	me := ts.requester(r).user

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := range ts.leads {
		if ts.leads[i].ID == id {
			ts.leads = append(ts.leads[:i], ts.leads[i+1:]...)
			ts.recordAudit(id, me, "delete")
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (ts *TestServer) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	ts.mu.Lock()
	entries := append([]crm.AuditLogEntry(nil), ts.audit[id]...)
	ts.mu.Unlock()

	writeJSON(w, http.StatusOK, entries)
}

func (ts *TestServer) recordAudit(leadID int64, user crm.User, action string) {
	u := user
	ts.audit[leadID] = append(ts.audit[leadID], crm.AuditLogEntry{
		ID:        ts.nextID,
		User:      &u,
		Action:    action,
		ModelName: "Lead",
		ObjectID:  leadID,
		Timestamp: time.Now().UTC(),
	})
	ts.nextID++
}

// --- contacts ---

func (ts *TestServer) handleListContacts(w http.ResponseWriter, r *http.Request) {
	ts.mu.Lock()
	results := append([]crm.Contact{}, ts.contacts...)
	ts.mu.Unlock()
	writeJSON(w, http.StatusOK, results)
}

func (ts *TestServer) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var contact crm.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	ts.mu.Lock()
	contact.ID = ts.nextID
	ts.nextID++
	contact.CreatedAt = time.Now().UTC()
	contact.UpdatedAt = contact.CreatedAt
	ts.contacts = append(ts.contacts, contact)
	ts.mu.Unlock()

	writeJSON(w, http.StatusCreated, contact)
}

func (ts *TestServer) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, contact := range ts.contacts {
		if contact.ID == id {
			writeJSON(w, http.StatusOK, contact)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (ts *TestServer) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := range ts.contacts {
		if ts.contacts[i].ID != id {
			continue
		}
		applyPatch(&ts.contacts[i], patch)
		ts.contacts[i].ID = id
		ts.contacts[i].UpdatedAt = time.Now().UTC()
		writeJSON(w, http.StatusOK, ts.contacts[i])
		return
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (ts *TestServer) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := range ts.contacts {
		if ts.contacts[i].ID == id {
			ts.contacts = append(ts.contacts[:i], ts.contacts[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (ts *TestServer) handleContactCorrespondences(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	ts.mu.Lock()
	results := []crm.Correspondence{}
	for _, entry := range ts.correspondences {
		if entry.Contact == id {
			results = append(results, entry)
		}
	}
	ts.mu.Unlock()

	writeJSON(w, http.StatusOK, results)
}

// --- notes ---

func (ts *TestServer) handleListNotes(w http.ResponseWriter, r *http.Request) {
	ts.mu.Lock()
	results := append([]crm.Note{}, ts.notes...)
	ts.mu.Unlock()
	writeJSON(w, http.StatusOK, results)
}

func (ts *TestServer) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var note crm.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	me := ts.requester(r).user

	ts.mu.Lock()
	note.ID = ts.nextID
	ts.nextID++
	author := me
	note.Author = &author
	note.CreatedAt = time.Now().UTC()
	note.UpdatedAt = note.CreatedAt
	ts.notes = append(ts.notes, note)
	ts.mu.Unlock()

	writeJSON(w, http.StatusCreated, note)
}

func (ts *TestServer) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := range ts.notes {
		if ts.notes[i].ID != id {
			continue
		}
		applyPatch(&ts.notes[i], patch)
		ts.notes[i].ID = id
		ts.notes[i].UpdatedAt = time.Now().UTC()
		writeJSON(w, http.StatusOK, ts.notes[i])
		return
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (ts *TestServer) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := range ts.notes {
		if ts.notes[i].ID == id {
			ts.notes = append(ts.notes[:i], ts.notes[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

// --- reminders ---

func (ts *TestServer) handleListReminders(w http.ResponseWriter, r *http.Request) {
	ts.mu.Lock()
	results := append([]crm.Reminder{}, ts.reminders...)
	ts.mu.Unlock()
	writeJSON(w, http.StatusOK, results)
}

func (ts *TestServer) handleMyReminders(w http.ResponseWriter, r *http.Request) {
	me := ts.requester(r).user

	ts.mu.Lock()
	results := []crm.Reminder{}
	for _, reminder := range ts.reminders {
		if reminder.User != nil && reminder.User.ID == me.ID {
			results = append(results, reminder)
		}
	}
	ts.mu.Unlock()

	writeJSON(w, http.StatusOK, results)
}

func (ts *TestServer) handleOverdueReminders(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	ts.mu.Lock()
	results := []crm.Reminder{}
	for _, reminder := range ts.reminders {
		if reminder.Status == crm.ReminderPending && reminder.ReminderDate.Before(now) {
			reminder.IsOverdue = true
			results = append(results, reminder)
		}
	}
	ts.mu.Unlock()

	writeJSON(w, http.StatusOK, results)
}

func (ts *TestServer) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var reminder crm.Reminder
	if err := json.NewDecoder(r.Body).Decode(&reminder); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	me := ts.requester(r).user

	ts.mu.Lock()
	reminder.ID = ts.nextID
	ts.nextID++
	owner := me
	reminder.User = &owner
	if reminder.Status == "" {
		reminder.Status = crm.ReminderPending
	}
	reminder.CreatedAt = time.Now().UTC()
	reminder.UpdatedAt = reminder.CreatedAt
	ts.reminders = append(ts.reminders, reminder)
	ts.mu.Unlock()

	writeJSON(w, http.StatusCreated, reminder)
}

func (ts *TestServer) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, reminder := range ts.reminders {
		if reminder.ID == id {
			writeJSON(w, http.StatusOK, reminder)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (ts *TestServer) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := range ts.reminders {
		if ts.reminders[i].ID != id {
			continue
		}
		applyPatch(&ts.reminders[i], patch)
		ts.reminders[i].ID = id
		ts.reminders[i].UpdatedAt = time.Now().UTC()
		writeJSON(w, http.StatusOK, ts.reminders[i])
		return
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (ts *TestServer) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := range ts.reminders {
		if ts.reminders[i].ID == id {
			ts.reminders = append(ts.reminders[:i], ts.reminders[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

// --- correspondences ---

func (ts *TestServer) handleListCorrespondences(w http.ResponseWriter, r *http.Request) {
	ts.mu.Lock()
	results := append([]crm.Correspondence{}, ts.correspondences...)
	ts.mu.Unlock()
	writeJSON(w, http.StatusOK, results)
}

func (ts *TestServer) handleCreateCorrespondence(w http.ResponseWriter, r *http.Request) {
	var entry crm.Correspondence
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	me := ts.requester(r).user

	ts.mu.Lock()
	entry.ID = ts.nextID
	ts.nextID++
	logger := me
	entry.LoggedBy = &logger
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	entry.CreatedAt = time.Now().UTC()
	entry.UpdatedAt = entry.CreatedAt
	ts.correspondences = append(ts.correspondences, entry)
	ts.mu.Unlock()

	writeJSON(w, http.StatusCreated, entry)
}

func (ts *TestServer) handleUpdateCorrespondence(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request.")
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := range ts.correspondences {
		if ts.correspondences[i].ID != id {
			continue
		}
		applyPatch(&ts.correspondences[i], patch)
		ts.correspondences[i].ID = id
		ts.correspondences[i].UpdatedAt = time.Now().UTC()
		writeJSON(w, http.StatusOK, ts.correspondences[i])
		return
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (ts *TestServer) handleDeleteCorrespondence(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := range ts.correspondences {
		if ts.correspondences[i].ID == id {
			ts.correspondences = append(ts.correspondences[:i], ts.correspondences[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

// --- plumbing ---

type usernameKey struct{}

func (ts *TestServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		username, err := ts.verifyToken(token)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}

		ts.mu.Lock()
		_, ok := ts.accounts[username]
		ts.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}

		r = r.WithContext(contextWithUsername(r.Context(), username))
		next.ServeHTTP(w, r)
	})
}

func (ts *TestServer) signToken(username string, lifetime time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		panic(fmt.Sprintf("sign token: %v", err))
	}
	return token
}

func (ts *TestServer) verifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ts.secret, nil
	})
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (ts *TestServer) requester(r *http.Request) *account {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.accounts[usernameFrom(r)]
}

func usernameFrom(r *http.Request) string {
	username, _ := r.Context().Value(usernameKey{}).(string)
	return username
}

func contextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey{}, username)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

// applyPatch merges raw JSON fields into an existing record.
func applyPatch[T any](target *T, patch map[string]json.RawMessage) {
	merged, err := json.Marshal(patch)
	if err != nil {
		return
	}
	_ = json.Unmarshal(merged, target)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
