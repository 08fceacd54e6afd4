// Package testutil provides an in-process stand-in for the remote sweets
// service so storefront behaviour can be tested end to end over HTTP.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"sweet-shop/internal/model"
)

const fakeSecret = "fake-sweets-secret"

type fakeUser struct {
	id           int64
	username     string
	passwordHash []byte
	role         model.Role
}

// FakeAPI is a chi router mimicking the sweets service. Gates, when set,
// hold the matching response until a value is sent or the gate is closed.
type FakeAPI struct {
	Server *httptest.Server

	mu            sync.Mutex
	users         map[string]fakeUser
	sweets        []model.Sweet
	nextID        int64
	failList      bool
	failCreate    bool
	failPurchase  bool
	listGate      chan struct{}
	purchaseGate  chan struct{}
	purchaseCalls int
	listCalls     int
}

// NewFakeAPI starts a server with an "admin"/"admin123" ADMIN account and a
// "alice"/"alice123" USER account.
func NewFakeAPI(t *testing.T, sweets ...model.Sweet) *FakeAPI {
	t.Helper()

	f := &FakeAPI{users: map[string]fakeUser{}, nextID: 1}
	f.addUser(t, 1, "admin", "admin123", model.RoleAdmin)
	f.addUser(t, 2, "alice", "alice123", model.RoleUser)
	for _, s := range sweets {
		f.sweets = append(f.sweets, s)
		if s.ID >= f.nextID {
			f.nextID = s.ID + 1
		}
	}

	r := chi.NewRouter()
	r.Post("/api/auth/login", f.login)
	r.Group(func(authed chi.Router) {
		authed.Use(f.requireToken)
		authed.Get("/api/sweets", f.list)
		authed.Post("/api/sweets", f.create)
		authed.Post("/api/sweets/{id}/purchase", f.purchase)
	})

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)

	return f
}

func (f *FakeAPI) URL() string {
	return f.Server.URL
}

func (f *FakeAPI) addUser(t *testing.T, id int64, username string, password string, role model.Role) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	f.users[username] = fakeUser{id: id, username: username, passwordHash: hash, role: role}
}

// IssueToken signs a token the way the service does, for tests that need
// one without going through login.
func IssueToken(t *testing.T, id int64, username string, role model.Role) string {
	t.Helper()

	token, err := signToken(id, username, role)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func signToken(id int64, username string, role model.Role) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"role":     string(role),
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
	})
	return token.SignedString([]byte(fakeSecret))
}

func (f *FakeAPI) SetFailList(fail bool) {
	f.mu.Lock()
	f.failList = fail
	f.mu.Unlock()
}

func (f *FakeAPI) SetFailCreate(fail bool) {
	f.mu.Lock()
	f.failCreate = fail
	f.mu.Unlock()
}

func (f *FakeAPI) SetFailPurchase(fail bool) {
	f.mu.Lock()
	f.failPurchase = fail
	f.mu.Unlock()
}

// HoldList makes list requests wait on the returned gate.
func (f *FakeAPI) HoldList() chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	f.listGate = gate
	f.mu.Unlock()
	return gate
}

// HoldPurchases makes purchase requests wait on the returned gate.
func (f *FakeAPI) HoldPurchases() chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	f.purchaseGate = gate
	f.mu.Unlock()
	return gate
}

func (f *FakeAPI) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *FakeAPI) PurchaseCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.purchaseCalls
}

// Sweets returns the service-side inventory.
func (f *FakeAPI) Sweets() []model.Sweet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Sweet(nil), f.sweets...)
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFakeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	f.mu.Lock()
	user, ok := f.users[req.Username]
	f.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(user.passwordHash, []byte(req.Password)) != nil {
		writeFakeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := signToken(user.id, user.username, user.role)
	if err != nil {
		writeFakeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeFakeJSON(w, http.StatusOK, model.LoginResponse{Token: token})
}

type fakeRoleKey struct{}

func (f *FakeAPI) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeFakeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(*jwt.Token) (any, error) {
			return []byte(fakeSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeFakeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		role, _ := claims["role"].(string)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), fakeRoleKey{}, model.Role(role))))
	})
}

func (f *FakeAPI) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	f.mu.Unlock()
	wait(r, gate)

	f.mu.Lock()
	fail := f.failList
	sweets := append([]model.Sweet{}, f.sweets...)
	f.mu.Unlock()

	if fail {
		writeFakeError(w, http.StatusInternalServerError, "inventory unavailable")
		return
	}
	writeFakeJSON(w, http.StatusOK, sweets)
}

func (f *FakeAPI) create(w http.ResponseWriter, r *http.Request) {
	if role, _ := r.Context().Value(fakeRoleKey{}).(model.Role); role != model.RoleAdmin {
		writeFakeError(w, http.StatusForbidden, "admin only")
		return
	}

	var draft model.SweetDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeFakeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		writeFakeError(w, http.StatusInternalServerError, "create failed")
		return
	}

	created := model.Sweet{
		ID:       f.nextID,
		Name:     draft.Name,
		Category: draft.Category,
		Price:    draft.Price,
		Quantity: draft.Quantity,
		ImageURL: draft.ImageURL,
	}
	f.nextID++
	f.sweets = append(f.sweets, created)

	writeFakeJSON(w, http.StatusCreated, created)
}

func (f *FakeAPI) purchase(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFakeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	f.mu.Lock()
	f.purchaseCalls++
	gate := f.purchaseGate
	f.mu.Unlock()
	wait(r, gate)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPurchase {
		writeFakeError(w, http.StatusInternalServerError, "purchase failed")
		return
	}

	for i := range f.sweets {
		if f.sweets[i].ID != id {
			continue
		}
		if f.sweets[i].Quantity <= 0 {
			writeFakeError(w, http.StatusBadRequest, "Out of stock")
			return
		}
		f.sweets[i].Quantity--
		writeFakeJSON(w, http.StatusOK, f.sweets[i])
		return
	}

	writeFakeError(w, http.StatusNotFound, "Sweet not found")
}

func wait(r *http.Request, gate chan struct{}) {
	if gate == nil {
		return
	}
	select {
	case <-gate:
	case <-r.Context().Done():
	}
}

func writeFakeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeFakeError(w http.ResponseWriter, status int, message string) {
	writeFakeJSON(w, status, map[string]string{"message": message})
}
