// Package apifake runs an in-process imitation of the Trekker API for tests.
package apifake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenLifetime = 5 * time.Minute

type profile struct {
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Birthday       string `json:"birthday"`
	Gender         string `json:"gender"`
	ProfilePicture string `json:"profile_picture"`
}

type user struct {
	ID           int     `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Profile      profile `json:"profile"`
	passwordHash []byte
}

// Server is a fake Trekker backend whose API lives under APIURL().
type Server struct {
	srv *httptest.Server

	requireVerification bool
	failLogout          bool
	secret              []byte
	users               map[string]*user
	nextID              int
	refresh             map[string]int
	blacklisted         map[string]bool
	requests            []string
	lock                sync.Mutex
}

// New starts a Server and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret:      []byte(uuid.NewString()),
		users:       make(map[string]*user),
		refresh:     make(map[string]int),
		blacklisted: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register/", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login/", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout/", s.authenticated(s.handleLogout))
	mux.HandleFunc("GET /api/users/me/", s.authenticated(s.handleMe))
	mux.HandleFunc("PUT /api/users/update_profile/", s.authenticated(s.handleUpdateProfile))
	mux.HandleFunc("POST /api/users/upload_profile_picture/", s.authenticated(s.handleUploadPicture))
	mux.HandleFunc("POST /api/users/change_password/", s.authenticated(s.handleChangePassword))
	mux.HandleFunc("GET /api/hotels/", s.handleHotels)
	mux.HandleFunc("POST /api/tour-bookings/", s.authenticated(s.handleTourBooking))

	s.srv = httptest.NewServer(s.recording(mux))
	t.Cleanup(s.srv.Close)
	return s
}

// APIURL is the base URL clients should be configured with.
func (s *Server) APIURL() string {
	return s.srv.URL + "/api"
}

// Close stops the server; later requests fail at the network level.
func (s *Server) Close() {
	s.srv.Close()
}

// RequireVerification makes register return the user without tokens.
func (s *Server) RequireVerification(on bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.requireVerification = on
}

// FailLogout makes auth/logout answer 500.
func (s *Server) FailLogout(on bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failLogout = on
}

// AddUser creates an account directly.
func (s *Server) AddUser(username, password string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, _ = s.createUser(username, "", password)
}

// Blacklisted reports whether a refresh token was invalidated by logout.
func (s *Server) Blacklisted(refreshToken string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.blacklisted[refreshToken]
}

// Requests lists "METHOD path" for every request received.
func (s *Server) Requests() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) recording(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.lock.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createUser(username, email, password string) (*user, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	s.nextID++
	u := &user{ID: s.nextID, Username: username, Email: email, passwordHash: hash}
	s.users[username] = u
	return u, nil
}

func (s *Server) userByID(id int) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Server) issueTokens(u *user) (map[string]string, error) {
	now := time.Now()
	access, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"token_type": "access",
		"user_id":    u.ID,
		"jti":        uuid.NewString(),
		"iat":        now.Unix(),
		"exp":        now.Add(accessTokenLifetime).Unix(),
	}).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	refresh := uuid.NewString()
	s.refresh[refresh] = u.ID
	return map[string]string{"access": access, "refresh": refresh}, nil
}

type authedHandler func(w http.ResponseWriter, r *http.Request, u *user)

func (s *Server) authenticated(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}

		claims := jwtlib.MapClaims{}
		_, err := jwtlib.ParseWithClaims(raw, claims, func(*jwtlib.Token) (any, error) {
			return s.secret, nil
		}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
			return
		}

		id, _ := claims["user_id"].(float64)

		s.lock.Lock()
		defer s.lock.Unlock()
		u := s.userByID(int(id))
		if u == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "User not found"})
			return
		}
		next(w, r, u)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
