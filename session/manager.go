// Package session owns the client's credential lifecycle: acquiring tokens on
// register and login, exposing them to the authenticated transport, keeping the
// stored user in step with profile updates and tearing everything down on logout.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"sync"
	"time"

	"github.com/jrsteele09/trekker-client/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// clearTimeout bounds the local clear at the end of Logout, which runs even
// when the caller's context is already done.
const clearTimeout = 5 * time.Second

// API paths, relative to the configured base URLs.
const (
	PathRegister             = "auth/register"
	PathLogin                = "auth/login"
	PathLogout               = "auth/logout"
	PathCurrentUser          = "users/me"
	PathUpdateProfile        = "users/update_profile"
	PathUploadProfilePicture = "users/upload_profile_picture"
	PathChangePassword       = "users/change_password"
)

// Deps holds the collaborators of a Manager.
type Deps struct {
	Store  Store          // Persisted session slots
	Public transport.Doer // Unauthenticated calls (register, login)
	API    transport.Doer // Authenticated calls, bearer token attached
}

// Manager mediates every credential state transition.
type Manager struct {
	deps   Deps
	logger zerolog.Logger
	mu     sync.Mutex // serializes store writes
}

// ManagerOption modifies a Manager at construction time.
type ManagerOption func(*Manager)

// WithLogger sets the logger used by the manager.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager. All dependencies are required.
func NewManager(deps Deps, options ...ManagerOption) (*Manager, error) {
	if deps.Store == nil {
		return nil, errors.New("[NewManager] Store is required")
	}
	if deps.Public == nil {
		return nil, errors.New("[NewManager] Public transport is required")
	}
	if deps.API == nil {
		return nil, errors.New("[NewManager] API transport is required")
	}

	m := &Manager{
		deps:   deps,
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(m)
	}
	m.logger = m.logger.With().Str("component", "session").Logger()
	return m, nil
}

// TokenSource returns a read-only view of the stored access token.
func (m *Manager) TokenSource() transport.TokenSource {
	return StoreTokenSource(m.deps.Store)
}

// Register submits the registration fields. A Credential is stored only when the
// response carries a full token pair; otherwise the current session is left as is.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := m.deps.Public.Post(ctx, PathRegister, req.body(), &resp); err != nil {
		return nil, errors.Wrap(err, "[Manager.Register] post")
	}

	if resp.Tokens.Complete() {
		if err := m.storeCredential(ctx, resp); err != nil {
			return nil, errors.Wrap(err, "[Manager.Register] storeCredential")
		}
	}
	return &resp, nil
}

// Login exchanges username and password for a token pair and stores the Credential.
func (m *Manager) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{
		"username": username,
		"password": password,
	}
	if err := m.deps.Public.Post(ctx, PathLogin, body, &resp); err != nil {
		return nil, errors.Wrap(err, "[Manager.Login] post")
	}

	if !resp.Tokens.Complete() {
		return nil, errors.Wrap(ErrIncompleteCredential, "[Manager.Login]")
	}
	if err := m.storeCredential(ctx, resp); err != nil {
		return nil, errors.Wrap(err, "[Manager.Login] storeCredential")
	}
	return &resp, nil
}

// Logout asks the server to invalidate the refresh token and then clears every
// session slot. The clear runs whatever the remote outcome; remote failures are
// logged and dropped. The returned error only reports a failed local clear.
// Cancelling ctx aborts the remote call but never the clear.
func (m *Manager) Logout(ctx context.Context) (err error) {
	defer func() {
		clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), clearTimeout)
		defer cancel()

		m.mu.Lock()
		defer m.mu.Unlock()
		if clearErr := m.deps.Store.Clear(clearCtx, AllSlots...); clearErr != nil {
			err = errors.Wrap(clearErr, "[Manager.Logout] store.Clear")
		}
	}()

	refreshToken, _, getErr := m.deps.Store.Get(ctx, SlotRefreshToken)
	if getErr != nil {
		m.logger.Warn().Err(getErr).Msg("reading refresh token for logout")
	}

	body := map[string]any{"refresh_token": nil}
	if refreshToken != "" {
		body["refresh_token"] = refreshToken
	}
	if postErr := m.deps.API.Post(ctx, PathLogout, body, nil); postErr != nil {
		m.logger.Warn().Err(postErr).Int("status", transport.StatusCode(postErr)).Msg("remote logout failed")
	}
	return nil
}

// GetCurrentUser fetches the caller's profile. The stored session is not touched.
func (m *Manager) GetCurrentUser(ctx context.Context) (UserProfile, error) {
	var user json.RawMessage
	if err := m.deps.API.Get(ctx, PathCurrentUser, nil, &user); err != nil {
		return nil, errors.Wrap(err, "[Manager.GetCurrentUser] get")
	}
	return UserProfile(user), nil
}

// UpdateProfile sends the changed profile fields and replaces the stored user
// with the returned one. Stored tokens are kept.
func (m *Manager) UpdateProfile(ctx context.Context, fields map[string]any) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := m.deps.API.Put(ctx, PathUpdateProfile, fields, &resp); err != nil {
		return nil, errors.Wrap(err, "[Manager.UpdateProfile] put")
	}
	if err := m.replaceUser(ctx, resp.User); err != nil {
		return nil, errors.Wrap(err, "[Manager.UpdateProfile] replaceUser")
	}
	return &resp, nil
}

// ProfilePicture is the multipart payload of UploadProfilePicture.
type ProfilePicture struct {
	FileName string
	Content  io.Reader

	// Optional profile fields sent alongside the picture.
	Phone    string
	Address  string
	Birthday string
	Gender   string
}

// UploadProfilePicture uploads a new picture and replaces the stored user with
// the returned one. Stored tokens are kept.
func (m *Manager) UploadProfilePicture(ctx context.Context, pic ProfilePicture) (*ProfileResponse, error) {
	if pic.Content == nil {
		return nil, errors.Wrap(ErrInvalidProfile, "[Manager.UploadProfilePicture]")
	}

	body, contentType, err := pic.encode()
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.UploadProfilePicture] encode")
	}

	var resp ProfileResponse
	if err := m.deps.API.Post(ctx, PathUploadProfilePicture, body, &resp, transport.WithContentType(contentType)); err != nil {
		return nil, errors.Wrap(err, "[Manager.UploadProfilePicture] post")
	}
	if err := m.replaceUser(ctx, resp.User); err != nil {
		return nil, errors.Wrap(err, "[Manager.UploadProfilePicture] replaceUser")
	}
	return &resp, nil
}

// ChangePassword changes the account password. The new password is sent twice
// to satisfy the server's confirmation field. The stored session is not touched.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*MessageResponse, error) {
	body := map[string]string{
		"old_password":  oldPassword,
		"new_password":  newPassword,
		"new_password2": newPassword,
	}
	var resp MessageResponse
	if err := m.deps.API.Post(ctx, PathChangePassword, body, &resp); err != nil {
		return nil, errors.Wrap(err, "[Manager.ChangePassword] post")
	}
	return &resp, nil
}

// IsAuthenticated reports whether a complete token pair is stored. It never
// touches the network and does not check expiry or signature.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	cred, err := loadTokens(ctx, m.deps.Store)
	if err != nil {
		m.logger.Warn().Err(err).Msg("reading stored tokens")
		return false
	}
	return cred != nil
}

// GetStoredUser returns the stored user, or nil when it is absent or unparsable.
func (m *Manager) GetStoredUser(ctx context.Context) UserProfile {
	raw, ok, err := m.deps.Store.Get(ctx, SlotUser)
	if err != nil {
		m.logger.Warn().Err(err).Msg("reading stored user")
		return nil
	}
	if !ok || !json.Valid([]byte(raw)) || raw == "null" {
		return nil
	}
	return UserProfile(raw)
}

// Credential returns the stored Credential, or nil when no complete token pair is stored.
func (m *Manager) Credential(ctx context.Context) (*Credential, error) {
	cred, err := loadTokens(ctx, m.deps.Store)
	if err != nil || cred == nil {
		return nil, err
	}
	cred.User = m.GetStoredUser(ctx)
	return cred, nil
}

func (m *Manager) storeCredential(ctx context.Context, resp AuthResponse) error {
	cred := Credential{
		AccessToken:  resp.Tokens.Access,
		RefreshToken: resp.Tokens.Refresh,
		User:         resp.User,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deps.Store.Set(ctx, cred.slots())
}

// replaceUser merges user into the current Credential, keeping its tokens.
func (m *Manager) replaceUser(ctx context.Context, user UserProfile) error {
	if len(user) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := loadTokens(ctx, m.deps.Store)
	if err != nil {
		return err
	}
	if cred == nil {
		return m.deps.Store.Set(ctx, map[Slot]string{SlotUser: string(user)})
	}
	cred.User = user
	return m.deps.Store.Set(ctx, cred.slots())
}

func (pic ProfilePicture) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fileName := pic.FileName
	if fileName == "" {
		fileName = "profile_picture"
	}
	part, err := w.CreateFormFile("profile_picture", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, pic.Content); err != nil {
		return nil, "", err
	}

	for name, value := range map[string]string{
		"phone":    pic.Phone,
		"address":  pic.Address,
		"birthday": pic.Birthday,
		"gender":   pic.Gender,
	} {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
