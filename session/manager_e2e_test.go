package session_test

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/trekker-client/hotels"
	"github.com/jrsteele09/trekker-client/internal/apifake"
	"github.com/jrsteele09/trekker-client/session"
	"github.com/jrsteele09/trekker-client/session/storefake"
	"github.com/jrsteele09/trekker-client/token"
	"github.com/jrsteele09/trekker-client/tours"
	"github.com/jrsteele09/trekker-client/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type liveFixture struct {
	server  *apifake.Server
	store   *storefake.FakeStore
	api     *transport.Client
	manager *session.Manager
}

func setupLiveFixture(t *testing.T) *liveFixture {
	t.Helper()

	server := apifake.New(t)
	store := storefake.NewFakeStore()

	public, err := transport.New(server.APIURL(), transport.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	api, err := transport.New(server.APIURL(),
		transport.WithTokenSource(session.StoreTokenSource(store)),
		transport.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	manager, err := session.NewManager(session.Deps{Store: store, Public: public, API: api}, session.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	return &liveFixture{server: server, store: store, api: api, manager: manager}
}

func TestLive_LoginThenAuthenticatedCalls(t *testing.T) {
	f := setupLiveFixture(t)
	ctx := context.Background()
	f.server.AddUser("alice", "s3cret!")

	resp, err := f.manager.Login(ctx, "alice", "s3cret!")
	require.NoError(t, err)
	require.True(t, resp.Tokens.Complete())
	require.True(t, f.manager.IsAuthenticated(ctx))

	info, err := token.Inspect(resp.Tokens.Access)
	require.NoError(t, err)
	require.Equal(t, "access", info.TokenType)
	require.Equal(t, "1", info.UserID)

	me, err := f.manager.GetCurrentUser(ctx)
	require.NoError(t, err)
	var user struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(me, &user))
	require.Equal(t, "alice", user.Username)

	booking, err := tours.New(f.api).CreateBooking(ctx, map[string]any{"tour": 3, "participants": 2})
	require.NoError(t, err)
	require.Contains(t, string(booking), `"status":"pending"`)

	require.Contains(t, f.server.Requests(), "GET /api/users/me/")
}

func TestLive_LoginWrongPassword(t *testing.T) {
	f := setupLiveFixture(t)
	ctx := context.Background()
	f.server.AddUser("alice", "s3cret!")

	_, err := f.manager.Login(ctx, "alice", "nope")
	require.Error(t, err)
	require.True(t, errors.Is(err, transport.ErrAuthentication))
	require.False(t, f.manager.IsAuthenticated(ctx))
	require.Empty(t, f.store.Snapshot())
}

func TestLive_UnauthenticatedCallRejected(t *testing.T) {
	f := setupLiveFixture(t)

	_, err := f.manager.GetCurrentUser(context.Background())
	require.True(t, errors.Is(err, transport.ErrAuthentication))
}

func TestLive_Register(t *testing.T) {
	tests := []struct {
		name                string
		requireVerification bool
		expectAuthenticated bool
	}{
		{name: "tokens issued", expectAuthenticated: true},
		{name: "verification pending", requireVerification: true, expectAuthenticated: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := setupLiveFixture(t)
			ctx := context.Background()
			f.server.RequireVerification(test.requireVerification)

			resp, err := f.manager.Register(ctx, session.RegisterRequest{
				Username:  "bob",
				Email:     "bob@example.com",
				Password:  "pw123456",
				Password2: "pw123456",
			})
			require.NoError(t, err)
			require.NotEmpty(t, resp.User)
			require.Equal(t, test.expectAuthenticated, f.manager.IsAuthenticated(ctx))
		})
	}
}

func TestLive_RegisterDuplicateUsername(t *testing.T) {
	f := setupLiveFixture(t)
	f.server.AddUser("bob", "pw")

	_, err := f.manager.Register(context.Background(), session.RegisterRequest{Username: "bob", Password: "pw"})
	require.True(t, errors.Is(err, transport.ErrValidation))
	require.Equal(t, 400, transport.StatusCode(err))
}

func TestLive_LogoutBlacklistsRefreshToken(t *testing.T) {
	f := setupLiveFixture(t)
	ctx := context.Background()
	f.server.AddUser("alice", "s3cret!")

	resp, err := f.manager.Login(ctx, "alice", "s3cret!")
	require.NoError(t, err)

	require.NoError(t, f.manager.Logout(ctx))
	require.True(t, f.server.Blacklisted(resp.Tokens.Refresh))
	require.False(t, f.manager.IsAuthenticated(ctx))
	require.Nil(t, f.manager.GetStoredUser(ctx))
}

func TestLive_LogoutClearsWhenServerFails(t *testing.T) {
	tests := []struct {
		name    string
		disrupt func(s *apifake.Server)
	}{
		{name: "server error", disrupt: func(s *apifake.Server) { s.FailLogout(true) }},
		{name: "server unreachable", disrupt: func(s *apifake.Server) { s.Close() }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := setupLiveFixture(t)
			ctx := context.Background()
			f.server.AddUser("alice", "s3cret!")

			_, err := f.manager.Login(ctx, "alice", "s3cret!")
			require.NoError(t, err)
			test.disrupt(f.server)

			require.NoError(t, f.manager.Logout(ctx))
			require.False(t, f.manager.IsAuthenticated(ctx))
			require.Empty(t, f.store.Snapshot())
		})
	}
}

func TestLive_ProfileChangesKeepTokens(t *testing.T) {
	f := setupLiveFixture(t)
	ctx := context.Background()
	f.server.AddUser("alice", "s3cret!")

	_, err := f.manager.Login(ctx, "alice", "s3cret!")
	require.NoError(t, err)
	before, err := f.manager.Credential(ctx)
	require.NoError(t, err)

	_, err = f.manager.UpdateProfile(ctx, map[string]any{"first_name": "Alice"})
	require.NoError(t, err)
	require.Contains(t, string(f.manager.GetStoredUser(ctx)), `"first_name":"Alice"`)

	_, err = f.manager.UploadProfilePicture(ctx, session.ProfilePicture{
		FileName: "me.png",
		Content:  strings.NewReader("\x89PNG"),
		Gender:   "F",
	})
	require.NoError(t, err)
	stored := string(f.manager.GetStoredUser(ctx))
	require.Contains(t, stored, `"profile_picture":"/media/profile_pictures/me.png"`)
	require.Contains(t, stored, `"gender":"F"`)
	require.Contains(t, stored, `"first_name":"Alice"`)

	after, err := f.manager.Credential(ctx)
	require.NoError(t, err)
	require.Equal(t, before.AccessToken, after.AccessToken)
	require.Equal(t, before.RefreshToken, after.RefreshToken)
}

func TestLive_ChangePassword(t *testing.T) {
	f := setupLiveFixture(t)
	ctx := context.Background()
	f.server.AddUser("alice", "old-pass")

	_, err := f.manager.Login(ctx, "alice", "old-pass")
	require.NoError(t, err)

	_, err = f.manager.ChangePassword(ctx, "wrong", "new-pass")
	require.True(t, errors.Is(err, transport.ErrValidation))

	resp, err := f.manager.ChangePassword(ctx, "old-pass", "new-pass")
	require.NoError(t, err)
	require.Equal(t, "Password changed successfully", resp.Message)
	require.True(t, f.manager.IsAuthenticated(ctx))

	require.NoError(t, f.manager.Logout(ctx))
	_, err = f.manager.Login(ctx, "alice", "new-pass")
	require.NoError(t, err)
}

func TestLive_PublicResourcesWithoutSession(t *testing.T) {
	f := setupLiveFixture(t)

	list, err := hotels.New(f.api).Hotels(context.Background(), url.Values{"city": {"Sapa"}})
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(list, &got))
	require.Len(t, got, 1)
	require.Equal(t, "Summit Lodge", got[0]["name"])
}
