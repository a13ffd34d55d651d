package session_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/trekker-client/session"
	"github.com/jrsteele09/trekker-client/session/sqlitestore"
	"github.com/jrsteele09/trekker-client/transport"
	"github.com/jrsteele09/trekker-client/transport/doerfake"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestManager_LogoutOverSQLite(t *testing.T) {
	tests := []struct {
		name         string
		cancelBefore bool
		script       func(api *doerfake.FakeDoer)
	}{
		{
			name:   "remote success",
			script: func(api *doerfake.FakeDoer) { api.Reply(http.MethodPost, session.PathLogout, `{"message":"Logout successful"}`) },
		},
		{
			name: "remote failure",
			script: func(api *doerfake.FakeDoer) {
				api.FailStatus(http.MethodPost, session.PathLogout, http.StatusInternalServerError, ``)
			},
		},
		{
			name: "network failure",
			script: func(api *doerfake.FakeDoer) {
				api.Fail(http.MethodPost, session.PathLogout, &transport.RemoteServiceError{Err: errors.New("connection refused")})
			},
		},
		{
			name:         "context cancelled",
			cancelBefore: true,
			script: func(api *doerfake.FakeDoer) {
				api.Fail(http.MethodPost, session.PathLogout, &transport.RemoteServiceError{Err: context.Canceled})
			},
		},
		{
			name:         "context cancelled and remote failure",
			cancelBefore: true,
			script: func(api *doerfake.FakeDoer) {
				api.FailStatus(http.MethodPost, session.PathLogout, http.StatusBadGateway, ``)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store, err := sqlitestore.Open(context.Background(), filepath.Join(t.TempDir(), "session.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })

			public := doerfake.NewFakeDoer().Reply(http.MethodPost, session.PathLogin, aliceLogin)
			api := doerfake.NewFakeDoer()
			m, err := session.NewManager(session.Deps{Store: store, Public: public, API: api}, session.WithLogger(zerolog.Nop()))
			require.NoError(t, err)

			_, err = m.Login(context.Background(), "alice", "pw")
			require.NoError(t, err)
			require.True(t, m.IsAuthenticated(context.Background()))

			test.script(api)
			ctx, cancel := context.WithCancel(context.Background())
			if test.cancelBefore {
				cancel()
			}
			defer cancel()

			require.NoError(t, m.Logout(ctx))

			bg := context.Background()
			require.False(t, m.IsAuthenticated(bg))
			require.Nil(t, m.GetStoredUser(bg))
			for _, slot := range session.AllSlots {
				_, ok, err := store.Get(bg, slot)
				require.NoError(t, err)
				require.False(t, ok, "slot %s survived logout", slot)
			}
		})
	}
}
