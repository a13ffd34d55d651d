package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/trekker-client/session"
	"github.com/jrsteele09/trekker-client/session/sqlitestore"
	"github.com/jrsteele09/trekker-client/session/storetest"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *sqlitestore.Store {
	t.Helper()
	s, err := sqlitestore.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) session.Store {
		return openStore(t, filepath.Join(t.TempDir(), "session.db"))
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	s, err := sqlitestore.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, map[session.Slot]string{
		session.SlotAccessToken:  "A1",
		session.SlotRefreshToken: "R1",
	}))
	require.NoError(t, s.Close())

	reopened := openStore(t, path)
	v, ok, err := reopened.Get(ctx, session.SlotRefreshToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "R1", v)
}
