package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/trekker-client/internal/config"
	"github.com/jrsteele09/trekker-client/session"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name        string
		vars        config.EnvVars
		expectError bool
	}{
		{name: "memory", vars: config.EnvVars{Store: config.StoreMemory}},
		{name: "sqlite", vars: config.EnvVars{Store: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "s.db")}},
		{name: "unknown", vars: config.EnvVars{Store: "etcd"}, expectError: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx := context.Background()
			store, closer, err := openStore(ctx, test.vars)
			if test.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer closer.Close()

			require.NoError(t, store.Set(ctx, map[session.Slot]string{session.SlotUser: `{"id":1}`}))
			v, ok, err := store.Get(ctx, session.SlotUser)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, `{"id":1}`, v)
		})
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, json.RawMessage(`{"a":1}`)))
	require.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestBody(t *testing.T) {
	jsonBody = `{"tour":3}`
	b, err := body()
	require.NoError(t, err)
	require.JSONEq(t, `{"tour":3}`, string(b))

	jsonBody = `{tour`
	_, err = body()
	require.Error(t, err)
}
