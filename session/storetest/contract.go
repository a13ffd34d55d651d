// Package storetest checks session.Store implementations against the behaviour
// the session manager relies on.
package storetest

import (
	"context"
	"testing"

	"github.com/jrsteele09/trekker-client/session"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store returned by newStore for every subtest.
func Run(t *testing.T, newStore func(t *testing.T) session.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing slot", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.Get(ctx, session.SlotAccessToken)
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, v)
	})

	t.Run("set writes every slot", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, map[session.Slot]string{
			session.SlotAccessToken:  "A1",
			session.SlotRefreshToken: "R1",
			session.SlotUser:         `{"id":1,"username":"alice"}`,
		}))

		requireSlot(t, s, session.SlotAccessToken, "A1")
		requireSlot(t, s, session.SlotRefreshToken, "R1")
		requireSlot(t, s, session.SlotUser, `{"id":1,"username":"alice"}`)
	})

	t.Run("set overwrites only the given slots", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, map[session.Slot]string{
			session.SlotAccessToken:  "A1",
			session.SlotRefreshToken: "R1",
		}))
		require.NoError(t, s.Set(ctx, map[session.Slot]string{
			session.SlotAccessToken: "A2",
		}))

		requireSlot(t, s, session.SlotAccessToken, "A2")
		requireSlot(t, s, session.SlotRefreshToken, "R1")
	})

	t.Run("empty value is present", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, map[session.Slot]string{session.SlotUser: ""}))
		v, ok, err := s.Get(ctx, session.SlotUser)
		require.NoError(t, err)
		require.True(t, ok)
		require.Empty(t, v)
	})

	t.Run("clear removes slots and ignores missing ones", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, map[session.Slot]string{
			session.SlotAccessToken:  "A1",
			session.SlotRefreshToken: "R1",
		}))
		require.NoError(t, s.Clear(ctx, session.AllSlots...))

		for _, slot := range session.AllSlots {
			_, ok, err := s.Get(ctx, slot)
			require.NoError(t, err)
			require.False(t, ok, slot)
		}
		require.NoError(t, s.Clear(ctx, session.AllSlots...))
	})
}

func requireSlot(t *testing.T, s session.Store, slot session.Slot, want string) {
	t.Helper()
	v, ok, err := s.Get(context.Background(), slot)
	require.NoError(t, err)
	require.True(t, ok, slot)
	require.Equal(t, want, v)
}
