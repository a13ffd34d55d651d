package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/trekker-client/session"
	"github.com/jrsteele09/trekker-client/session/redisstore"
	"github.com/jrsteele09/trekker-client/session/storetest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) session.Store {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return redisstore.New(rdb, "")
	})
}

func TestRedisStore_KeysArePrefixed(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := redisstore.Connect(context.Background(), "redis://"+mr.Addr()+"/0", "app:sess", time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(context.Background(), map[session.Slot]string{session.SlotAccessToken: "A1"}))

	v, err := mr.Get("app:sess:access_token")
	require.NoError(t, err)
	require.Equal(t, "A1", v)
}

func TestConnect_BadURL(t *testing.T) {
	_, err := redisstore.Connect(context.Background(), "not-a-url", "", time.Second)
	require.Error(t, err)
}
