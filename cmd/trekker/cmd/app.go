package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jrsteele09/trekker-client/internal/config"
	"github.com/jrsteele09/trekker-client/session"
	"github.com/jrsteele09/trekker-client/session/redisstore"
	"github.com/jrsteele09/trekker-client/session/sqlitestore"
	"github.com/jrsteele09/trekker-client/session/storefake"
	"github.com/jrsteele09/trekker-client/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const storeDialTimeout = 5 * time.Second

// app is everything a command needs, built from cfg.
type app struct {
	store   session.Store
	api     *transport.Client
	manager *session.Manager
	closer  io.Closer
}

func newApp(ctx context.Context, c config.Config) (*app, error) {
	store, closer, err := openStore(ctx, c)
	if err != nil {
		return nil, err
	}

	public, err := transport.New(c.GetAuthURL(),
		transport.WithTimeout(c.GetHTTPTimeout()),
		transport.WithLogger(log.Logger))
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	api, err := transport.New(c.GetAPIURL(),
		transport.WithTimeout(c.GetHTTPTimeout()),
		transport.WithTokenSource(session.StoreTokenSource(store)),
		transport.WithLogger(log.Logger))
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	manager, err := session.NewManager(session.Deps{Store: store, Public: public, API: api})
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	return &app{store: store, api: api, manager: manager, closer: closer}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

func openStore(ctx context.Context, c config.StoreConfig) (session.Store, io.Closer, error) {
	switch c.GetStoreKind() {
	case config.StoreSQLite:
		s, err := sqlitestore.Open(ctx, c.GetSQLitePath())
		if err != nil {
			return nil, nil, errors.Wrap(err, "[openStore] sqlite")
		}
		return s, s, nil
	case config.StoreRedis:
		s, err := redisstore.Connect(ctx, c.GetRedisURL(), c.GetRedisPrefix(), storeDialTimeout)
		if err != nil {
			return nil, nil, errors.Wrap(err, "[openStore] redis")
		}
		return s, s, nil
	case config.StoreMemory:
		log.Warn().Msg("memory store selected; the session ends with this process")
		return storefake.NewFakeStore(), io.NopCloser(nil), nil
	default:
		return nil, nil, errors.Errorf("[openStore] unknown store %q", c.GetStoreKind())
	}
}

// withApp builds the app for the duration of fn.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("closing session store")
		}
	}()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[printJSON] marshal")
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
