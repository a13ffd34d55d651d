package session

import (
	"context"

	"github.com/jrsteele09/trekker-client/transport"
	"golang.org/x/oauth2"
)

type storeTokenSource struct {
	store Store
}

// StoreTokenSource exposes the stored access token to a transport.Client.
// It never writes to the store.
func StoreTokenSource(store Store) transport.TokenSource {
	return storeTokenSource{store: store}
}

func (s storeTokenSource) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	cred, err := loadTokens(ctx, s.store)
	if err != nil || cred == nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}

// loadTokens reads both tokens. A partial pair reads as no credential.
func loadTokens(ctx context.Context, store Store) (*Credential, error) {
	access, _, err := store.Get(ctx, SlotAccessToken)
	if err != nil {
		return nil, err
	}
	refresh, _, err := store.Get(ctx, SlotRefreshToken)
	if err != nil {
		return nil, err
	}
	if access == "" || refresh == "" {
		return nil, nil
	}
	return &Credential{AccessToken: access, RefreshToken: refresh}, nil
}
