package hotels_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/jrsteele09/trekker-client/hotels"
	"github.com/jrsteele09/trekker-client/transport"
	"github.com/jrsteele09/trekker-client/transport/doerfake"
	"github.com/stretchr/testify/require"
)

func TestService_Calls(t *testing.T) {
	ctx := context.Background()
	reservation := map[string]any{"room": 4, "check_in_date": "2026-11-01", "check_out_date": "2026-11-03"}

	tests := []struct {
		name   string
		call   func(s *hotels.Service) (json.RawMessage, error)
		method string
		path   string
		query  url.Values
		body   any
	}{
		{"hotels", func(s *hotels.Service) (json.RawMessage, error) { return s.Hotels(ctx, url.Values{"city": {"Hanoi"}}) },
			http.MethodGet, "hotels", url.Values{"city": {"Hanoi"}}, nil},
		{"hotel", func(s *hotels.Service) (json.RawMessage, error) { return s.Hotel(ctx, "7") },
			http.MethodGet, "hotels/7", nil, nil},
		{"hotel rooms", func(s *hotels.Service) (json.RawMessage, error) { return s.HotelRooms(ctx, "7") },
			http.MethodGet, "hotels/7/rooms", nil, nil},
		{"search", func(s *hotels.Service) (json.RawMessage, error) { return s.SearchHotels(ctx, "beach") },
			http.MethodGet, "hotels/search", url.Values{"q": {"beach"}}, nil},
		{"rooms", func(s *hotels.Service) (json.RawMessage, error) { return s.Rooms(ctx, nil) },
			http.MethodGet, "rooms", nil, nil},
		{"reserve", func(s *hotels.Service) (json.RawMessage, error) { return s.CreateReservation(ctx, reservation) },
			http.MethodPost, "hotel-reservations", nil, reservation},
		{"my reservations", func(s *hotels.Service) (json.RawMessage, error) { return s.MyReservations(ctx) },
			http.MethodGet, "hotel-reservations/my_reservations", nil, nil},
		{"cancel", func(s *hotels.Service) (json.RawMessage, error) { return s.CancelReservation(ctx, "12") },
			http.MethodPost, "hotel-reservations/12/cancel", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := doerfake.NewFakeDoer().Reply(tt.method, tt.path, `[]`)

			out, err := tt.call(hotels.New(d))
			require.NoError(t, err)
			require.JSONEq(t, `[]`, string(out))

			call, ok := d.LastCall()
			require.True(t, ok)
			require.Equal(t, tt.method, call.Method)
			require.Equal(t, tt.path, call.Path)
			require.Equal(t, tt.query, call.Query)
			require.Equal(t, tt.body, call.Body)
		})
	}
}

func TestService_CancelUnauthenticated(t *testing.T) {
	d := doerfake.NewFakeDoer().FailStatus(http.MethodPost, "hotel-reservations/12/cancel", http.StatusUnauthorized, ``)

	_, err := hotels.New(d).CancelReservation(context.Background(), "12")
	require.ErrorIs(t, err, transport.ErrAuthentication)
}

func TestService_IDsStayInsideTheirResource(t *testing.T) {
	var (
		gotPath string
		lock    sync.Mutex
	)
	path := func() string {
		lock.Lock()
		defer lock.Unlock()
		return gotPath
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		gotPath = r.URL.EscapedPath()
		lock.Unlock()
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	api, err := transport.New(srv.URL + "/api")
	require.NoError(t, err)
	s := hotels.New(api)

	t.Run("slashes are escaped into one segment", func(t *testing.T) {
		_, err := s.CancelReservation(context.Background(), "../../tour-bookings/7")
		require.NoError(t, err)
		require.Equal(t, "/api/hotel-reservations/..%2F..%2Ftour-bookings%2F7/cancel/", path())
	})

	t.Run("dot segment id is refused", func(t *testing.T) {
		before := path()
		_, err := s.Hotel(context.Background(), "..")
		require.ErrorIs(t, err, transport.ErrInvalidPath)
		require.Equal(t, before, path())
	})
}
