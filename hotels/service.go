// Package hotels wraps the hotels, rooms and hotel-reservations resources.
package hotels

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/jrsteele09/trekker-client/transport"
	"github.com/pkg/errors"
)

type Service struct {
	api transport.Doer
}

func New(api transport.Doer) *Service {
	return &Service{api: api}
}

func (s *Service) Hotels(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return s.get(ctx, "hotels", params)
}

func (s *Service) Hotel(ctx context.Context, id string) (json.RawMessage, error) {
	return s.get(ctx, "hotels/"+url.PathEscape(id), nil)
}

func (s *Service) HotelRooms(ctx context.Context, hotelID string) (json.RawMessage, error) {
	return s.get(ctx, "hotels/"+url.PathEscape(hotelID)+"/rooms", nil)
}

func (s *Service) SearchHotels(ctx context.Context, query string) (json.RawMessage, error) {
	return s.get(ctx, "hotels/search", url.Values{"q": {query}})
}

func (s *Service) Rooms(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return s.get(ctx, "rooms", params)
}

func (s *Service) CreateReservation(ctx context.Context, reservation any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Post(ctx, "hotel-reservations", reservation, &out); err != nil {
		return nil, errors.Wrap(err, "[hotels.CreateReservation]")
	}
	return out, nil
}

func (s *Service) MyReservations(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "hotel-reservations/my_reservations", nil)
}

func (s *Service) CancelReservation(ctx context.Context, id string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Post(ctx, "hotel-reservations/"+url.PathEscape(id)+"/cancel", nil, &out); err != nil {
		return nil, errors.Wrap(err, "[hotels.CancelReservation]")
	}
	return out, nil
}

func (s *Service) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Get(ctx, path, query, &out); err != nil {
		return nil, errors.Wrapf(err, "[hotels] get %s", path)
	}
	return out, nil
}
