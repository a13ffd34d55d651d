// Package tours wraps the tours and tour-bookings resources.
package tours

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

func (s *Service) Tours(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return s.get(ctx, "tours", params)
}

func (s *Service) Tour(ctx context.Context, id string) (json.RawMessage, error) {
	return s.get(ctx, "tours/"+url.PathEscape(id), nil)
}

func (s *Service) SearchTours(ctx context.Context, query string) (json.RawMessage, error) {
	return s.get(ctx, "tours/search", url.Values{"q": {query}})
}

func (s *Service) CreateBooking(ctx context.Context, booking any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Post(ctx, "tour-bookings", booking, &out); err != nil {
		return nil, errors.Wrap(err, "[tours.CreateBooking]")
	}
	return out, nil
}

func (s *Service) MyBookings(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "tour-bookings/my_bookings", nil)
}

func (s *Service) CancelBooking(ctx context.Context, id string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Post(ctx, "tour-bookings/"+url.PathEscape(id)+"/cancel", nil, &out); err != nil {
		return nil, errors.Wrap(err, "[tours.CancelBooking]")
	}
	return out, nil
}

func (s *Service) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Get(ctx, path, query, &out); err != nil {
		return nil, errors.Wrapf(err, "[tours] get %s", path)
	}
	return out, nil
}
