// Package blog wraps the posts, categories and comments resources.
package blog

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/jrsteele09/trekker-client/transport"
	"github.com/pkg/errors"
)

// Service forwards blog calls to the authenticated API.
type Service struct {
	api transport.Doer
}

func New(api transport.Doer) *Service {
	return &Service{api: api}
}

func (s *Service) Categories(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "categories", nil)
}

// Posts lists posts; params are passed through as query filters.
func (s *Service) Posts(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return s.get(ctx, "posts", params)
}

func (s *Service) Post(ctx context.Context, slug string) (json.RawMessage, error) {
	return s.get(ctx, "posts/"+url.PathEscape(slug), nil)
}

func (s *Service) SearchPosts(ctx context.Context, query string) (json.RawMessage, error) {
	return s.get(ctx, "posts/search", url.Values{"q": {query}})
}

func (s *Service) CreatePost(ctx context.Context, post any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Post(ctx, "posts", post, &out); err != nil {
		return nil, errors.Wrap(err, "[blog.CreatePost]")
	}
	return out, nil
}

func (s *Service) UpdatePost(ctx context.Context, slug string, post any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Put(ctx, "posts/"+url.PathEscape(slug), post, &out); err != nil {
		return nil, errors.Wrap(err, "[blog.UpdatePost]")
	}
	return out, nil
}

func (s *Service) DeletePost(ctx context.Context, slug string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Delete(ctx, "posts/"+url.PathEscape(slug), &out); err != nil {
		return nil, errors.Wrap(err, "[blog.DeletePost]")
	}
	return out, nil
}

// LikePost toggles the caller's like on a post.
func (s *Service) LikePost(ctx context.Context, slug string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Post(ctx, "posts/"+url.PathEscape(slug)+"/like", nil, &out); err != nil {
		return nil, errors.Wrap(err, "[blog.LikePost]")
	}
	return out, nil
}

func (s *Service) MyPosts(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "posts/my_posts", nil)
}

func (s *Service) Comments(ctx context.Context, postSlug string) (json.RawMessage, error) {
	return s.get(ctx, "comments", url.Values{"post": {postSlug}})
}

func (s *Service) CreateComment(ctx context.Context, comment any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Post(ctx, "comments", comment, &out); err != nil {
		return nil, errors.Wrap(err, "[blog.CreateComment]")
	}
	return out, nil
}

func (s *Service) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.api.Get(ctx, path, query, &out); err != nil {
		return nil, errors.Wrapf(err, "[blog] get %s", path)
	}
	return out, nil
}
