package storefake

import (
	"context"
	"sync"

	"github.com/jrsteele09/trekker-client/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory session.Store. Errors can be injected per operation.
type FakeStore struct {
	slots    map[session.Slot]string
	lock     sync.RWMutex
	GetErr   error
	SetErr   error
	ClearErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		slots: make(map[session.Slot]string),
	}
}

func (s *FakeStore) Get(_ context.Context, slot session.Slot) (string, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.GetErr != nil {
		return "", false, s.GetErr
	}
	v, ok := s.slots[slot]
	return v, ok, nil
}

func (s *FakeStore) Set(_ context.Context, values map[session.Slot]string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	for k, v := range values {
		s.slots[k] = v
	}
	return nil
}

func (s *FakeStore) Clear(_ context.Context, slots ...session.Slot) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	for _, slot := range slots {
		delete(s.slots, slot)
	}
	return nil
}

// Snapshot returns a copy of every stored slot.
func (s *FakeStore) Snapshot() map[session.Slot]string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	out := make(map[session.Slot]string, len(s.slots))
	for k, v := range s.slots {
		out[k] = v
	}
	return out
}
