package session

import "context"

// Slot names one of the three persisted session values.
type Slot string

const (
	SlotAccessToken  Slot = "access_token"
	SlotRefreshToken Slot = "refresh_token"
	SlotUser         Slot = "user"
)

// AllSlots lists every slot the manager owns.
var AllSlots = []Slot{SlotAccessToken, SlotRefreshToken, SlotUser}

// Store persists session slots. Only the Manager writes to it.
type Store interface {
	// Get returns the slot value and whether it is present.
	Get(ctx context.Context, slot Slot) (string, bool, error)

	// Set writes every given slot in a single atomic step.
	Set(ctx context.Context, values map[Slot]string) error

	// Clear removes the given slots. Missing slots are not an error.
	Clear(ctx context.Context, slots ...Slot) error
}
