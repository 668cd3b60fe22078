package domain

import (
	"fmt"
	"strings"
)

// Slot identifies one of the three fixed document roles.
// The set is closed, so per-slot state is kept in arrays indexed by Slot.
type Slot int

const (
	// SlotFront holds the front side of the identity document.
	SlotFront Slot = iota
	// SlotBack holds the back side of the identity document.
	SlotBack
	// SlotSelfie holds a selfie of the user holding the document.
	SlotSelfie
)

// SlotCount is the number of document slots.
const SlotCount = 3

// AllSlots returns every slot in submission order.
func AllSlots() []Slot {
	return []Slot{SlotFront, SlotBack, SlotSelfie}
}

// IsValid returns true if the slot is one of the known roles.
func (s Slot) IsValid() bool {
	return s >= SlotFront && s <= SlotSelfie
}

// String returns the slot name, which is also its multipart field name.
func (s Slot) String() string {
	switch s {
	case SlotFront:
		return "front"
	case SlotBack:
		return "back"
	case SlotSelfie:
		return "selfie"
	default:
		return "unknown"
	}
}

// Label returns the human-readable slot label.
func (s Slot) Label() string {
	switch s {
	case SlotFront:
		return "Front side"
	case SlotBack:
		return "Back side"
	case SlotSelfie:
		return "Selfie holding your ID"
	default:
		return unknownDescription
	}
}

// ParseSlot converts a slot name to a Slot.
func ParseSlot(name string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "front":
		return SlotFront, nil
	case "back":
		return SlotBack, nil
	case "selfie":
		return SlotSelfie, nil
	}
	return 0, fmt.Errorf("%w: unknown slot %q", ErrInvalidInput, name)
}

// SlotStatus is the lifecycle state of a single slot.
type SlotStatus int

const (
	// SlotEmpty means no file is selected.
	SlotEmpty SlotStatus = iota
	// SlotCompressing means a selection is being compressed.
	SlotCompressing
	// SlotReady means a compressed candidate is available for submission.
	SlotReady
)

// String returns the string representation.
func (s SlotStatus) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotCompressing:
		return "compressing"
	case SlotReady:
		return "ready"
	default:
		return "unknown"
	}
}
