package entities

import (
	"strings"
	"time"
)

// Identity is a registered caller. Role and TASlot never change after the
// record is first written.
type Identity struct {
	Address      string
	Role         Role
	Name         string
	TASlot       int
	RegisteredAt time.Time
}

// NormalizeAddress canonicalizes caller addresses so that hex addresses
// differing only in case resolve to the same identity.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// TASlotCount is the fixed number of teaching-assistant seats.
const TASlotCount = 2

// Roster holds the fixed professor and the TA seats in registration order.
// Slot numbers are 1-based on the wire; index 0 is slot 1.
type Roster struct {
	Professor string
	TASlots   [TASlotCount]string
}

// FreeTASlot returns the lowest empty slot number.
func (r Roster) FreeTASlot() (int, bool) {
	for i, occupant := range r.TASlots {
		if occupant == "" {
			return i + 1, true
		}
	}
	return 0, false
}

// TASlotOf returns the slot number held by address.
func (r Roster) TASlotOf(address string) (int, bool) {
	address = NormalizeAddress(address)
	if address == "" {
		return 0, false
	}
	for i, occupant := range r.TASlots {
		if occupant == address {
			return i + 1, true
		}
	}
	return 0, false
}

func (r Roster) SlotFilled(slot int) bool {
	if slot < 1 || slot > TASlotCount {
		return false
	}
	return r.TASlots[slot-1] != ""
}

// Student is the roster projection returned by student listings.
type Student struct {
	Address string
	Name    string
}
