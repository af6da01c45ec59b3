package scheduling

import (
	"fmt"
	"time"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

// DefaultSlots is the bookable half-hour grid: a morning block and an
// afternoon block. Both the claim and move validators check against the same
// set, and the availability endpoint renders from it, so the enumeration
// lives here and nowhere else.
var DefaultSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}

// SlotSet holds the recognized slot labels in display order.
type SlotSet struct {
	order   []string
	members map[string]struct{}
}

func NewSlotSet(slots []string) *SlotSet {
	if len(slots) == 0 {
		slots = DefaultSlots
	}
	members := make(map[string]struct{}, len(slots))
	order := make([]string, 0, len(slots))
	for _, s := range slots {
		if _, ok := members[s]; ok {
			continue
		}
		members[s] = struct{}{}
		order = append(order, s)
	}
	return &SlotSet{order: order, members: members}
}

func (s *SlotSet) Contains(slot string) bool {
	_, ok := s.members[slot]
	return ok
}

func (s *SlotSet) All() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *SlotSet) validate(slot string) error {
	if !s.Contains(slot) {
		return apperrors.NewValidation(
			fmt.Sprintf("unrecognized time slot %q", slot), nil)
	}
	return nil
}

// parseDate parses a wire-format date and normalizes it to midnight UTC so
// that equal calendar days always compare equal.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(model.DateFormat, value)
	if err != nil {
		return time.Time{}, apperrors.NewValidation("invalid date, expected YYYY-MM-DD", err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
