package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestNewSlotSet(t *testing.T) {
	s := NewSlotSet(nil)
	assert.Equal(t, DefaultSlots, s.All())

	s = NewSlotSet([]string{"08:00", "08:30", "08:00"})
	assert.Equal(t, []string{"08:00", "08:30"}, s.All(), "duplicates are dropped, order kept")

	assert.True(t, s.Contains("08:00"))
	assert.False(t, s.Contains("09:00"))
}

func TestSlotSetValidate(t *testing.T) {
	s := NewSlotSet(nil)

	assert.NoError(t, s.validate("09:00"))
	assert.NoError(t, s.validate("16:30"))

	for _, slot := range []string{"10:15", "9:00", "22:00", "", "ten o'clock"} {
		err := s.validate(slot)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation), "slot %q", slot)
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), d)

	for _, v := range []string{"15-09-2026", "2026/09/15", "2026-13-01", "tomorrow", ""} {
		_, err := parseDate(v)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation), "date %q", v)
	}
}
