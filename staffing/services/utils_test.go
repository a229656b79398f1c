package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShiftTotal(t *testing.T) {
	assert.Equal(t, 165.00, ShiftTotal(6, 25, 15))
	assert.Equal(t, 200.00, ShiftTotal(8, 25, 0))
	assert.Equal(t, 15.00, ShiftTotal(1, 0, 15))

	// Rounded to cents, half away from zero.
	assert.Equal(t, 33.34, ShiftTotal(1.5, 22.225, 0))
	assert.Equal(t, 0.01, ShiftTotal(1, 0.005, 0))
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 23.10, RoundCents(330.00*0.07))
	assert.Equal(t, 306.90, RoundCents(330.00-23.10))
	assert.Equal(t, 0.0, RoundCents(0.0049))
	assert.Equal(t, 100.0, RoundCents(99.999))
}

func TestDateAndPeriodValidation(t *testing.T) {
	assert.NoError(t, checkValidDate("2026-08-15"))
	assert.Error(t, checkValidDate("15/08/2026"))
	assert.Error(t, checkValidDate("2026-13-01"))

	assert.NoError(t, checkValidPeriod("2026-08"))
	assert.Error(t, checkValidPeriod("2026-08-15"))
	assert.Error(t, checkValidPeriod("aout"))

	assert.NoError(t, checkValidClock("08:30"))
	assert.Error(t, checkValidClock("8h30"))
	assert.Error(t, checkValidClock("25:00"))
}
