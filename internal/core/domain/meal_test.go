package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.Local)
}

func TestClassifyMeal_Windows(t *testing.T) {
	tests := []struct {
		name     string
		when     time.Time
		category MealCategory
		price    int64
	}{
		{"breakfast start", at(6, 0), MealBreakfast, 2000},
		{"mid breakfast", at(9, 30), MealBreakfast, 2000},
		{"last breakfast minute", at(11, 59), MealBreakfast, 2000},
		{"mid-meal start", at(12, 0), MealMidMeal, 3000},
		{"lunch start", at(13, 0), MealLunch, 5000},
		{"lunch mid", at(13, 30), MealLunch, 5000},
		{"snack start", at(15, 0), MealSnack, 3000},
		{"snack end edge", at(17, 59), MealSnack, 3000},
		{"dinner start", at(18, 0), MealDinner, 5000},
		{"last dinner minute", at(20, 59), MealDinner, 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, ok := ClassifyMeal(tt.when)
			require.True(t, ok)
			assert.Equal(t, tt.category, slot.Category)
			assert.Equal(t, tt.price, slot.Price)
			assert.NotEmpty(t, slot.Window)
		})
	}
}

func TestClassifyMeal_OutsideHours(t *testing.T) {
	for _, when := range []time.Time{at(0, 0), at(5, 59), at(21, 0), at(23, 0)} {
		slot, ok := ClassifyMeal(when)
		assert.False(t, ok, "%v should be outside meal hours", when)
		assert.Empty(t, slot.Category)
		assert.Zero(t, slot.Price)
		assert.Equal(t, "Outside meal hours", slot.Window)
	}
}

// Boundary instants belong to the later window, never both.
func TestClassifyMeal_BoundariesBelongToLaterWindow(t *testing.T) {
	slot, ok := ClassifyMeal(at(12, 0))
	require.True(t, ok)
	assert.Equal(t, MealMidMeal, slot.Category)

	slot, ok = ClassifyMeal(at(15, 0))
	require.True(t, ok)
	assert.Equal(t, MealSnack, slot.Category)
}

// Every minute of the day maps to exactly zero or one window, and the priced
// span 06:00-21:00 has no gaps.
func TestClassifyMeal_ContiguousNonOverlapping(t *testing.T) {
	for minutes := 0; minutes < 24*60; minutes++ {
		when := at(minutes/60, minutes%60)
		matches := 0
		for _, w := range mealWindows {
			if minutes >= w.start && minutes < w.end {
				matches++
			}
		}
		assert.LessOrEqual(t, matches, 1, "minute %d matched %d windows", minutes, matches)

		_, ok := ClassifyMeal(when)
		inPricedSpan := minutes >= 360 && minutes < 1260
		assert.Equal(t, inPricedSpan, ok, "minute %d", minutes)
	}
}

func TestClassifyMeal_SecondsIgnored(t *testing.T) {
	when := time.Date(2025, 3, 10, 11, 59, 59, 0, time.Local)
	slot, ok := ClassifyMeal(when)
	require.True(t, ok)
	assert.Equal(t, MealBreakfast, slot.Category)
}
