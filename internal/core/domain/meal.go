package domain

import "time"

// MealCategory identifies a priced meal slot.
type MealCategory string

const (
	MealBreakfast MealCategory = "Breakfast"
	MealMidMeal   MealCategory = "Mid-Meal"
	MealLunch     MealCategory = "Lunch"
	MealSnack     MealCategory = "Snack"
	MealDinner    MealCategory = "Dinner"
)

// MealSlot is a fixed time window with an associated category and price.
type MealSlot struct {
	Category MealCategory `json:"category"`
	Price    int64        `json:"-"` // paise
	Window   string       `json:"time_slot"`
}

// mealWindows maps half-open [start, end) intervals in minutes since midnight
// to slots. Intervals are contiguous between 06:00 and 21:00, so a boundary
// instant always belongs to the later window.
var mealWindows = []struct {
	start, end int // minutes since midnight
	slot       MealSlot
}{
	{360, 720, MealSlot{Category: MealBreakfast, Price: 2000, Window: "6:00 AM - 12:00 PM"}},
	{720, 780, MealSlot{Category: MealMidMeal, Price: 3000, Window: "12:00 PM - 1:00 PM"}},
	{780, 900, MealSlot{Category: MealLunch, Price: 5000, Window: "1:00 PM - 3:00 PM"}},
	{900, 1080, MealSlot{Category: MealSnack, Price: 3000, Window: "3:00 PM - 6:00 PM"}},
	{1080, 1260, MealSlot{Category: MealDinner, Price: 5000, Window: "6:00 PM - 9:00 PM"}},
}

// ClassifyMeal maps a wall-clock instant to its meal slot. The second return
// is false outside meal hours.
func ClassifyMeal(t time.Time) (MealSlot, bool) {
	minutes := t.Hour()*60 + t.Minute()
	for _, w := range mealWindows {
		if minutes >= w.start && minutes < w.end {
			return w.slot, true
		}
	}
	return MealSlot{Window: "Outside meal hours"}, false
}
