package booking

import (
	"math"

	"github.com/iliyamo/venue-booking/internal/model"
)

// EstimatePrice returns the quoted total for renting v for days with the
// given number of guests, rounded to cents.
func EstimatePrice(v model.Venue, days, guests int) float64 {
	total := v.BasePrice*float64(days) + v.PricePerGuest*float64(guests)
	return math.Round(total*100) / 100
}
