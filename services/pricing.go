// Package services holds the price-update engine and the spreadsheet
// import/export logic of the price manager.
package services

import "math"

// ApplyNinetyCents forces the fractional part of a computed sell price
// to ,90, the store's price-ending convention. Non-positive or NaN
// prices return 0.0. Only the two price fields go through this rule,
// never cost, freight or IPI.
func ApplyNinetyCents(price float64) float64 {
	if math.IsNaN(price) || price <= 0 {
		return 0.0
	}
	return math.Floor(price) + 0.90
}
