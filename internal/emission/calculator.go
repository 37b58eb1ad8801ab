package emission

// ComputeFootprint returns amount multiplied by the factor of (activityType, category).
// Unknown pairs yield 0 so that logging an activity never fails on an unrecognised category.
// amount is not validated here.
func ComputeFootprint(activityType, category string, amount float64) float64 {
	factor, ok := Lookup(activityType, category)
	if !ok {
		return 0
	}
	return amount * factor
}
