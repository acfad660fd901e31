package models

import "strings"

// DeviceCategory is the closed set of appliance tags the demand-factor rules
// key on. Free-text device types are mapped onto it once, at ingestion, so
// the rule stages never do their own substring matching.
type DeviceCategory string

const (
	CategoryEVCharger DeviceCategory = "ev_charger"
	CategoryDryer     DeviceCategory = "dryer"
	CategoryCooking   DeviceCategory = "cooking"
	CategoryOther     DeviceCategory = "other"
)

var categoryKeywords = []struct {
	category DeviceCategory
	words    []string
}{
	{CategoryEVCharger, []string{"ev charger", "evse", "electric vehicle", "car charger", "vehicle charger"}},
	{CategoryDryer, []string{"dryer", "clothes dryer"}},
	{CategoryCooking, []string{"range", "oven", "cooktop", "stove"}},
}

// TagDeviceType maps a free-text device type onto the closed category set.
// Unmatched text maps to CategoryOther.
func TagDeviceType(deviceType string) DeviceCategory {
	s := strings.ToLower(strings.TrimSpace(deviceType))
	if s == "" {
		return CategoryOther
	}
	for _, entry := range categoryKeywords {
		for _, w := range entry.words {
			if strings.Contains(s, w) {
				return entry.category
			}
		}
	}
	return CategoryOther
}
