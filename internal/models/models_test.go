package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEdition(t *testing.T) {
	ed, err := ParseEdition("legacy")
	require.NoError(t, err)
	assert.Equal(t, EditionLegacy, ed)

	ed, err = ParseEdition(" Draft ")
	require.NoError(t, err)
	assert.Equal(t, EditionDraft, ed)

	_, err = ParseEdition("2099")
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestTagDeviceType(t *testing.T) {
	cases := []struct {
		deviceType string
		want       DeviceCategory
	}{
		{"Level 2 EVSE", CategoryEVCharger},
		{"Electric Vehicle Charger", CategoryEVCharger},
		{"Clothes Dryer", CategoryDryer},
		{"dryer", CategoryDryer},
		{"Induction Cooktop", CategoryCooking},
		{"Wall Oven", CategoryCooking},
		{"Electric Range", CategoryCooking},
		{"Heat Pump Water Heater", CategoryOther},
		{"", CategoryOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TagDeviceType(tc.deviceType), "device type %q", tc.deviceType)
	}
}

func TestLoadRowDefaults(t *testing.T) {
	row := LoadRow{NameplateWatts: 1200}
	assert.Equal(t, 1, row.Units())
	assert.True(t, row.IsElectric())

	row.UnitCount = 3
	row.FuelType = "Gas"
	assert.Equal(t, 3, row.Units())
	assert.False(t, row.IsElectric())
}

func TestLoadRowDemandFactorPerEdition(t *testing.T) {
	legacy := 0.75
	row := LoadRow{DemandFactorLegacy: &legacy}

	df, ok := row.DemandFactor(EditionLegacy)
	require.True(t, ok)
	assert.Equal(t, 0.75, df)

	_, ok = row.DemandFactor(EditionDraft)
	assert.False(t, ok)
}

func TestSiteSpecVoltageDefault(t *testing.T) {
	assert.Equal(t, 240.0, SiteSpec{PanelAmps: 100}.Volts(240))
	assert.Equal(t, 208.0, SiteSpec{PanelAmps: 100, PanelVolts: 208}.Volts(240))
}
