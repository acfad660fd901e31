package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/panelcalc/engine/internal/demand"
	"github.com/panelcalc/engine/internal/models"
)

var testKey = models.SolutionKey{SiteID: "site-1", EquipmentComboID: "e1", LoadControlComboID: "lc1"}

func TestEvaluateLegacyFormula(t *testing.T) {
	ev := NewEvaluator(models.EditionLegacy, 240)
	totals := demand.Totals{AddedLoadKW: 2.0}
	site := models.SiteSpec{PanelAmps: 200, PanelVolts: 240}

	result := ev.Evaluate(testKey, 10.0, true, totals, site)

	assert.InDelta(t, 10.0*1.25+2.0, result.TotalDemandKW, 1e-9)
	assert.InDelta(t, result.TotalDemandKW*1000/240, result.TotalDemandAmps, 1e-9)
	assert.Equal(t, models.VerdictPass, result.Verdict)
}

func TestEvaluateLegacyIgnoresRemovalCredit(t *testing.T) {
	ev := NewEvaluator(models.EditionLegacy, 240)
	// the demand engine reports no removal credit under legacy, but even a
	// non-zero value must not reduce the peak
	totals := demand.Totals{AddedLoadKW: 2.0, RemovedLoadKW: 0}
	site := models.SiteSpec{PanelAmps: 200, PanelVolts: 240}

	result := ev.Evaluate(testKey, 10.0, true, totals, site)
	assert.InDelta(t, 14.5, result.TotalDemandKW, 1e-9)
}

func TestEvaluateDraftRemovalCredit(t *testing.T) {
	ev := NewEvaluator(models.EditionDraft, 240)
	totals := demand.Totals{AddedLoadKW: 2.0, RemovedLoadKW: 4.0}
	site := models.SiteSpec{PanelAmps: 200, PanelVolts: 240}

	result := ev.Evaluate(testKey, 10.0, true, totals, site)
	// max(0, 10-4)*1.25 + 2
	assert.InDelta(t, 9.5, result.TotalDemandKW, 1e-9)
}

func TestEvaluateDraftCreditFloorsAtZero(t *testing.T) {
	ev := NewEvaluator(models.EditionDraft, 240)
	totals := demand.Totals{AddedLoadKW: 1.0, RemovedLoadKW: 50.0}
	site := models.SiteSpec{PanelAmps: 100, PanelVolts: 240}

	result := ev.Evaluate(testKey, 10.0, true, totals, site)
	assert.InDelta(t, 1.0, result.TotalDemandKW, 1e-9)
}

func TestEvaluateFailVerdict(t *testing.T) {
	ev := NewEvaluator(models.EditionLegacy, 240)
	totals := demand.Totals{AddedLoadKW: 30.0}
	site := models.SiteSpec{PanelAmps: 100, PanelVolts: 240}

	result := ev.Evaluate(testKey, 20.0, true, totals, site)
	// 20*1.25 + 30 = 55 kW -> 229 A on a 100 A panel
	assert.Equal(t, models.VerdictFail, result.Verdict)
}

func TestEvaluateMissingPeakDegradesToError(t *testing.T) {
	ev := NewEvaluator(models.EditionLegacy, 240)
	result := ev.Evaluate(testKey, 0, false, demand.Totals{AddedLoadKW: 1.0}, models.SiteSpec{PanelAmps: 200})

	assert.Equal(t, models.VerdictError, result.Verdict)
	assert.Contains(t, result.Reason, "site-1")
	assert.Zero(t, result.TotalDemandKW)
}

func TestEvaluateRemainingCapacity(t *testing.T) {
	ev := NewEvaluator(models.EditionLegacy, 240)
	site := models.SiteSpec{PanelAmps: 150, PanelVolts: 240}

	result := ev.Evaluate(testKey, 10.0, true, demand.Totals{}, site)
	// 150*240/1000 - 1.25*10 = 23.5 kW
	assert.InDelta(t, 23.5, result.RemainingCapacityKW, 1e-9)
}

func TestEvaluateDefaultVoltageApplied(t *testing.T) {
	ev := NewEvaluator(models.EditionLegacy, 240)
	site := models.SiteSpec{PanelAmps: 200} // no voltage on the spec

	result := ev.Evaluate(testKey, 10.0, true, demand.Totals{AddedLoadKW: 2.0}, site)
	assert.InDelta(t, 14.5*1000/240, result.TotalDemandAmps, 1e-9)
}

func TestEvaluateEndToEndPanelUpgrade(t *testing.T) {
	// 200 A / 240 V panel, 10 kW historical peak; add a floored dryer, a
	// continuous-load EVSE and an AC under the legacy edition
	rows := []models.LoadRow{
		{SiteID: "site-1", EquipmentComboID: "e1", LoadControlComboID: "lc1",
			Status: models.LoadNew, DeviceType: "Clothes Dryer", NameplateWatts: 4000},
		{SiteID: "site-1", EquipmentComboID: "e1", LoadControlComboID: "lc1",
			Status: models.LoadNew, DeviceType: "EV Charger", NameplateWatts: 7200},
		{SiteID: "site-1", EquipmentComboID: "e1", LoadControlComboID: "lc1",
			Status: models.LoadNew, DeviceType: "Air Conditioner", NameplateWatts: 1500},
	}
	totals := demand.New(models.EditionLegacy).Evaluate(rows)
	assert.InDelta(t, 15.5, totals.AddedLoadKW, 1e-9)

	ev := NewEvaluator(models.EditionLegacy, 240)
	site := models.SiteSpec{PanelAmps: 200, PanelVolts: 240}
	result := ev.Evaluate(testKey, 10.0, true, totals, site)

	assert.InDelta(t, 28.0, result.TotalDemandKW, 1e-9)
	assert.InDelta(t, 116.7, result.TotalDemandAmps, 0.05)
	assert.Equal(t, models.VerdictPass, result.Verdict)
}
