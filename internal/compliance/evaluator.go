package compliance

import (
	"fmt"

	"github.com/panelcalc/engine/internal/demand"
	"github.com/panelcalc/engine/internal/models"
)

// CapacityMultiplier is the safety markup the code applies to the historical
// peak before comparing against panel capacity.
const CapacityMultiplier = 1.25

// DefaultVoltage is assumed when a site spec omits panel voltage.
const DefaultVoltage = 240.0

type Evaluator struct {
	edition      models.Edition
	defaultVolts float64
}

func NewEvaluator(edition models.Edition, defaultVolts float64) *Evaluator {
	if defaultVolts <= 0 {
		defaultVolts = DefaultVoltage
	}
	return &Evaluator{edition: edition, defaultVolts: defaultVolts}
}

// Evaluate combines one site's historical peak with one solution's adjusted
// loads into a verdict. hasPeak=false degrades the result to an Error row
// instead of inventing numbers.
func (e *Evaluator) Evaluate(key models.SolutionKey, peakKW float64, hasPeak bool, totals demand.Totals, site models.SiteSpec) models.ComplianceResult {
	result := models.ComplianceResult{
		Solution:      key,
		AddedLoadKW:   totals.AddedLoadKW,
		RemovedLoadKW: totals.RemovedLoadKW,
	}

	if !hasPeak {
		result.Verdict = models.VerdictError
		result.Reason = fmt.Sprintf("no historical peak available for site %s", key.SiteID)
		return result
	}

	volts := site.Volts(e.defaultVolts)
	result.HistoricalPeakKW = peakKW

	basePeak := peakKW
	if e.edition == models.EditionDraft {
		// removal credit applies to the peak before the safety markup
		basePeak = peakKW - totals.RemovedLoadKW
		if basePeak < 0 {
			basePeak = 0
		}
	}

	result.TotalDemandKW = basePeak*CapacityMultiplier + totals.AddedLoadKW
	result.TotalDemandAmps = result.TotalDemandKW * 1000 / volts
	result.RemainingCapacityKW = site.PanelAmps*volts/1000 - CapacityMultiplier*peakKW

	if result.TotalDemandAmps <= site.PanelAmps {
		result.Verdict = models.VerdictPass
	} else {
		result.Verdict = models.VerdictFail
	}
	return result
}
