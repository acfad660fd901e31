package demand

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/panelcalc/engine/internal/models"
	"github.com/panelcalc/engine/pkg/logger"
)

// Continuous-load markup for vehicle charging equipment.
var evContinuousFactor = decimal.NewFromFloat(1.25)

// Minimum per-unit load assumed for an electric clothes dryer, in watts.
var dryerMinWatts = decimal.NewFromInt(5000)

// Row pairs an input load row with its code-adjusted wattage.
type Row struct {
	models.LoadRow
	AdjustedWatts decimal.Decimal
}

// Table is the explicit tabular value the rule stages operate on. Every
// stage consumes a table and returns a fresh one; nothing is mutated in
// place, so the stage sequence can be tested independently.
type Table struct {
	rows []Row
}

func (t Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Totals summarizes one solution after rule application.
type Totals struct {
	AddedLoadKW   float64
	RemovedLoadKW float64
	Rows          []Row
}

// Engine converts raw appliance rows into code-adjusted loads for one
// edition of the demand code.
type Engine struct {
	edition models.Edition
}

func New(edition models.Edition) *Engine {
	return &Engine{edition: edition}
}

// Evaluate runs the full rule pipeline over one solution's rows.
func (e *Engine) Evaluate(rows []models.LoadRow) Totals {
	t := newTable(rows)
	t = t.applyBaseFactors(e.edition)
	if e.edition == models.EditionDraft {
		t = t.applyCookingBanding(e.edition)
	}
	t = t.applyInterlocks()

	totals := t.totals(e.edition)
	logger.Debug("applied demand factors",
		zap.Int("rows", len(rows)),
		zap.Float64("added_kw", totals.AddedLoadKW),
		zap.Float64("removed_kw", totals.RemovedLoadKW),
		zap.String("edition", string(e.edition)),
	)
	return totals
}

// newTable copies the input rows and assigns device-category tags where the
// caller has not already done so.
func newTable(rows []models.LoadRow) Table {
	out := make([]Row, len(rows))
	for i, r := range rows {
		if r.Category == "" {
			r.Category = models.TagDeviceType(r.DeviceType)
		}
		out[i] = Row{LoadRow: r}
	}
	return Table{rows: out}
}

// applyBaseFactors computes each row's adjusted wattage from nameplate data.
// An explicit edition-specific demand factor always wins over the built-in
// rules.
func (t Table) applyBaseFactors(edition models.Edition) Table {
	out := t.Rows()
	for i := range out {
		r := &out[i]
		watts := decimal.NewFromFloat(r.NameplateWatts)
		units := decimal.NewFromInt(int64(r.Units()))

		if df, ok := r.DemandFactor(edition); ok {
			r.AdjustedWatts = watts.Mul(units).Mul(decimal.NewFromFloat(df))
			continue
		}

		switch {
		case r.Category == models.CategoryEVCharger:
			r.AdjustedWatts = watts.Mul(units).Mul(evContinuousFactor)
		case r.Category == models.CategoryDryer && r.IsElectric():
			perUnit := watts
			if perUnit.LessThan(dryerMinWatts) {
				perUnit = dryerMinWatts
			}
			r.AdjustedWatts = perUnit.Mul(units)
		default:
			// cooking rows start at raw nameplate; the draft-edition
			// banding stage reworks the ones above its threshold
			r.AdjustedWatts = watts.Mul(units)
		}
	}
	return Table{rows: out}
}

// applyInterlocks zeroes rows whose load controls prevent them from drawing
// concurrently with the rest of the solution. Circuit-pausing rows never
// contribute; within a circuit-sharing group only the worst-case (largest
// adjusted) row survives.
func (t Table) applyInterlocks() Table {
	out := t.Rows()

	for i := range out {
		if out[i].LoadControl == models.ControlCircuitPausing {
			out[i].AdjustedWatts = decimal.Zero
		}
	}

	keeper := make(map[string]int)
	for i := range out {
		if out[i].LoadControl != models.ControlCircuitSharing {
			continue
		}
		g := out[i].LoadControlGroup
		j, ok := keeper[g]
		if !ok || out[i].AdjustedWatts.GreaterThan(out[j].AdjustedWatts) {
			keeper[g] = i
		}
	}
	for i := range out {
		if out[i].LoadControl != models.ControlCircuitSharing {
			continue
		}
		if keeper[out[i].LoadControlGroup] != i {
			out[i].AdjustedWatts = decimal.Zero
		}
	}

	return Table{rows: out}
}

// totals sums adjusted wattages by load status. The legacy edition permits
// no removal credit.
func (t Table) totals(edition models.Edition) Totals {
	added := decimal.Zero
	removed := decimal.Zero
	for _, r := range t.rows {
		switch r.Status {
		case models.LoadNew:
			added = added.Add(r.AdjustedWatts)
		case models.LoadRemoved:
			removed = removed.Add(r.AdjustedWatts)
		}
	}

	totals := Totals{Rows: t.Rows()}
	totals.AddedLoadKW, _ = added.Div(decimal.NewFromInt(1000)).Float64()
	if edition == models.EditionDraft {
		totals.RemovedLoadKW, _ = removed.Div(decimal.NewFromInt(1000)).Float64()
	}
	return totals
}
