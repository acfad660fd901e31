package demand

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/panelcalc/engine/internal/models"
)

// Cooking-demand banding thresholds, in watts per unit. Units at or below
// bandingThreshold bypass banding entirely; the three bands split the rest.
const (
	bandingThreshold = 1750
	bandBLower       = 3500
	bandBUpper       = 8750
	bandCRatingFloor = 12000
)

// Count-keyed demand factors for bands A and B. The factor strictly
// decreases as the unit count grows; counts beyond the table use its lowest
// defined factor.
var (
	bandAFactors = []float64{0.80, 0.75, 0.70, 0.66, 0.62, 0.59, 0.56, 0.53, 0.51, 0.49}
	bandBFactors = []float64{0.80, 0.65, 0.55, 0.50, 0.45, 0.43, 0.40, 0.36, 0.35, 0.34}
)

func bandFactor(table []float64, count int) float64 {
	if count <= 0 {
		return 0
	}
	if count > len(table) {
		return table[len(table)-1]
	}
	return table[count-1]
}

func bandsParticipant(r Row, edition models.Edition) bool {
	if r.Category != models.CategoryCooking || !r.IsElectric() {
		return false
	}
	if r.NameplateWatts <= bandingThreshold {
		return false
	}
	// an explicit demand factor already settled this row
	if _, ok := r.DemandFactor(edition); ok {
		return false
	}
	return true
}

// applyCookingBanding aggregates the eligible cooking units of a solution
// into a single banded demand and then hands each originating row back its
// proportional share, so downstream interlock resolution still works per
// row.
func (t Table) applyCookingBanding(edition models.Edition) Table {
	out := t.Rows()

	var participants []int
	for i := range out {
		if bandsParticipant(out[i], edition) {
			participants = append(participants, i)
		}
	}
	if len(participants) == 0 {
		return Table{rows: out}
	}

	var bandA, bandB, bandC []float64
	for _, i := range participants {
		r := out[i]
		for u := 0; u < r.Units(); u++ {
			switch {
			case r.NameplateWatts < bandBLower:
				bandA = append(bandA, r.NameplateWatts)
			case r.NameplateWatts <= bandBUpper:
				bandB = append(bandB, r.NameplateWatts)
			default:
				bandC = append(bandC, r.NameplateWatts)
			}
		}
	}

	combined := bandTotal(bandA, bandAFactors).
		Add(bandTotal(bandB, bandBFactors)).
		Add(bandCTotal(bandC)).
		Round(3)

	redistribute(out, participants, combined)
	return Table{rows: out}
}

// bandTotal sums raw ratings in a band and scales them by the count-keyed
// demand factor.
func bandTotal(ratings []float64, factors []float64) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, w := range ratings {
		sum = sum.Add(decimal.NewFromFloat(w))
	}
	return sum.Mul(decimal.NewFromFloat(bandFactor(factors, len(ratings))))
}

// bandCTotal computes the high-rating band's demand in watts: a base demand
// keyed by unit count, scaled up 5% per whole kilowatt by which the
// floor-adjusted average rating exceeds the rating floor.
func bandCTotal(ratings []float64) decimal.Decimal {
	n := len(ratings)
	if n == 0 {
		return decimal.Zero
	}

	var baseKW float64
	if n <= 5 {
		baseKW = 8 + 3*float64(n-1)
	} else {
		baseKW = 20 + 3*float64(n-5)
	}

	var sum float64
	for _, w := range ratings {
		if w < bandCRatingFloor {
			w = bandCRatingFloor
		}
		sum += w
	}
	avg := sum / float64(n)

	if excess := avg - bandCRatingFloor; excess > 0 {
		// half a kilowatt or more of excess rounds up
		excessKW := math.Floor(excess/1000 + 0.5)
		baseKW *= 1 + 0.05*excessKW
	}

	return decimal.NewFromFloat(baseKW * 1000)
}

// redistribute allocates the combined banded demand back to the originating
// rows by raw-rating share. Shares are truncated to a milliwatt and the
// rounding residual is assigned largest-remainder-first (ties broken by the
// larger raw rating, then input order), so the per-row values always sum
// exactly to the combined demand.
func redistribute(rows []Row, participants []int, combined decimal.Decimal) {
	milli := decimal.New(1, -3)

	rawTotal := decimal.Zero
	raws := make([]decimal.Decimal, len(participants))
	for k, i := range participants {
		raw := decimal.NewFromFloat(rows[i].NameplateWatts).
			Mul(decimal.NewFromInt(int64(rows[i].Units())))
		raws[k] = raw
		rawTotal = rawTotal.Add(raw)
	}
	if rawTotal.IsZero() {
		return
	}

	type share struct {
		k         int
		allocated decimal.Decimal
		remainder decimal.Decimal
	}
	shares := make([]share, len(participants))
	floorSum := decimal.Zero
	for k := range participants {
		exact := combined.Mul(raws[k]).Div(rawTotal)
		floor := exact.RoundFloor(3)
		shares[k] = share{k: k, allocated: floor, remainder: exact.Sub(floor)}
		floorSum = floorSum.Add(floor)
	}

	steps := combined.Sub(floorSum).Div(milli).Round(0).IntPart()

	sort.SliceStable(shares, func(a, b int) bool {
		if !shares[a].remainder.Equal(shares[b].remainder) {
			return shares[a].remainder.GreaterThan(shares[b].remainder)
		}
		return raws[shares[a].k].GreaterThan(raws[shares[b].k])
	})

	for s := int64(0); s < steps && len(shares) > 0; s++ {
		shares[int(s)%len(shares)].allocated = shares[int(s)%len(shares)].allocated.Add(milli)
	}

	for _, sh := range shares {
		rows[participants[sh.k]].AdjustedWatts = sh.allocated
	}
}
