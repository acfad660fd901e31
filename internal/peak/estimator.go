package peak

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/panelcalc/engine/internal/models"
	"github.com/panelcalc/engine/pkg/logger"
)

// DefaultSafetyFactor is the markup applied to hours whose readings cannot
// have captured the true intra-hour peak.
const DefaultSafetyFactor = 1.3

// Method selects the estimation variant. MethodHEA is the reference method;
// MethodNEC applies no markup to coarse data, MethodLBNL substitutes a
// regression-derived adjustment for the flat markup.
type Method string

const (
	MethodHEA  Method = "hea"
	MethodNEC  Method = "nec"
	MethodLBNL Method = "lbnl"
)

func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodHEA, "":
		return MethodHEA, nil
	case MethodNEC:
		return MethodNEC, nil
	case MethodLBNL:
		return MethodLBNL, nil
	default:
		return "", models.NewConfigError("unsupported estimation method %q", s)
	}
}

type Options struct {
	SafetyFactor float64
	Method       Method
}

// Result carries the estimate plus the provenance of the reading that
// produced it.
type Result struct {
	PeakKW float64
	// BucketStart is the start of the hour that set the peak.
	BucketStart time.Time
	// SourceRow is the raw input row of that hour's maximum reading.
	SourceRow int
}

type Estimator struct {
	safetyFactor float64
	method       Method
}

func New(opts Options) *Estimator {
	sf := opts.SafetyFactor
	if sf <= 0 {
		sf = DefaultSafetyFactor
	}
	method := opts.Method
	if method == "" {
		method = MethodHEA
	}
	return &Estimator{safetyFactor: sf, method: method}
}

type hourBucket struct {
	start          time.Time
	maxKWh         float64
	maxSourceRow   int
	distinctTimes  int
	distinctValues int
}

// Estimate computes the conservative peak hourly demand. Readings are
// bucketed by the civil hour containing them; an hour sampled at a single
// value is assumed not to resolve the intra-hour peak and gets the safety
// markup, while genuinely varying sub-hourly samples do not.
func (e *Estimator) Estimate(readings []models.Reading) (Result, error) {
	if len(readings) == 0 {
		return Result{}, models.NewDataError("cannot estimate peak load from an empty series")
	}

	buckets := bucketByHour(readings)

	var best Result
	for _, b := range buckets {
		period := 1.0
		if b.distinctTimes > 1 {
			period = 4.0
		}

		adjusted := b.maxKWh * period
		if b.distinctValues == 1 {
			switch e.method {
			case MethodNEC:
				// no markup: the code value is the observed demand
			case MethodLBNL:
				if adjusted < 7.5 {
					adjusted = 2.2 + 1.4*adjusted
				} else {
					adjusted = 5.2 + adjusted
				}
			default:
				adjusted *= e.safetyFactor
			}
		}

		// strict comparison keeps the earliest bucket on ties
		if adjusted > best.PeakKW {
			best = Result{
				PeakKW:      adjusted,
				BucketStart: b.start,
				SourceRow:   b.maxSourceRow,
			}
		}
	}

	logger.Debug("estimated peak hourly load",
		zap.Float64("peak_kw", best.PeakKW),
		zap.Time("bucket_start", best.BucketStart),
		zap.String("method", string(e.method)),
	)

	return best, nil
}

// bucketByHour groups readings by the civil hour containing them, preserving
// chronological bucket order. Input is assumed normalized (sorted, unique).
func bucketByHour(readings []models.Reading) []hourBucket {
	var buckets []hourBucket
	seenValues := make(map[float64]struct{})

	for _, r := range readings {
		t := r.Timestamp
		start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())

		if len(buckets) == 0 || !buckets[len(buckets)-1].start.Equal(start) {
			buckets = append(buckets, hourBucket{
				start:        start,
				maxKWh:       r.KWh,
				maxSourceRow: r.SourceRow,
			})
			seenValues = map[float64]struct{}{r.KWh: {}}
			buckets[len(buckets)-1].distinctTimes = 1
			buckets[len(buckets)-1].distinctValues = 1
			continue
		}

		b := &buckets[len(buckets)-1]
		b.distinctTimes++
		if _, ok := seenValues[r.KWh]; !ok {
			seenValues[r.KWh] = struct{}{}
			b.distinctValues++
		}
		if r.KWh > b.maxKWh {
			b.maxKWh = r.KWh
			b.maxSourceRow = r.SourceRow
		}
	}

	return buckets
}
