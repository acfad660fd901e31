package models

import (
	"fmt"
	"strings"
	"time"
)

// Reading is one normalized meter interval: the interval's start and the
// energy measured over it.
type Reading struct {
	Timestamp time.Time
	KWh       float64
	// SourceRow is the row index in the raw input table, kept for
	// diagnostics after rows are dropped and reordered.
	SourceRow int
}

// SiteSpec describes the electrical panel under evaluation.
type SiteSpec struct {
	PanelAmps  float64
	PanelVolts float64
}

// Volts returns the panel voltage, falling back to the given default when
// the spec omits it.
func (s SiteSpec) Volts(def float64) float64 {
	if s.PanelVolts > 0 {
		return s.PanelVolts
	}
	return def
}

type LoadStatus string

const (
	LoadNew      LoadStatus = "new"
	LoadRemoved  LoadStatus = "removed"
	LoadExisting LoadStatus = "existing"
)

type LoadControl string

const (
	ControlNone           LoadControl = "none"
	ControlCircuitPausing LoadControl = "circuit_pausing"
	ControlCircuitSharing LoadControl = "circuit_sharing"
)

type Edition string

const (
	EditionLegacy Edition = "legacy"
	EditionDraft  Edition = "draft"
)

// ParseEdition validates a code-edition selector supplied by the caller.
func ParseEdition(s string) (Edition, error) {
	switch Edition(strings.ToLower(strings.TrimSpace(s))) {
	case EditionLegacy:
		return EditionLegacy, nil
	case EditionDraft:
		return EditionDraft, nil
	default:
		return "", NewConfigError("unsupported code edition %q", s)
	}
}

// LoadRow is one appliance line item in a proposed solution.
type LoadRow struct {
	SiteID             string
	EquipmentComboID   string
	LoadControlComboID string
	ApplianceID        string
	Status             LoadStatus
	DeviceType         string
	Category           DeviceCategory
	NameplateWatts     float64
	UnitCount          int
	LoadControl        LoadControl
	LoadControlGroup   string
	FuelType           string
	DemandFactorLegacy *float64
	DemandFactorDraft  *float64
}

// Units returns the unit count with the documented default of 1.
func (r LoadRow) Units() int {
	if r.UnitCount <= 0 {
		return 1
	}
	return r.UnitCount
}

// IsElectric reports whether the row's fuel type is electric (the default).
func (r LoadRow) IsElectric() bool {
	ft := strings.ToLower(strings.TrimSpace(r.FuelType))
	return ft == "" || ft == "electric"
}

// DemandFactor returns the explicit edition-specific demand factor, if the
// row carries one.
func (r LoadRow) DemandFactor(ed Edition) (float64, bool) {
	switch ed {
	case EditionDraft:
		if r.DemandFactorDraft != nil {
			return *r.DemandFactorDraft, true
		}
	default:
		if r.DemandFactorLegacy != nil {
			return *r.DemandFactorLegacy, true
		}
	}
	return 0, false
}

// SolutionKey identifies one proposed set of load changes for a site.
type SolutionKey struct {
	SiteID             string
	EquipmentComboID   string
	LoadControlComboID string
}

func (k SolutionKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.SiteID, k.EquipmentComboID, k.LoadControlComboID)
}

// Key returns the solution grouping key for a row.
func (r LoadRow) Key() SolutionKey {
	return SolutionKey{
		SiteID:             r.SiteID,
		EquipmentComboID:   r.EquipmentComboID,
		LoadControlComboID: r.LoadControlComboID,
	}
}

// GapRecord describes one missing-data range in a meter series.
type GapRecord struct {
	Start            time.Time
	End              time.Time
	Duration         time.Duration
	MissingIntervals int
}

type Verdict string

const (
	VerdictPass  Verdict = "PASS"
	VerdictFail  Verdict = "FAIL"
	VerdictError Verdict = "Error"
)

// ComplianceResult is the outcome of evaluating one solution against one
// site's historical peak.
type ComplianceResult struct {
	Solution            SolutionKey
	AddedLoadKW         float64
	RemovedLoadKW       float64
	HistoricalPeakKW    float64
	TotalDemandKW       float64
	TotalDemandAmps     float64
	RemainingCapacityKW float64
	Verdict             Verdict
	Reason              string
}
