package montecarlo

import (
	"fmt"

	"github.com/iwvelando/business-case/internal/costmodel"
)

// Range is an inclusive [Low, High] interval a parameter is drawn from.
type Range struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Point returns the degenerate range [v, v].
func Point(v float64) Range {
	return Range{Low: v, High: v}
}

// Sample maps u in [0,1) onto the range.
func (r Range) Sample(u float64) float64 {
	return r.Low + (r.High-r.Low)*u
}

// Midpoint returns the centre of the range.
func (r Range) Midpoint() float64 {
	return (r.Low + r.High) / 2
}

// InvalidRangeError reports a range whose low bound exceeds its high bound.
type InvalidRangeError struct {
	Parameter string
	Low       float64
	High      float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range for %s: low %g is greater than high %g", e.Parameter, e.Low, e.High)
}

// Ranges holds one Range per cost driver.
type Ranges struct {
	RetainPayrollPct Range `json:"retainPayrollPct" yaml:"retainPayrollPct"`
	StopR            Range `json:"stopR" yaml:"stopR"`
	LessR            Range `json:"lessR" yaml:"lessR"`
	LowerR           Range `json:"lowerR" yaml:"lowerR"`

	StopO  Range `json:"stopO" yaml:"stopO"`
	LessO  Range `json:"lessO" yaml:"lessO"`
	LowerO Range `json:"lowerO" yaml:"lowerO"`
	PMO    Range `json:"pmo" yaml:"pmo"`
	Load   Range `json:"load" yaml:"load"`
	SolCon Range `json:"solCon" yaml:"solCon"`
	FinEng Range `json:"finEng" yaml:"finEng"`
	ColaFX Range `json:"colaFx" yaml:"colaFx"`
	Margin Range `json:"margin" yaml:"margin"`

	NpPrRatio           Range `json:"npPrRatio" yaml:"npPrRatio"`
	RetainNonpayrollPct Range `json:"retainNonpayrollPct" yaml:"retainNonpayrollPct"`
	SaveR               Range `json:"saveR" yaml:"saveR"`
	SaveO               Range `json:"saveO" yaml:"saveO"`
}

// DefaultRanges returns the ranges the calculator form starts with.
func DefaultRanges() Ranges {
	return Ranges{
		RetainPayrollPct: Range{0.28, 0.32},
		StopR:            Range{0.01, 0.05},
		LessR:            Range{0.08, 0.12},
		LowerR:           Range{0.01, 0.05},

		StopO:  Range{0.03, 0.07},
		LessO:  Range{0.38, 0.42},
		LowerO: Range{0.68, 0.72},
		PMO:    Range{0.01, 0.05},
		Load:   Range{0.28, 0.32},
		SolCon: Range{0.03, 0.07},
		FinEng: Range{0.08, 0.12},
		ColaFX: Range{0.13, 0.17},
		Margin: Range{0.28, 0.32},

		NpPrRatio:           Range{0.28, 0.32},
		RetainNonpayrollPct: Range{0.33, 0.37},
		SaveR:               Range{0.08, 0.12},
		SaveO:               Range{0.68, 0.72},
	}
}

// NamedRange pairs a range with the key it is configured under.
type NamedRange struct {
	Name  string
	Range *Range
}

// Fields lists every range in sampling order, keyed by its configuration name.
// The returned pointers alias r.
func (r *Ranges) Fields() []NamedRange {
	return []NamedRange{
		{"retainPayrollPct", &r.RetainPayrollPct},
		{"stopR", &r.StopR},
		{"lessR", &r.LessR},
		{"lowerR", &r.LowerR},
		{"stopO", &r.StopO},
		{"lessO", &r.LessO},
		{"lowerO", &r.LowerO},
		{"pmo", &r.PMO},
		{"load", &r.Load},
		{"solCon", &r.SolCon},
		{"finEng", &r.FinEng},
		{"colaFx", &r.ColaFX},
		{"margin", &r.Margin},
		{"npPrRatio", &r.NpPrRatio},
		{"retainNonpayrollPct", &r.RetainNonpayrollPct},
		{"saveR", &r.SaveR},
		{"saveO", &r.SaveO},
	}
}

// Validate returns an *InvalidRangeError for the first range with Low > High.
func (r Ranges) Validate() error {
	for _, f := range r.Fields() {
		if f.Range.Low > f.Range.High {
			return &InvalidRangeError{Parameter: f.Name, Low: f.Range.Low, High: f.Range.High}
		}
	}
	return nil
}

// Midpoint returns the parameters at the centre of every range.
func (r Ranges) Midpoint() costmodel.Parameters {
	return r.draw(func(rg Range) float64 { return rg.Midpoint() })
}

// Draw samples every parameter independently from src.
func (r Ranges) Draw(src Source) costmodel.Parameters {
	return r.draw(func(rg Range) float64 { return rg.Sample(src.Float64()) })
}

func (r Ranges) draw(pick func(Range) float64) costmodel.Parameters {
	return costmodel.Parameters{
		RetainPayrollPct: pick(r.RetainPayrollPct),
		StopR:            pick(r.StopR),
		LessR:            pick(r.LessR),
		LowerR:           pick(r.LowerR),

		StopO:  pick(r.StopO),
		LessO:  pick(r.LessO),
		LowerO: pick(r.LowerO),
		PMO:    pick(r.PMO),
		Load:   pick(r.Load),
		SolCon: pick(r.SolCon),
		FinEng: pick(r.FinEng),
		ColaFX: pick(r.ColaFX),
		Margin: pick(r.Margin),

		NpPrRatio:           pick(r.NpPrRatio),
		RetainNonpayrollPct: pick(r.RetainNonpayrollPct),
		SaveR:               pick(r.SaveR),
		SaveO:               pick(r.SaveO),
	}
}
