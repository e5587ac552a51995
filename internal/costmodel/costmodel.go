// Package costmodel implements the deterministic outsourcing business case:
// a pure mapping from seventeen cost drivers to a total savings fraction.
package costmodel

import "github.com/iwvelando/business-case/pkg/constants"

// Parameters holds one scenario's cost drivers. Every field is a fraction,
// nominally in [0,1]. Values are not validated; Margin must be below 1.
type Parameters struct {
	// Payroll retained
	RetainPayrollPct float64 `json:"retainPayrollPct" yaml:"retainPayrollPct"`
	StopR            float64 `json:"stopR" yaml:"stopR"`
	LessR            float64 `json:"lessR" yaml:"lessR"`
	LowerR           float64 `json:"lowerR" yaml:"lowerR"`

	// Payroll outsourced
	StopO  float64 `json:"stopO" yaml:"stopO"`
	LessO  float64 `json:"lessO" yaml:"lessO"`
	LowerO float64 `json:"lowerO" yaml:"lowerO"`
	PMO    float64 `json:"pmo" yaml:"pmo"`
	Load   float64 `json:"load" yaml:"load"`
	SolCon float64 `json:"solCon" yaml:"solCon"`
	FinEng float64 `json:"finEng" yaml:"finEng"`
	ColaFX float64 `json:"colaFx" yaml:"colaFx"`
	Margin float64 `json:"margin" yaml:"margin"`

	// Non-payroll
	NpPrRatio           float64 `json:"npPrRatio" yaml:"npPrRatio"`
	RetainNonpayrollPct float64 `json:"retainNonpayrollPct" yaml:"retainNonpayrollPct"`
	SaveR               float64 `json:"saveR" yaml:"saveR"`
	SaveO               float64 `json:"saveO" yaml:"saveO"`
}

// PayrollBreakdown holds the intermediate payroll amounts.
type PayrollBreakdown struct {
	Baseline   float64
	Retained   float64
	Outsourced float64

	NetRetained float64
	Unloaded    float64
	PMOAdd      float64
	LoadAdd     float64
	SolConAdd   float64
	ColaFXAdd   float64
	FinEngAdd   float64
	Loaded      float64

	NetOutsourced float64
	Total         float64
}

// NonPayrollBreakdown holds the intermediate non-payroll amounts.
type NonPayrollBreakdown struct {
	Baseline   float64
	Retained   float64
	Outsourced float64

	NetRetained float64
	Gross       float64
	SolConAdd   float64
	LoadAdd     float64
	ColaFXAdd   float64
	NewCost     float64

	NetOutsourced float64
	Total         float64
}

// Breakdown is the full derivation of one evaluation.
type Breakdown struct {
	Payroll      PayrollBreakdown
	NonPayroll   NonPayrollBreakdown
	TotalNewCost float64
	TotalSavings float64
}

// Evaluate computes the full breakdown for p.
func Evaluate(p Parameters) Breakdown {
	payroll := evaluatePayroll(p)
	nonPayroll := evaluateNonPayroll(p)

	total := payroll.Total + nonPayroll.Total
	return Breakdown{
		Payroll:      payroll,
		NonPayroll:   nonPayroll,
		TotalNewCost: total,
		TotalSavings: (constants.TotalBaseline - total) / constants.TotalBaseline,
	}
}

// TotalSavings returns the savings fraction for p. Positive values are net
// savings against the total baseline, negative values a net cost increase.
// Margin == 1 yields NaN or ±Inf.
func TotalSavings(p Parameters) float64 {
	return Evaluate(p).TotalSavings
}

func evaluatePayroll(p Parameters) PayrollBreakdown {
	b := PayrollBreakdown{Baseline: constants.PayrollBaseline}
	b.Retained = b.Baseline * p.RetainPayrollPct
	b.Outsourced = b.Baseline * (1 - p.RetainPayrollPct)

	b.NetRetained = b.Retained * (1 - p.StopR) * (1 - p.LessR) * (1 - p.LowerR)

	b.Unloaded = b.Outsourced * (1 - p.StopO) * (1 - p.LessO) * (1 - p.LowerO)
	b.PMOAdd = b.Unloaded * p.PMO
	b.LoadAdd = (b.Unloaded + b.PMOAdd) * p.Load
	b.SolConAdd = (b.Unloaded + b.PMOAdd + b.LoadAdd) * p.SolCon
	b.ColaFXAdd = (b.Unloaded + b.PMOAdd + b.LoadAdd + b.SolConAdd) * p.ColaFX
	b.FinEngAdd = b.Outsourced * p.FinEng * constants.FinEngUplift / constants.FinEngPeriods

	// PMOAdd feeds the cascade but is not part of the loaded cost.
	b.Loaded = b.Unloaded + b.ColaFXAdd + b.LoadAdd + b.SolConAdd + b.FinEngAdd

	b.NetOutsourced = b.Loaded + b.Loaded/(1-p.Margin) - b.Loaded
	b.Total = b.NetRetained + b.NetOutsourced
	return b
}

func evaluateNonPayroll(p Parameters) NonPayrollBreakdown {
	b := NonPayrollBreakdown{Baseline: p.NpPrRatio * constants.PayrollBaseline}
	b.Retained = p.RetainNonpayrollPct * b.Baseline
	b.Outsourced = (1 - p.RetainNonpayrollPct) * b.Baseline

	b.NetRetained = b.Retained * (1 - p.SaveR)

	b.Gross = b.Outsourced * (1 - p.SaveO)
	b.SolConAdd = b.Gross * p.SolCon
	b.LoadAdd = (b.Gross + b.SolConAdd) * p.Load
	b.ColaFXAdd = (b.Gross + b.SolConAdd + b.LoadAdd) * p.ColaFX
	b.NewCost = b.Gross + b.SolConAdd + b.LoadAdd + b.ColaFXAdd

	b.NetOutsourced = b.NewCost / (1 - p.Margin)
	b.Total = b.NetRetained + b.NetOutsourced
	return b
}
