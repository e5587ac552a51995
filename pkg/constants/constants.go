// Package constants provides shared constants for the business-case application.
package constants

// Cost model baselines. These are three independent figures: the total
// baseline is not the sum of the payroll and non-payroll baselines.
const (
	// PayrollBaseline is the annual payroll spend that all payroll buckets are carved from.
	PayrollBaseline = 100_000_000.0

	// TotalBaseline is the reference cost that the final savings fraction is measured against.
	TotalBaseline = 130_000_000.0

	// FinEngUplift and FinEngPeriods shape the financial engineering add-on:
	// outsourced × fin_eng × FinEngUplift / FinEngPeriods.
	FinEngUplift  = 1.25
	FinEngPeriods = 5.0
)

// Simulation defaults
const (
	// DefaultTrials is the number of trials per run.
	DefaultTrials = 14_999

	// ParameterCount is the number of cost drivers sampled per trial.
	ParameterCount = 17

	// DefaultDensityBins is the number of bins used when summarising a run's distribution.
	DefaultDensityBins = 60

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Palette is the fixed set of run colours, assigned by run index modulo its length.
var Palette = [...]string{
	"#A100FF", "#FF5C00", "#009EFF", "#00C49A", "#FFC107", "#FF0080", "#8BC34A", "#FF4444",
}

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable summary format
	OutputFormatJSON = "json"

	// OutputFormatPDF renders the distribution chart as a PDF document
	OutputFormatPDF = "pdf"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultPDFFile is where the pdf output format writes when no file is configured
	DefaultPDFFile = "business-case.pdf"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)

// Validation constants
const (
	// ToleranceForComparison is the tolerance for savings fraction comparisons
	ToleranceForComparison = 1e-9

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)
