package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/business-case/internal/config"
	"github.com/iwvelando/business-case/internal/forecast"
	"github.com/iwvelando/business-case/internal/logging"
	"github.com/iwvelando/business-case/internal/montecarlo"
	"github.com/iwvelando/business-case/internal/session"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/output"
	"github.com/iwvelando/business-case/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json, pdf")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	bins := flag.Int("bins", constants.DefaultDensityBins, "number of density bins for chart output")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	runner, err := montecarlo.NewRunner(logger, conf.Simulation.RunnerOptions()...)
	if err != nil {
		logger.Fatal("failed to create runner",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	results, err := forecast.GetForecast(context.Background(), logger, *conf, runner, session.New())
	if err != nil {
		logger.Fatal("failed to compute runs",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	reports := output.BuildReport(results, *bins)

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(reports)
	case constants.OutputFormatCSV:
		output.CsvFormat(reports)
	case constants.OutputFormatJSON:
		if err := output.JSONFormat(os.Stdout, reports); err != nil {
			logger.Fatal("failed to write json output",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	case constants.OutputFormatPDF:
		if err := writePDF(conf.Output.File, reports); err != nil {
			logger.Fatal("failed to write pdf output",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}

func writePDF(path string, reports []output.RunReport) error {
	if path == "" {
		path = constants.DefaultPDFFile
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := output.PDFChart(f, reports); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	fmt.Printf("Chart written to %s\n", path)
	return nil
}
