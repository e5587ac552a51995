package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/business-case/internal/config"
	"github.com/iwvelando/business-case/internal/metrics"
	"github.com/iwvelando/business-case/internal/montecarlo"
	"github.com/iwvelando/business-case/internal/session"
	"github.com/iwvelando/business-case/pkg/constants"
	"github.com/iwvelando/business-case/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

// maxDensityBins caps the bins query parameter.
const maxDensityBins = 500

// Options wires the collaborators a handler serves. Nil fields are replaced
// with fresh defaults.
type Options struct {
	Runner      *montecarlo.Runner
	Session     *session.Session
	Metrics     *metrics.Recorder
	MaxBodySize int64
	Version     string
}

type handler struct {
	logger      *zap.Logger
	runner      *montecarlo.Runner
	session     *session.Session
	metrics     *metrics.Recorder
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the web UI and simulation API.
func NewHandler(logger *zap.Logger, opts Options) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	runner := opts.Runner
	if runner == nil {
		var err error
		runner, err = montecarlo.NewRunner(logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create runner: %w", err)
		}
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New()
	}
	recorder := opts.Metrics
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		runner:      runner,
		session:     sess,
		metrics:     recorder,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()

	// Default ranges for populating the form
	mux.HandleFunc("/api/defaults", h.handleDefaults)

	// Default ranges as a ready-to-edit CLI configuration
	mux.HandleFunc("/api/defaults/export", h.handleDefaultsExport)

	// Run one simulation and store it in the session
	mux.HandleFunc("/api/simulate", h.handleSimulate)

	// Summaries and densities of every stored run
	mux.HandleFunc("/api/runs", h.handleRuns)

	// Clear all stored runs
	mux.HandleFunc("/api/reset", h.handleReset)

	// Chart of every stored run as a PDF document
	mux.HandleFunc("/api/report.pdf", h.handleReportPDF)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	mux.Handle("/metrics", recorder.Handler())

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare embedded static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(sub)))

	return mux, nil
}

type defaultsResponse struct {
	Ranges  montecarlo.Ranges `json:"ranges"`
	Trials  int               `json:"trials"`
	Palette []string          `json:"palette"`
}

type simulateRequest struct {
	Name   string          `json:"name"`
	Ranges json.RawMessage `json:"ranges,omitempty"`
}

type simulateResponse struct {
	Run      output.RunReport `json:"run"`
	Index    int              `json:"index"`
	Warnings []string         `json:"warnings,omitempty"`
	Duration string           `json:"duration"`
}

type runsResponse struct {
	Runs []output.RunReport `json:"runs"`
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, defaultsResponse{
		Ranges:  montecarlo.DefaultRanges(),
		Trials:  h.runner.Trials(),
		Palette: constants.Palette[:],
	})
}

func (h *handler) handleDefaultsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	yamlBytes, err := marshalDefaultConfigYAML(h.runner.Trials())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleDefaultsExport")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req simulateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	ranges, err := decodeRanges(req.Ranges)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid ranges: %v", err), op)
		return
	}

	run, index, err := h.session.Submit(r.Context(), h.runner, req.Name, ranges)
	if err != nil {
		var rangeErr *montecarlo.InvalidRangeError
		if errors.As(err, &rangeErr) {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("simulation failed: %v", err), op)
		return
	}

	stored := h.session.Len()
	h.metrics.ObserveRun(run, stored)

	report := output.BuildReport([]montecarlo.Run{run}, constants.DefaultDensityBins)[0]
	warnings := config.RangeWarnings(run.Name, ranges)
	if report.Summary.Contaminated() {
		warnings = append(warnings, fmt.Sprintf("%d of %d trials are NaN or infinite", report.Summary.NonFinite, report.Summary.Count))
	}

	elapsed := time.Since(start)
	h.logger.Info("simulation computed",
		zap.String("op", op),
		zap.String("run", run.Name),
		zap.Int("trials", run.Trials()),
		zap.Int("nonFinite", report.Summary.NonFinite),
		zap.Int("storedRuns", stored),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, simulateResponse{
		Run:      report,
		Index:    index,
		Warnings: warnings,
		Duration: elapsed.String(),
	})
}

// decodeRanges overlays the supplied ranges on the defaults, so parameters
// left out of the request keep their default range.
func decodeRanges(raw json.RawMessage) (montecarlo.Ranges, error) {
	ranges := montecarlo.DefaultRanges()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ranges, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ranges); err != nil {
		return montecarlo.Ranges{}, err
	}
	return ranges, nil
}

func (h *handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	bins, err := parseBins(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleRuns")
		return
	}

	h.writeJSON(w, http.StatusOK, runsResponse{
		Runs: output.BuildReport(h.session.Runs(), bins),
	})
}

func (h *handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.session.Reset()
	h.metrics.ObserveReset()
	h.logger.Info("session reset", zap.String("op", "server.handleReset"))

	h.writeJSON(w, http.StatusOK, runsResponse{Runs: []output.RunReport{}})
}

func (h *handler) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	bins, err := parseBins(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleReportPDF")
		return
	}

	var buf bytes.Buffer
	if err := output.PDFChart(&buf, output.BuildReport(h.session.Runs(), bins)); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleReportPDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+constants.DefaultPDFFile+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed to write pdf response",
			zap.String("op", "server.handleReportPDF"),
			zap.Error(err),
		)
	}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func parseBins(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("bins"))
	if raw == "" {
		return constants.DefaultDensityBins, nil
	}
	bins, err := strconv.Atoi(raw)
	if err != nil || bins < 1 || bins > maxDensityBins {
		return 0, fmt.Errorf("bins must be an integer between 1 and %d, got %q", maxDensityBins, raw)
	}
	return bins, nil
}

// marshalDefaultConfigYAML renders a CLI configuration with one active run
// using the default ranges, keys in a stable order.
func marshalDefaultConfigYAML(trials int) ([]byte, error) {
	defaults := montecarlo.DefaultRanges()
	rangeItems := make([]orderedItem, 0, constants.ParameterCount)
	for _, f := range defaults.Fields() {
		rangeItems = append(rangeItems, orderedItem{key: f.Name, value: flowPair{f.Range.Low, f.Range.High}})
	}

	doc := orderedConfig{items: []orderedItem{
		{key: "simulation", value: orderedConfig{items: []orderedItem{
			{key: "trials", value: trials},
		}}},
		{key: "runs", value: []orderedConfig{{items: []orderedItem{
			{key: "name", value: "Baseline"},
			{key: "active", value: true},
			{key: "ranges", value: orderedConfig{items: rangeItems}},
		}}}},
		{key: "output", value: orderedConfig{items: []orderedItem{
			{key: "format", value: constants.OutputFormatPretty},
		}}},
	}}
	return yaml.Marshal(doc)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

// flowPair renders a [low, high] pair on one line.
type flowPair [2]float64

func (p flowPair) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{}
	if err := node.Encode([]float64{p[0], p[1]}); err != nil {
		return nil, err
	}
	node.Style = yaml.FlowStyle
	return node, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
