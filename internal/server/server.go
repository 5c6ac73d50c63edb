// Package server exposes the loan calculator, saved records, county rate
// tables and the geocoder over a JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/internal/geocode"
	"github.com/iwvelando/auto-loan-calc/internal/rates"
	"github.com/iwvelando/auto-loan-calc/internal/store"
	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/iwvelando/auto-loan-calc/pkg/format"
	"github.com/iwvelando/auto-loan-calc/pkg/output"
	"github.com/iwvelando/auto-loan-calc/pkg/priceexpr"
	"go.uber.org/zap"
)

// Deps are the collaborators the handlers call into. Nil members fall back
// to in-memory defaults.
type Deps struct {
	Repo     store.Repository
	Rates    *rates.Provider
	Geocoder geocode.Geocoder
}

// Options tune the handler.
type Options struct {
	MaxUploadSize int64
	Version       string
	Calc          calculator.Options
	// Limiter, when set, wraps every route.
	Limiter *RateLimiter
}

type handler struct {
	logger        *zap.Logger
	repo          store.Repository
	rates         *rates.Provider
	geocoder      geocode.Geocoder
	calc          calculator.Options
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, deps Deps, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Repo == nil {
		deps.Repo = store.NewMemoryRepository()
	}
	if deps.Rates == nil {
		deps.Rates = rates.NewProvider(logger, nil)
	}
	if deps.Geocoder == nil {
		deps.Geocoder = geocode.NewFallbackGeocoder(logger, nil)
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		repo:          deps.Repo,
		rates:         deps.Rates,
		geocoder:      deps.Geocoder,
		calc:          opts.Calc,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/compute", h.handleCompute)
	mux.HandleFunc("POST /api/price/evaluate", h.handleEvaluate)
	mux.HandleFunc("GET /api/version", h.handleVersion)

	mux.HandleFunc("GET /api/vehicles", h.handleListVehicles)
	mux.HandleFunc("POST /api/vehicles", h.handleCreateVehicle)
	mux.HandleFunc("GET /api/vehicles/{id}", h.handleGetVehicle)
	mux.HandleFunc("PUT /api/vehicles/{id}", h.handleUpdateVehicle)
	mux.HandleFunc("DELETE /api/vehicles/{id}", h.handleDeleteVehicle)
	mux.HandleFunc("GET /api/vehicles/{id}/distance", h.handleVehicleDistance)

	mux.HandleFunc("GET /api/scenarios", h.handleListScenarios)
	mux.HandleFunc("POST /api/scenarios", h.handleCreateScenario)
	mux.HandleFunc("GET /api/scenarios/{id}", h.handleGetScenario)
	mux.HandleFunc("GET /api/scenarios/{id}/export", h.handleExportScenario)
	mux.HandleFunc("DELETE /api/scenarios/{id}", h.handleDeleteScenario)

	mux.HandleFunc("GET /api/feesets", h.handleListFeeSets)

	mux.HandleFunc("GET /api/rates", h.handleRates)
	mux.HandleFunc("POST /api/rates/import", h.handleRatesImport)
	mux.HandleFunc("GET /api/geocode", h.handleGeocode)

	if opts.Limiter != nil {
		return RateLimitMiddleware(opts.Limiter, mux)
	}
	return mux
}

// computeRequest is a LoanInputs snapshot plus where the car is taxed. A
// vehicle ID fills MSRP and county when those are left blank.
type computeRequest struct {
	calculator.LoanInputs
	County    string `json:"county,omitempty"`
	VehicleID string `json:"vehicleId,omitempty"`
}

func (h *handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompute"
	start := time.Now()

	var req computeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode inputs: %v", err), op)
		return
	}

	var vehicleName string
	if req.VehicleID != "" {
		v, err := h.repo.GetVehicle(r.Context(), req.VehicleID)
		if err != nil {
			h.respondStoreError(w, err, op)
			return
		}
		vehicleName = v.Name
		if req.MSRP <= 0 {
			req.MSRP = v.MSRP
		}
		if strings.TrimSpace(req.County) == "" {
			req.County = v.County
		}
	}

	report := h.compute(req.LoanInputs, req.County)
	report.Vehicle = vehicleName

	h.logger.Info("loan computed",
		zap.String("op", op),
		zap.String("county", report.County),
		zap.Float64("monthlyPayment", report.Outputs.MonthlyPayment),
		zap.Duration("duration", time.Since(start)),
	)

	results := []calculator.Report{report}
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", constants.OutputFormatJSON:
		h.writeJSON(w, http.StatusOK, report)
	case constants.OutputFormatCSV:
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, output.CsvString(results)); err != nil {
			h.logger.Error("failed to write CSV response", zap.String("op", op), zap.Error(err))
		}
	case constants.OutputFormatPDF:
		data, err := output.PDFBytes(results)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render deal sheet: %v", err), op)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="deal-sheet.pdf"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			h.logger.Error("failed to write PDF response", zap.String("op", op), zap.Error(err))
		}
	default:
		h.respondErrorWithOp(w, http.StatusBadRequest, "format must be json, csv or pdf", op)
	}
}

// compute resolves county against the active rate table and runs the
// pipeline once.
func (h *handler) compute(in calculator.LoanInputs, county string) calculator.Report {
	table := h.rates.Table()
	rc, lookup := table.Context(county)

	opts := h.calc
	if opts.DefaultCountyRate == nil {
		opts.DefaultCountyRate = calculator.Float(table.DefaultRate())
	}

	out := calculator.ComputeAllWithOptions(h.logger, in, rc, opts)
	rc.CountyRate = out.CountyRate

	return calculator.Report{
		Name:    "Current deal",
		County:  lookup.County,
		Inputs:  in,
		Rates:   rc,
		Outputs: out,
	}
}

type evaluateRequest struct {
	Expr string  `json:"expr"`
	MSRP float64 `json:"msrp"`
}

type evaluateResponse struct {
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
	Kind      string  `json:"kind"`
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluate"

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode expression: %v", err), op)
		return
	}

	fp := priceexpr.ParseFinalPrice(req.Expr)
	value := fp.Resolve(req.MSRP)
	if fp.Kind() == priceexpr.Blank {
		value = req.MSRP
	}
	h.writeJSON(w, http.StatusOK, evaluateResponse{
		Value:     value,
		Formatted: format.Currency(value),
		Kind:      fp.Kind().String(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

type rateLookupResponse struct {
	rates.Lookup
	StateRate float64 `json:"stateRate"`
	CountyCap float64 `json:"countyCap"`
}

func (h *handler) handleRates(w http.ResponseWriter, r *http.Request) {
	table := h.rates.Table()
	county := strings.TrimSpace(r.URL.Query().Get("county"))
	if county == "" {
		h.writeJSON(w, http.StatusOK, table)
		return
	}

	rc, lookup := table.Context(county)
	h.writeJSON(w, http.StatusOK, rateLookupResponse{
		Lookup:    lookup,
		StateRate: rc.StateRate,
		CountyCap: rc.CountyCap,
	})
}

func (h *handler) handleRatesImport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRatesImport"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing rate table file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read rate table: %v", err), op)
		return
	}

	table, err := h.rates.Import(r.Context(), header.Filename, buf.Bytes())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to import rate table: %v", err), op)
		return
	}

	h.logger.Info(fmt.Sprintf("imported rate table %s", header.Filename),
		zap.String("op", op),
		zap.Int("counties", len(table.Counties)),
	)
	h.writeJSON(w, http.StatusOK, table)
}

func (h *handler) handleGeocode(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGeocode"

	loc, err := h.geocoder.Geocode(r.Context(), r.URL.Query().Get("q"))
	switch {
	case errors.Is(err, geocode.ErrEmptyQuery):
		h.respondErrorWithOp(w, http.StatusBadRequest, "query parameter q is required", op)
		return
	case geocode.IsNoMatch(err):
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	case err != nil:
		h.respondErrorWithOp(w, http.StatusBadGateway, fmt.Sprintf("geocoding failed: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		geocode.Location
		Normalized string `json:"normalized"`
	}{loc, loc.Normalized()})
}

// respondStoreError maps repository errors onto status codes.
func (h *handler) respondStoreError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
	case errors.Is(err, store.ErrInvalid):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
	}
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
	if err := writeJSONStatus(w, status, payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSONStatus(w, status, map[string]string{"error": msg})
}

func writeJSONStatus(w http.ResponseWriter, status int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}
