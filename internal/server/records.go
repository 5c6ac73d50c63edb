package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/iwvelando/auto-loan-calc/internal/config"
	"github.com/iwvelando/auto-loan-calc/internal/geocode"
	"github.com/iwvelando/auto-loan-calc/internal/store"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func (h *handler) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.repo.ListVehicles(r.Context())
	if err != nil {
		h.respondStoreError(w, err, "server.handleListVehicles")
		return
	}
	if vehicles == nil {
		vehicles = []store.Vehicle{}
	}
	h.writeJSON(w, http.StatusOK, vehicles)
}

func (h *handler) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.repo.GetVehicle(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, "server.handleGetVehicle")
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

func (h *handler) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateVehicle"

	var v store.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode vehicle: %v", err), op)
		return
	}
	h.locate(r.Context(), &v)

	created, err := h.repo.CreateVehicle(r.Context(), v)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *handler) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpdateVehicle"

	var v store.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode vehicle: %v", err), op)
		return
	}
	v.ID = r.PathValue("id")
	h.locate(r.Context(), &v)

	updated, err := h.repo.UpdateVehicle(r.Context(), v)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *handler) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteVehicle(r.Context(), r.PathValue("id")); err != nil {
		h.respondStoreError(w, err, "server.handleDeleteVehicle")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type distanceResponse struct {
	From  geocode.Location `json:"from"`
	Miles float64          `json:"miles"`
}

// handleVehicleDistance reports how far the dealer is from the address in q.
func (h *handler) handleVehicleDistance(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleVehicleDistance"

	v, err := h.repo.GetVehicle(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}

	from, err := h.geocoder.Geocode(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to locate origin: %v", err), op)
		return
	}

	miles, ok := geocode.HaversineMiles(from, geocode.Location{Lat: v.Latitude, Lon: v.Longitude})
	if !ok {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, "coordinates unknown for origin or dealer", op)
		return
	}
	h.writeJSON(w, http.StatusOK, distanceResponse{From: from, Miles: miles})
}

// locate fills the county and coordinates of v from its location text.
// Geocoding problems leave v as entered.
func (h *handler) locate(ctx context.Context, v *store.Vehicle) {
	if strings.TrimSpace(v.Location) == "" {
		return
	}
	if v.County != "" && v.Latitude != nil && v.Longitude != nil {
		return
	}

	loc, err := h.geocoder.Geocode(ctx, v.Location)
	if err != nil {
		h.logger.Warn(fmt.Sprintf("could not geocode vehicle location %q", v.Location),
			zap.String("op", "server.locate"),
			zap.Error(err),
		)
		return
	}
	if v.County == "" {
		v.County = loc.County
	}
	if loc.HasCoordinates() && (v.Latitude == nil || v.Longitude == nil) {
		v.Latitude, v.Longitude = loc.Lat, loc.Lon
	}
}

func (h *handler) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.repo.ListScenarios(r.Context())
	if err != nil {
		h.respondStoreError(w, err, "server.handleListScenarios")
		return
	}
	if scenarios == nil {
		scenarios = []store.Scenario{}
	}
	h.writeJSON(w, http.StatusOK, scenarios)
}

func (h *handler) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.GetScenario(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, "server.handleGetScenario")
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

// handleExportScenario renders a saved scenario as a configuration snippet
// the compute command can run.
func (h *handler) handleExportScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportScenario"

	s, err := h.repo.GetScenario(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}

	snippet := struct {
		Scenarios []config.Scenario `yaml:"scenarios"`
	}{
		Scenarios: []config.Scenario{{Name: s.Title, Active: true, Inputs: s.Snapshot}},
	}
	data, err := yaml.Marshal(snippet)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode scenario: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write YAML response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateScenario"

	var s store.Scenario
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode scenario: %v", err), op)
		return
	}

	created, err := h.repo.CreateScenario(r.Context(), s)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *handler) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteScenario(r.Context(), r.PathValue("id")); err != nil {
		h.respondStoreError(w, err, "server.handleDeleteScenario")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleListFeeSets(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListFeeSets"

	q := r.URL.Query()
	filter := store.FeeSetFilter{
		Kind:       store.FeeSetKind(strings.ToLower(q.Get("kind"))),
		StateCode:  q.Get("state"),
		CountyFIPS: q.Get("county"),
	}
	switch filter.Kind {
	case "", store.FeeSetDealer, store.FeeSetGov:
	default:
		h.respondErrorWithOp(w, http.StatusBadRequest, "kind must be dealer or gov", op)
		return
	}

	sets, err := h.repo.ListFeeSets(r.Context(), filter)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	if sets == nil {
		sets = []store.FeeSet{}
	}
	h.writeJSON(w, http.StatusOK, sets)
}
