package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"multiverse-server/internal/shared/errors"
	"multiverse-server/internal/shared/response"
	"multiverse-server/internal/simulation"
)

type SimulationHandler struct {
	service *simulation.Service
}

func NewSimulationHandler(service *simulation.Service) *SimulationHandler {
	return &SimulationHandler{service: service}
}

func (h *SimulationHandler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_simulation")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req simulation.CreateRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return
	}

	sim, err := h.service.Create(ctx, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, sim)
}

func (h *SimulationHandler) GetSimulations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_simulations")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	sims, err := h.service.List(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if sims == nil {
		sims = []*simulation.Simulation{}
	}

	response.Success(w, http.StatusOK, sims)
}

func (h *SimulationHandler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_simulation")

	id, err := h.simulationID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	sim, err := h.service.Get(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, sim)
}

func (h *SimulationHandler) Step(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "step_simulation")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := h.simulationID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	// An empty body means a single step.
	req := simulation.StepRequest{Depth: 1}
	if r.ContentLength != 0 {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
			return
		}
	}

	result, err := h.service.Step(ctx, id, req.Depth)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *SimulationHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "feedback_simulation")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := h.simulationID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.Feedback(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *SimulationHandler) Merge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "merge_universes")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := h.simulationID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req simulation.MergeRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return
	}

	result, err := h.service.Merge(ctx, id, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, result)
}

func (h *SimulationHandler) GetUniverses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_universes")

	id, err := h.simulationID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	snapshots, err := h.service.Universes(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if snapshots == nil {
		snapshots = []simulation.UniverseSnapshot{}
	}

	response.Success(w, http.StatusOK, snapshots)
}

func (h *SimulationHandler) GetCollapses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_collapses")

	id, err := h.simulationID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	records, err := h.service.Collapses(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if records == nil {
		records = []simulation.CollapseRecord{}
	}

	response.Success(w, http.StatusOK, records)
}

func (h *SimulationHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_graph")

	id, err := h.simulationID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	graph, err := h.service.Graph(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, graph)
}

func (h *SimulationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_stats")

	id, err := h.simulationID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	stats, err := h.service.Stats(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, stats)
}

func (h *SimulationHandler) simulationID(r *http.Request) (int, error) {
	idStr := r.PathValue("id")
	if idStr == "" {
		return 0, errors.Validation("simulation ID is required")
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.WrapValidation("invalid simulation ID format", err)
	}

	return id, nil
}
