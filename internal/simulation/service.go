package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"multiverse-server/internal/hyperstructure"
	"multiverse-server/internal/observer"
	"multiverse-server/internal/recursor"
	"multiverse-server/internal/shared/config"
	"multiverse-server/internal/shared/errors"
	"multiverse-server/internal/shared/redis"
	"multiverse-server/internal/universe"
)

// Store is the persistence surface the service depends on; *Repository
// implements it against postgres.
type Store interface {
	CreateSimulation(ctx context.Context, sim *Simulation) error
	GetSimulation(ctx context.Context, id int) (*Simulation, error)
	ListSimulations(ctx context.Context) ([]*Simulation, error)
	UpdateSimulationProgress(ctx context.Context, id, clock, universeCount, collapseCount int) error
	InsertUniverseSnapshots(ctx context.Context, simulationID int, snapshots []UniverseSnapshot) error
	InsertCollapseReports(ctx context.Context, simulationID int, reports []*universe.CollapseReport) error
	ListLatestUniverseSnapshots(ctx context.Context, simulationID int) ([]UniverseSnapshot, error)
	ListCollapseReports(ctx context.Context, simulationID int) ([]CollapseRecord, error)
}

// run is the live in-memory state behind a simulation row.
type run struct {
	hyper    *hyperstructure.Hyperstructure
	recursor *recursor.Recursor
	observer *observer.Observer
	clock    int
	collapse int
}

// Service orchestrates live hyperstructures and persists their history.
// All mutation of a run happens under the service mutex: evolve, meta-law
// application, and feedback must never race against each other on the
// same universe.
type Service struct {
	store  Store
	cache  *redis.Client
	logger *slog.Logger

	mu   sync.Mutex
	runs map[int]*run
}

func NewService(store Store, cache *redis.Client, logger *slog.Logger) *Service {
	logger.Debug("Initializing simulation service")

	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
		runs:   make(map[int]*run),
	}
}

// Create seeds a new simulation from the request, falling back to the
// server-wide defaults for any zero field, and persists the genesis state.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Simulation, error) {
	logger := s.logger.With("component", "simulation_service", "operation", "create", "name", req.Name)
	logger.Info("Creating new simulation")

	defaults := config.GlobalConfig.Simulation
	if req.UniverseCount <= 0 {
		req.UniverseCount = defaults.UniverseCount
	}
	if req.LawsPerUniverse <= 0 {
		req.LawsPerUniverse = defaults.LawsPerUniverse
	}
	if req.MetaLawCount <= 0 {
		req.MetaLawCount = defaults.MetaLawCount
	}
	if req.Seed == 0 {
		req.Seed = defaults.Seed
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	if req.Name == "" {
		req.Name = fmt.Sprintf("multiverse_%d", time.Now().Unix())
	}

	rng := rand.New(rand.NewSource(req.Seed))
	hyper := genesis(rng, req.UniverseCount, req.LawsPerUniverse, req.MetaLawCount)

	sim := &Simulation{
		Name:          req.Name,
		Seed:          req.Seed,
		UniverseCount: len(hyper.Universes),
		MetaLawCount:  len(hyper.MetaLaws),
	}

	if err := s.store.CreateSimulation(ctx, sim); err != nil {
		return nil, err
	}

	snapshots := make([]UniverseSnapshot, 0, len(hyper.Universes))
	for _, u := range hyper.Universes {
		snapshots = append(snapshots, snapshotUniverse(u))
	}
	if err := s.store.InsertUniverseSnapshots(ctx, sim.ID, snapshots); err != nil {
		logger.Error("Failed to persist genesis snapshots", "simulation_id", sim.ID, "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.runs[sim.ID] = &run{
		hyper:    hyper,
		recursor: recursor.New(),
		observer: observer.New(config.GlobalConfig.Simulation.FeedbackMultiplier),
	}
	s.mu.Unlock()

	logger.Info("Simulation created",
		"simulation_id", sim.ID,
		"seed", sim.Seed,
		"universes", sim.UniverseCount,
		"meta_laws", sim.MetaLawCount,
	)

	return sim, nil
}

// Step drives the recursor down the requested depth and persists the
// resulting snapshots and collapse reports.
func (s *Service) Step(ctx context.Context, id, depth int) (*StepResult, error) {
	logger := s.logger.With("component", "simulation_service", "operation", "step", "simulation_id", id, "depth", depth)

	if depth < 1 {
		return nil, errors.Validation("depth must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.liveRun(id)
	if err != nil {
		return nil, err
	}

	traceBefore := len(r.recursor.DepthTrace)
	reports := r.recursor.RecursiveStep(r.hyper, depth, depth)
	steps := len(r.recursor.DepthTrace) - traceBefore

	r.clock += steps
	r.collapse += len(reports)

	snapshots := make([]UniverseSnapshot, 0, len(r.hyper.Universes))
	for _, u := range r.hyper.Universes {
		snapshots = append(snapshots, snapshotUniverse(u))
	}

	if err := s.store.InsertUniverseSnapshots(ctx, id, snapshots); err != nil {
		return nil, err
	}
	if err := s.store.InsertCollapseReports(ctx, id, reports); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSimulationProgress(ctx, id, r.clock, len(r.hyper.Universes), r.collapse); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, id)

	logger.Info("Simulation stepped", "steps", steps, "collapses", len(reports))

	return &StepResult{
		Steps:      steps,
		Clock:      r.clock,
		DepthTrace: r.recursor.DepthTrace[traceBefore:],
		Collapses:  reports,
	}, nil
}

// Feedback runs the observer across every registered universe.
func (s *Service) Feedback(ctx context.Context, id int) (*FeedbackResult, error) {
	logger := s.logger.With("component", "simulation_service", "operation", "feedback", "simulation_id", id)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.liveRun(id)
	if err != nil {
		return nil, err
	}

	result := &FeedbackResult{Multiplier: r.observer.FeedbackMultiplier}
	for _, u := range r.hyper.Universes {
		if adjusted := r.observer.Feedback(u); adjusted > 0 {
			result.UniversesTouched++
			result.LawsAdjusted += adjusted
		}
	}

	snapshots := make([]UniverseSnapshot, 0, len(r.hyper.Universes))
	for _, u := range r.hyper.Universes {
		snapshots = append(snapshots, snapshotUniverse(u))
	}
	if err := s.store.InsertUniverseSnapshots(ctx, id, snapshots); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, id)

	logger.Info("Observer feedback applied",
		"universes_touched", result.UniversesTouched,
		"laws_adjusted", result.LawsAdjusted,
	)

	return result, nil
}

// Merge merges two registered universes and registers the offspring into
// the hyperstructure (the engine itself never auto-registers).
func (s *Service) Merge(ctx context.Context, id int, req MergeRequest) (*UniverseSnapshot, error) {
	logger := s.logger.With("component", "simulation_service", "operation", "merge",
		"simulation_id", id, "first", req.First, "second", req.Second)

	if req.First == "" || req.Second == "" {
		return nil, errors.Validation("both universe names are required")
	}
	if req.First == req.Second {
		return nil, errors.Validation("cannot merge a universe with itself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.liveRun(id)
	if err != nil {
		return nil, err
	}

	first := findUniverse(r.hyper, req.First)
	second := findUniverse(r.hyper, req.Second)
	if first == nil {
		return nil, errors.NotFoundf("universe %q not found in simulation %d", req.First, id)
	}
	if second == nil {
		return nil, errors.NotFoundf("universe %q not found in simulation %d", req.Second, id)
	}
	if findUniverse(r.hyper, fmt.Sprintf("%s_x_%s", req.First, req.Second)) != nil {
		return nil, errors.Conflictf("universes %q and %q are already merged", req.First, req.Second)
	}

	merged := first.MergeWith(second)
	r.hyper.AddUniverse(merged)

	snapshot := snapshotUniverse(merged)
	if err := s.store.InsertUniverseSnapshots(ctx, id, []UniverseSnapshot{snapshot}); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSimulationProgress(ctx, id, r.clock, len(r.hyper.Universes), r.collapse); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, id)

	logger.Info("Universes merged", "result", merged.Name, "laws", len(merged.Laws))

	return &snapshot, nil
}

// Get retrieves a simulation row.
func (s *Service) Get(ctx context.Context, id int) (*Simulation, error) {
	return s.store.GetSimulation(ctx, id)
}

// List retrieves all simulation rows.
func (s *Service) List(ctx context.Context) ([]*Simulation, error) {
	return s.store.ListSimulations(ctx)
}

// Universes returns the latest persisted snapshot per universe.
func (s *Service) Universes(ctx context.Context, id int) ([]UniverseSnapshot, error) {
	if _, err := s.store.GetSimulation(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListLatestUniverseSnapshots(ctx, id)
}

// Collapses returns the persisted collapse history.
func (s *Service) Collapses(ctx context.Context, id int) ([]CollapseRecord, error) {
	if _, err := s.store.GetSimulation(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListCollapseReports(ctx, id)
}

// Graph dumps the live law dependency network.
func (s *Service) Graph(ctx context.Context, id int) (*GraphDump, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.liveRun(id)
	if err != nil {
		return nil, err
	}

	nodes, edges := r.hyper.Network.Dump()
	return &GraphDump{Nodes: nodes, Edges: edges}, nil
}

// Stats aggregates the live state, with a short-lived cache in front.
func (s *Service) Stats(ctx context.Context, id int) (*Stats, error) {
	if cached := s.cachedStats(ctx, id); cached != nil {
		return cached, nil
	}

	s.mu.Lock()
	r, err := s.liveRun(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	stats := &Stats{
		SimulationID:  id,
		Clock:         r.clock,
		UniverseCount: len(r.hyper.Universes),
		CollapseCount: r.collapse,
		GraphNodes:    r.hyper.Network.NodeCount(),
		GraphEdges:    r.hyper.Network.EdgeCount(),
	}
	for _, u := range r.hyper.Universes {
		stats.TotalLaws += len(u.Laws)
		stats.MeanEntropy += u.Entropy
		if u.Entropy > stats.MaxEntropy {
			stats.MaxEntropy = u.Entropy
		}
	}
	if len(r.hyper.Universes) > 0 {
		stats.MeanEntropy /= float64(len(r.hyper.Universes))
	}
	s.mu.Unlock()

	s.storeStats(ctx, id, stats)
	return stats, nil
}

// liveRun must be called with the mutex held.
func (s *Service) liveRun(id int) (*run, error) {
	r, ok := s.runs[id]
	if !ok {
		return nil, errors.NotFoundf("simulation %d has no live run on this server", id)
	}
	return r, nil
}

func findUniverse(h *hyperstructure.Hyperstructure, name string) *universe.Universe {
	for _, u := range h.Universes {
		if u.Name == name {
			return u
		}
	}
	return nil
}

func statsKey(id int) string {
	return fmt.Sprintf("simulation:%d:stats", id)
}

func (s *Service) cachedStats(ctx context.Context, id int) *Stats {
	if s.cache == nil {
		return nil
	}

	payload, err := s.cache.Get(ctx, statsKey(id)).Bytes()
	if err != nil {
		return nil
	}

	var stats Stats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *Service) storeStats(ctx context.Context, id int, stats *Stats) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}

	ttl := config.GlobalConfig.Redis.StatsTTL
	if err := s.cache.Set(ctx, statsKey(id), payload, ttl).Err(); err != nil {
		s.logger.Warn("Failed to cache simulation stats", "simulation_id", id, "error", err)
	}
}

func (s *Service) invalidateStats(ctx context.Context, id int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsKey(id)).Err(); err != nil {
		s.logger.Warn("Failed to invalidate stats cache", "simulation_id", id, "error", err)
	}
}
