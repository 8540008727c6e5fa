package simulation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"multiverse-server/internal/shared/database"
	"multiverse-server/internal/shared/errors"
	"multiverse-server/internal/universe"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing simulation repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateSimulation(ctx context.Context, sim *Simulation) error {
	query := `
		INSERT INTO simulations (name, seed, clock, universe_count, meta_law_count, collapse_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		sim.Name,
		sim.Seed,
		sim.Clock,
		sim.UniverseCount,
		sim.MetaLawCount,
		sim.CollapseCount,
	).Scan(&sim.ID, &sim.CreatedAt, &sim.UpdatedAt)

	if err != nil {
		r.logger.Error("Failed to create simulation", "error", err)
		return fmt.Errorf("failed to create simulation: %w", err)
	}

	return nil
}

func (r *Repository) GetSimulation(ctx context.Context, id int) (*Simulation, error) {
	query := `
		SELECT id, name, seed, clock, universe_count, meta_law_count, collapse_count, created_at, updated_at
		FROM simulations
		WHERE id = $1`

	sim := &Simulation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sim.ID,
		&sim.Name,
		&sim.Seed,
		&sim.Clock,
		&sim.UniverseCount,
		&sim.MetaLawCount,
		&sim.CollapseCount,
		&sim.CreatedAt,
		&sim.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("simulation %d not found", id)
		}
		r.logger.Error("Failed to get simulation", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get simulation: %w", err)
	}

	return sim, nil
}

func (r *Repository) ListSimulations(ctx context.Context) ([]*Simulation, error) {
	query := `
		SELECT id, name, seed, clock, universe_count, meta_law_count, collapse_count, created_at, updated_at
		FROM simulations
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list simulations", "error", err)
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}
	defer rows.Close()

	var sims []*Simulation
	for rows.Next() {
		sim := &Simulation{}
		err := rows.Scan(
			&sim.ID,
			&sim.Name,
			&sim.Seed,
			&sim.Clock,
			&sim.UniverseCount,
			&sim.MetaLawCount,
			&sim.CollapseCount,
			&sim.CreatedAt,
			&sim.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan simulation", "error", err)
			return nil, fmt.Errorf("failed to scan simulation: %w", err)
		}
		sims = append(sims, sim)
	}

	return sims, rows.Err()
}

func (r *Repository) UpdateSimulationProgress(ctx context.Context, id, clock, universeCount, collapseCount int) error {
	query := `
		UPDATE simulations
		SET clock = $2, universe_count = $3, collapse_count = $4, updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, clock, universeCount, collapseCount)
	if err != nil {
		r.logger.Error("Failed to update simulation progress", "simulation_id", id, "error", err)
		return fmt.Errorf("failed to update simulation progress: %w", err)
	}

	return nil
}

func (r *Repository) InsertUniverseSnapshots(ctx context.Context, simulationID int, snapshots []UniverseSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	query := `
		INSERT INTO universe_snapshots (simulation_id, name, entropy, generation, dimensions, timeline_id, complexity, clock, law_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, s := range snapshots {
		_, err := tx.ExecContext(ctx, query,
			simulationID,
			s.Name,
			s.Entropy,
			s.Generation,
			s.Dimensions,
			s.TimelineID,
			s.Complexity,
			s.Clock,
			s.LawCount,
		)
		if err != nil {
			r.logger.Error("Failed to insert universe snapshot",
				"simulation_id", simulationID, "universe", s.Name, "error", err)
			return fmt.Errorf("failed to insert universe snapshot: %w", err)
		}
	}

	return tx.Commit()
}

func (r *Repository) InsertCollapseReports(ctx context.Context, simulationID int, reports []*universe.CollapseReport) error {
	if len(reports) == 0 {
		return nil
	}

	query := `
		INSERT INTO collapse_reports (simulation_id, universe_name, final_entropy, lost_laws, clock)
		VALUES ($1, $2, $3, $4, $5)`

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, report := range reports {
		_, err := tx.ExecContext(ctx, query,
			simulationID,
			report.Universe,
			report.FinalEntropy,
			pq.Array(report.LostLaws),
			report.Clock,
		)
		if err != nil {
			r.logger.Error("Failed to insert collapse report",
				"simulation_id", simulationID, "universe", report.Universe, "error", err)
			return fmt.Errorf("failed to insert collapse report: %w", err)
		}
	}

	return tx.Commit()
}

// ListLatestUniverseSnapshots returns the most recent snapshot per
// universe name.
func (r *Repository) ListLatestUniverseSnapshots(ctx context.Context, simulationID int) ([]UniverseSnapshot, error) {
	query := `
		SELECT DISTINCT ON (name)
			id, name, entropy, generation, dimensions, timeline_id, complexity, clock, law_count, recorded_at
		FROM universe_snapshots
		WHERE simulation_id = $1
		ORDER BY name, recorded_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, simulationID)
	if err != nil {
		r.logger.Error("Failed to list universe snapshots", "simulation_id", simulationID, "error", err)
		return nil, fmt.Errorf("failed to list universe snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []UniverseSnapshot
	for rows.Next() {
		var s UniverseSnapshot
		err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Entropy,
			&s.Generation,
			&s.Dimensions,
			&s.TimelineID,
			&s.Complexity,
			&s.Clock,
			&s.LawCount,
			&s.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan universe snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

func (r *Repository) ListCollapseReports(ctx context.Context, simulationID int) ([]CollapseRecord, error) {
	query := `
		SELECT id, universe_name, final_entropy, lost_laws, clock, recorded_at
		FROM collapse_reports
		WHERE simulation_id = $1
		ORDER BY recorded_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, simulationID)
	if err != nil {
		r.logger.Error("Failed to list collapse reports", "simulation_id", simulationID, "error", err)
		return nil, fmt.Errorf("failed to list collapse reports: %w", err)
	}
	defer rows.Close()

	var records []CollapseRecord
	for rows.Next() {
		var record CollapseRecord
		err := rows.Scan(
			&record.ID,
			&record.UniverseName,
			&record.FinalEntropy,
			pq.Array(&record.LostLaws),
			&record.Clock,
			&record.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collapse report: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
