package simulation

import (
	"time"

	"multiverse-server/internal/hyperstructure"
	"multiverse-server/internal/universe"
)

// Simulation is the persisted record of one hyperstructure run.
type Simulation struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Seed          int64     `json:"seed"`
	Clock         int       `json:"clock"`
	UniverseCount int       `json:"universe_count"`
	MetaLawCount  int       `json:"meta_law_count"`
	CollapseCount int       `json:"collapse_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateRequest configures genesis. Zero values fall back to the
// server-wide simulation defaults.
type CreateRequest struct {
	Name            string `json:"name"`
	Seed            int64  `json:"seed"`
	UniverseCount   int    `json:"universe_count"`
	LawsPerUniverse int    `json:"laws_per_universe"`
	MetaLawCount    int    `json:"meta_law_count"`
}

// StepRequest asks the recursor to descend the given depth.
type StepRequest struct {
	Depth int `json:"depth"`
}

// StepResult reports one recursor invocation.
type StepResult struct {
	Steps      int                        `json:"steps"`
	Clock      int                        `json:"clock"`
	DepthTrace []int                      `json:"depth_trace"`
	Collapses  []*universe.CollapseReport `json:"collapses"`
}

// FeedbackResult reports one observer sweep across all registered
// universes.
type FeedbackResult struct {
	UniversesTouched int     `json:"universes_touched"`
	LawsAdjusted     int     `json:"laws_adjusted"`
	Multiplier       float64 `json:"multiplier"`
}

// MergeRequest names the two registered universes to merge.
type MergeRequest struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// UniverseSnapshot is the persisted per-tick state of a universe.
type UniverseSnapshot struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Entropy    float64   `json:"entropy"`
	Generation int       `json:"generation"`
	Dimensions int       `json:"dimensions"`
	TimelineID int       `json:"timeline_id"`
	Complexity float64   `json:"complexity"`
	Clock      int       `json:"clock"`
	LawCount   int       `json:"law_count"`
	RecordedAt time.Time `json:"recorded_at"`
}

// CollapseRecord is a persisted collapse report.
type CollapseRecord struct {
	ID           int       `json:"id"`
	UniverseName string    `json:"universe"`
	FinalEntropy float64   `json:"final_entropy"`
	LostLaws     []string  `json:"lost_laws"`
	Clock        int       `json:"clock"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Stats aggregates the live state of a simulation.
type Stats struct {
	SimulationID  int     `json:"simulation_id"`
	Clock         int     `json:"clock"`
	UniverseCount int     `json:"universe_count"`
	TotalLaws     int     `json:"total_laws"`
	MeanEntropy   float64 `json:"mean_entropy"`
	MaxEntropy    float64 `json:"max_entropy"`
	CollapseCount int     `json:"collapse_count"`
	GraphNodes    int     `json:"graph_nodes"`
	GraphEdges    int     `json:"graph_edges"`
}

// GraphDump is the serializable law dependency network.
type GraphDump struct {
	Nodes []hyperstructure.GraphNode `json:"nodes"`
	Edges []hyperstructure.GraphEdge `json:"edges"`
}

func snapshotUniverse(u *universe.Universe) UniverseSnapshot {
	return UniverseSnapshot{
		Name:       u.Name,
		Entropy:    u.Entropy,
		Generation: u.Generation,
		Dimensions: u.Dimensions,
		TimelineID: u.TimelineID,
		Complexity: u.Complexity,
		Clock:      u.Clock,
		LawCount:   len(u.Laws),
	}
}
