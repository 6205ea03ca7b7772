package dataset

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AnalysisRun records one analysis invocation
type AnalysisRun struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	DealCount     int
	TrainAccuracy float64
	TestAccuracy  float64
	ReportPath    string
	ModelPath     string
	Status        string
}

const (
	RunStatusRunning  = "running"
	RunStatusFinished = "finished"
	RunStatusFailed   = "failed"
)

// RunRepository stores analysis-run bookkeeping in SQLite
type RunRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB, log zerolog.Logger) *RunRepository {
	return &RunRepository{
		db:  db,
		log: log.With().Str("repo", "runs").Logger(),
	}
}

// Start records a new run and returns its identifier
func (r *RunRepository) Start(dealCount int) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(`
		INSERT INTO analysis_runs (run_id, started_at, deal_count, status)
		VALUES (?, ?, ?, ?)
	`, id, time.Now().UTC().Format(time.RFC3339), dealCount, RunStatusRunning)
	if err != nil {
		return "", fmt.Errorf("failed to record run start: %w", err)
	}
	return id, nil
}

// Finish marks a run as finished with its results
func (r *RunRepository) Finish(id string, trainAcc, testAcc float64, reportPath, modelPath string) error {
	_, err := r.db.Exec(`
		UPDATE analysis_runs
		SET finished_at = ?, train_accuracy = ?, test_accuracy = ?,
		    report_path = ?, model_path = ?, status = ?
		WHERE run_id = ?
	`, time.Now().UTC().Format(time.RFC3339), trainAcc, testAcc, reportPath, modelPath, RunStatusFinished, id)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}

// Fail marks a run as failed
func (r *RunRepository) Fail(id string) error {
	_, err := r.db.Exec(`
		UPDATE analysis_runs SET finished_at = ?, status = ? WHERE run_id = ?
	`, time.Now().UTC().Format(time.RFC3339), RunStatusFailed, id)
	if err != nil {
		return fmt.Errorf("failed to record run failure: %w", err)
	}
	return nil
}

// Latest returns the most recent run, if any
func (r *RunRepository) Latest() (*AnalysisRun, error) {
	row := r.db.QueryRow(`
		SELECT run_id, started_at, COALESCE(finished_at, ''), deal_count,
		       COALESCE(train_accuracy, 0), COALESCE(test_accuracy, 0),
		       COALESCE(report_path, ''), COALESCE(model_path, ''), status
		FROM analysis_runs
		ORDER BY started_at DESC
		LIMIT 1
	`)

	var run AnalysisRun
	var started, finished string
	err := row.Scan(&run.ID, &started, &finished, &run.DealCount,
		&run.TrainAccuracy, &run.TestAccuracy, &run.ReportPath, &run.ModelPath, &run.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}

	if run.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return nil, fmt.Errorf("failed to parse run start time: %w", err)
	}
	if finished != "" {
		if run.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
			return nil, fmt.Errorf("failed to parse run finish time: %w", err)
		}
	}
	return &run, nil
}
