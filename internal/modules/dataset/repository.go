package dataset

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/skygeni/sales-intel/internal/domain"
)

// DealRepository stores the deal dataset in SQLite
type DealRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewDealRepository creates a new deal repository
func NewDealRepository(db *sql.DB, log zerolog.Logger) *DealRepository {
	return &DealRepository{
		db:  db,
		log: log.With().Str("repo", "deals").Logger(),
	}
}

// ReplaceAll swaps the stored dataset for the given deals in one transaction
func (r *DealRepository) ReplaceAll(deals []domain.Deal) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM deals"); err != nil {
		return fmt.Errorf("failed to clear deals: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO deals (
			deal_id, created_date, closed_date, deal_amount, outcome,
			sales_cycle_days, industry, region, product_type, lead_source,
			deal_stage, sales_rep_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range deals {
		_, err := stmt.Exec(
			d.ID,
			d.CreatedDate.Format(dateLayout),
			d.ClosedDate.Format(dateLayout),
			d.Amount,
			string(d.Outcome),
			d.SalesCycleDays,
			d.Industry,
			d.Region,
			d.ProductType,
			d.LeadSource,
			d.DealStage,
			d.SalesRepID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert deal %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deals: %w", err)
	}

	r.log.Info().Int("deals", len(deals)).Msg("Replaced stored dataset")
	return nil
}

// GetAll returns every stored deal, ordered by creation date
func (r *DealRepository) GetAll() ([]domain.Deal, error) {
	rows, err := r.db.Query(`
		SELECT deal_id, created_date, closed_date, deal_amount, outcome,
		       sales_cycle_days, industry, region, product_type, lead_source,
		       deal_stage, sales_rep_id
		FROM deals
		ORDER BY created_date, deal_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer rows.Close()

	var deals []domain.Deal
	for rows.Next() {
		var d domain.Deal
		var created, closed, outcome string
		err := rows.Scan(
			&d.ID, &created, &closed, &d.Amount, &outcome,
			&d.SalesCycleDays, &d.Industry, &d.Region, &d.ProductType,
			&d.LeadSource, &d.DealStage, &d.SalesRepID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		if d.CreatedDate, err = time.Parse(dateLayout, created); err != nil {
			return nil, fmt.Errorf("failed to parse created_date for deal %s: %w", d.ID, err)
		}
		if d.ClosedDate, err = time.Parse(dateLayout, closed); err != nil {
			return nil, fmt.Errorf("failed to parse closed_date for deal %s: %w", d.ID, err)
		}
		d.Outcome = domain.Outcome(outcome)
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deals: %w", err)
	}
	return deals, nil
}

// Count returns the number of stored deals
func (r *DealRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM deals").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count deals: %w", err)
	}
	return count, nil
}
