package postgres

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sisedoc/document-tracking/internal/stats"
)

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) stats.RepositoryAPI {
	return &StatsRepository{db: db}
}

// validInterval guards the date_trunc argument, which cannot be a bind
// parameter.
func validInterval(interval string) error {
	switch interval {
	case stats.IntervalDaily, stats.IntervalWeekly, stats.IntervalMonthly:
		return nil
	}
	return fmt.Errorf("invalid trend interval: %q", interval)
}

func (r *StatsRepository) CountDocuments(since time.Time, departmentID *int64) (int64, error) {
	var count int64
	if departmentID != nil {
		err := r.db.Get(&count,
			`SELECT COUNT(*) FROM documents WHERE created_at >= $1 AND current_department_id = $2`,
			since, *departmentID)
		return count, err
	}
	err := r.db.Get(&count, `SELECT COUNT(*) FROM documents WHERE created_at >= $1`, since)
	return count, err
}

func (r *StatsRepository) CountMovements(since time.Time, departmentID *int64) (int64, error) {
	var count int64
	if departmentID != nil {
		err := r.db.Get(&count,
			`SELECT COUNT(*) FROM document_movements WHERE created_at >= $1 AND to_department_id = $2`,
			since, *departmentID)
		return count, err
	}
	err := r.db.Get(&count, `SELECT COUNT(*) FROM document_movements WHERE created_at >= $1`, since)
	return count, err
}

func (r *StatsRepository) CountActiveUsers(since time.Time) (int64, error) {
	var count int64
	err := r.db.Get(&count,
		`SELECT COUNT(DISTINCT user_id) FROM document_movements WHERE created_at >= $1`, since)
	return count, err
}

func (r *StatsRepository) DocumentsByStatus(since time.Time, departmentID *int64) ([]stats.NameCount, error) {
	var rows []stats.NameCount
	if departmentID != nil {
		err := r.db.Select(&rows,
			`SELECT status AS name, COUNT(*) AS value
			 FROM documents
			 WHERE created_at >= $1 AND current_department_id = $2
			 GROUP BY status`,
			since, *departmentID)
		return rows, err
	}
	err := r.db.Select(&rows,
		`SELECT status AS name, COUNT(*) AS value
		 FROM documents
		 WHERE created_at >= $1
		 GROUP BY status`,
		since)
	return rows, err
}

func (r *StatsRepository) DocumentsByDepartment(since time.Time) ([]stats.NameCount, error) {
	var rows []stats.NameCount
	err := r.db.Select(&rows,
		`SELECT d.name AS name, COUNT(doc.id) AS value
		 FROM departments d
		 LEFT JOIN documents doc
		   ON doc.current_department_id = d.id AND doc.created_at >= $1
		 GROUP BY d.id, d.name
		 ORDER BY d.name ASC`,
		since)
	return rows, err
}

func (r *StatsRepository) MovementsByAction(since time.Time) ([]stats.NameCount, error) {
	var rows []stats.NameCount
	err := r.db.Select(&rows,
		`SELECT action AS name, COUNT(*) AS value
		 FROM document_movements
		 WHERE created_at >= $1
		 GROUP BY action
		 ORDER BY value DESC`,
		since)
	return rows, err
}

func (r *StatsRepository) DocumentTrend(since time.Time, interval string) ([]stats.TrendBucket, error) {
	return r.trend("documents", since, interval)
}

func (r *StatsRepository) MovementTrend(since time.Time, interval string) ([]stats.TrendBucket, error) {
	return r.trend("document_movements", since, interval)
}

func (r *StatsRepository) trend(table string, since time.Time, interval string) ([]stats.TrendBucket, error) {
	if err := validInterval(interval); err != nil {
		return nil, err
	}

	var rows []stats.TrendBucket
	query := fmt.Sprintf(
		`SELECT to_char(date_trunc('%s', created_at), 'YYYY-MM-DD') AS bucket, COUNT(*) AS value
		 FROM %s
		 WHERE created_at >= $1
		 GROUP BY 1
		 ORDER BY 1 ASC`,
		interval, table)
	err := r.db.Select(&rows, query, since)
	return rows, err
}

func (r *StatsRepository) TopUsers(since time.Time, limit int) ([]stats.NameCount, error) {
	var rows []stats.NameCount
	err := r.db.Select(&rows,
		`SELECT u.full_name AS name, COUNT(m.id) AS value
		 FROM document_movements m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.created_at >= $1
		 GROUP BY u.id, u.full_name
		 ORDER BY value DESC
		 LIMIT $2`,
		since, limit)
	return rows, err
}

func (r *StatsRepository) ActivityByRole(since time.Time) ([]stats.NameCount, error) {
	var rows []stats.NameCount
	err := r.db.Select(&rows,
		`SELECT u.role AS name, COUNT(m.id) AS value
		 FROM document_movements m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.created_at >= $1
		 GROUP BY u.role
		 ORDER BY value DESC`,
		since)
	return rows, err
}

func (r *StatsRepository) ActivityByHour(since time.Time) ([]stats.HourCount, error) {
	var rows []stats.HourCount
	err := r.db.Select(&rows,
		`SELECT EXTRACT(HOUR FROM created_at)::int AS hour, COUNT(*) AS value
		 FROM document_movements
		 WHERE created_at >= $1
		 GROUP BY 1
		 ORDER BY 1 ASC`,
		since)
	return rows, err
}
