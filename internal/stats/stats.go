package stats

import "time"

// Trend bucket granularity, derived from the requested range the same way
// the dashboard always did: daily up to 60 days, weekly up to 180, monthly
// beyond that.
const (
	IntervalDaily   = "day"
	IntervalWeekly  = "week"
	IntervalMonthly = "month"
)

func IntervalForDays(days int) string {
	switch {
	case days > 180:
		return IntervalMonthly
	case days > 60:
		return IntervalWeekly
	default:
		return IntervalDaily
	}
}

// NameCount is one slice of a pie or bar chart.
type NameCount struct {
	Name  string `db:"name" json:"name"`
	Value int64  `db:"value" json:"value"`
}

// TrendBucket is one point of the documents/movements time series.
type TrendBucket struct {
	Date  string `db:"bucket" json:"date"`
	Value int64  `db:"value" json:"value"`
}

// HourCount is movement volume for one hour of the day (0-23).
type HourCount struct {
	Hour  int   `db:"hour" json:"hour"`
	Value int64 `db:"value" json:"value"`
}

// ChartSection carries one chart's data plus the flag telling the caller
// whether the numbers are real aggregates or placeholder data emitted
// because the underlying query failed.
type ChartSection struct {
	Simulated bool        `json:"simulated"`
	Items     []NameCount `json:"items"`
}

type TrendPoint struct {
	Date      string `json:"date"`
	Documents int64  `json:"documentos"`
	Movements int64  `json:"movimientos"`
}

type TrendSection struct {
	Simulated bool         `json:"simulated"`
	Interval  string       `json:"interval"`
	Points    []TrendPoint `json:"points"`
}

type HourSection struct {
	Simulated bool        `json:"simulated"`
	Items     []HourCount `json:"items"`
}

// Totals are the dashboard KPI cards. Average processing time is always
// simulated (24-72 hours); there is no real per-document duration yet.
type Totals struct {
	TotalDocuments     int64 `json:"total_documents"`
	TotalMovements     int64 `json:"total_movements"`
	ActiveUsers        int64 `json:"active_users"`
	AvgProcessingHours int   `json:"avg_processing_hours"`
}

// Report is the full statistics payload for one time range.
type Report struct {
	RangeDays             int          `json:"range_days"`
	DepartmentID          *int64       `json:"department_id,omitempty"`
	Totals                Totals       `json:"totals"`
	DocumentsByStatus     ChartSection `json:"documents_by_status"`
	DocumentsByDepartment ChartSection `json:"documents_by_department"`
	MovementsByAction     ChartSection `json:"movements_by_action"`
	Trend                 TrendSection `json:"trend"`
	TopUsers              ChartSection `json:"top_users"`
	ActivityByRole        ChartSection `json:"activity_by_role"`
	ActivityByHour        HourSection  `json:"activity_by_hour"`
}

type RepositoryAPI interface {
	CountDocuments(since time.Time, departmentID *int64) (int64, error)
	CountMovements(since time.Time, departmentID *int64) (int64, error)
	CountActiveUsers(since time.Time) (int64, error)
	DocumentsByStatus(since time.Time, departmentID *int64) ([]NameCount, error)
	DocumentsByDepartment(since time.Time) ([]NameCount, error)
	MovementsByAction(since time.Time) ([]NameCount, error)
	DocumentTrend(since time.Time, interval string) ([]TrendBucket, error)
	MovementTrend(since time.Time, interval string) ([]TrendBucket, error)
	TopUsers(since time.Time, limit int) ([]NameCount, error)
	ActivityByRole(since time.Time) ([]NameCount, error)
	ActivityByHour(since time.Time) ([]HourCount, error)
}
