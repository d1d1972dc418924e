package stats

import (
	"log/slog"
	"math/rand"
	"sort"
	"time"
)

const topUsersLimit = 5

// Spanish display labels for movement actions, matching the dashboard.
var actionLabels = map[string]string{
	"creacion":   "Creación",
	"derivado":   "Derivado",
	"revision":   "Revisión",
	"pendiente":  "Pendiente",
	"completado": "Completado",
	"rechazado":  "Rechazado",
}

var roleLabels = map[string]string{
	"admin":      "Administradores",
	"supervisor": "Supervisores",
	"operator":   "Operadores",
	"user":       "Usuarios",
}

var allStatuses = []string{"pendiente", "en_proceso", "completado", "rechazado"}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// BuildReport computes every dashboard aggregate for the given range. A
// failed query never fails the whole report: the affected section falls
// back to placeholder data and is flagged simulated so the caller can
// tell real numbers from fake ones.
func (s *Service) BuildReport(days int, departmentID *int64) *Report {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	interval := IntervalForDays(days)

	report := &Report{
		RangeDays:    days,
		DepartmentID: departmentID,
	}

	report.Totals = s.totals(since, departmentID)
	report.DocumentsByStatus = s.documentsByStatus(since, departmentID)
	report.DocumentsByDepartment = s.documentsByDepartment(since)
	report.MovementsByAction = s.movementsByAction(since)
	report.Trend = s.trend(since, days, interval)
	report.TopUsers = s.topUsers(since)
	report.ActivityByRole = s.activityByRole(since)
	report.ActivityByHour = s.activityByHour(since)

	return report
}

func (s *Service) totals(since time.Time, departmentID *int64) Totals {
	totals := Totals{
		// No per-document duration is tracked yet, so the average stays
		// simulated in the 24-72 hour band the dashboard always showed.
		AvgProcessingHours: rand.Intn(48) + 24,
	}

	documents, err := s.repo.CountDocuments(since, departmentID)
	if err != nil {
		s.logger.Warn("failed to count documents", "error", err)
	} else {
		totals.TotalDocuments = documents
	}

	movements, err := s.repo.CountMovements(since, departmentID)
	if err != nil {
		s.logger.Warn("failed to count movements", "error", err)
	} else {
		totals.TotalMovements = movements
	}

	users, err := s.repo.CountActiveUsers(since)
	if err != nil {
		s.logger.Warn("failed to count active users", "error", err)
	} else {
		totals.ActiveUsers = users
	}

	return totals
}

// documentsByStatus always reports all four statuses, zero-filled when a
// status has no documents in range. On query failure the section is all
// zeros and flagged simulated.
func (s *Service) documentsByStatus(since time.Time, departmentID *int64) ChartSection {
	counts := map[string]int64{}
	simulated := false

	rows, err := s.repo.DocumentsByStatus(since, departmentID)
	if err != nil {
		s.logger.Warn("failed to aggregate documents by status", "error", err)
		simulated = true
	} else {
		for _, row := range rows {
			counts[row.Name] = row.Value
		}
	}

	items := make([]NameCount, 0, len(allStatuses))
	for _, status := range allStatuses {
		items = append(items, NameCount{Name: status, Value: counts[status]})
	}

	return ChartSection{Simulated: simulated, Items: items}
}

func (s *Service) documentsByDepartment(since time.Time) ChartSection {
	rows, err := s.repo.DocumentsByDepartment(since)
	if err != nil {
		s.logger.Warn("failed to aggregate documents by department", "error", err)
		return ChartSection{
			Simulated: true,
			Items:     []NameCount{{Name: "Sin datos", Value: 0}},
		}
	}
	if len(rows) == 0 {
		rows = []NameCount{{Name: "Sin departamentos", Value: 0}}
	}
	return ChartSection{Items: rows}
}

func (s *Service) movementsByAction(since time.Time) ChartSection {
	rows, err := s.repo.MovementsByAction(since)
	if err != nil {
		s.logger.Warn("failed to aggregate movements by action", "error", err)
		return ChartSection{
			Simulated: true,
			Items:     []NameCount{{Name: "Sin datos", Value: 0}},
		}
	}

	items := make([]NameCount, 0, len(rows))
	for _, row := range rows {
		label := actionLabels[row.Name]
		if label == "" {
			label = row.Name
		}
		items = append(items, NameCount{Name: label, Value: row.Value})
	}
	if len(items) == 0 {
		items = []NameCount{{Name: "Sin movimientos", Value: 0}}
	}
	return ChartSection{Items: items}
}

func (s *Service) trend(since time.Time, days int, interval string) TrendSection {
	docBuckets, docErr := s.repo.DocumentTrend(since, interval)
	movBuckets, movErr := s.repo.MovementTrend(since, interval)
	if docErr != nil || movErr != nil {
		s.logger.Warn("failed to compute trend", "doc_error", docErr, "mov_error", movErr)
		return TrendSection{
			Simulated: true,
			Interval:  interval,
			Points:    simulatedTrend(days, interval),
		}
	}

	movements := make(map[string]int64, len(movBuckets))
	for _, b := range movBuckets {
		movements[b.Date] = b.Value
	}

	points := make([]TrendPoint, 0, len(docBuckets))
	seen := make(map[string]bool, len(docBuckets))
	for _, b := range docBuckets {
		seen[b.Date] = true
		points = append(points, TrendPoint{
			Date:      b.Date,
			Documents: b.Value,
			Movements: movements[b.Date],
		})
	}
	// buckets where only movements happened
	for _, b := range movBuckets {
		if !seen[b.Date] {
			points = append(points, TrendPoint{Date: b.Date, Movements: b.Value})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return TrendSection{Interval: interval, Points: points}
}

func (s *Service) topUsers(since time.Time) ChartSection {
	rows, err := s.repo.TopUsers(since, topUsersLimit)
	if err != nil || len(rows) == 0 {
		if err != nil {
			s.logger.Warn("failed to compute top users", "error", err)
		}
		return ChartSection{Simulated: true, Items: simulatedTopUsers()}
	}
	return ChartSection{Items: rows}
}

// activityByRole reports each role's share of movements as a percentage.
func (s *Service) activityByRole(since time.Time) ChartSection {
	rows, err := s.repo.ActivityByRole(since)
	if err != nil || len(rows) == 0 {
		if err != nil {
			s.logger.Warn("failed to compute activity by role", "error", err)
		}
		return ChartSection{Simulated: true, Items: simulatedRoleActivity()}
	}

	var total int64
	for _, row := range rows {
		total += row.Value
	}

	items := make([]NameCount, 0, len(rows))
	for _, row := range rows {
		label := roleLabels[row.Name]
		if label == "" {
			label = row.Name
		}
		percentage := int64(0)
		if total > 0 {
			percentage = row.Value * 100 / total
		}
		items = append(items, NameCount{Name: label, Value: percentage})
	}
	return ChartSection{Items: items}
}

func (s *Service) activityByHour(since time.Time) HourSection {
	rows, err := s.repo.ActivityByHour(since)
	if err != nil || len(rows) == 0 {
		if err != nil {
			s.logger.Warn("failed to compute activity by hour", "error", err)
		}
		return HourSection{Simulated: true, Items: simulatedHourlyActivity()}
	}
	return HourSection{Items: rows}
}

func simulatedTopUsers() []NameCount {
	return []NameCount{
		{Name: "Juan Pérez", Value: int64(rand.Intn(30) + 20)},
		{Name: "María García", Value: int64(rand.Intn(25) + 15)},
		{Name: "Carlos López", Value: int64(rand.Intn(20) + 10)},
		{Name: "Ana Martínez", Value: int64(rand.Intn(15) + 10)},
		{Name: "Pedro Rodríguez", Value: int64(rand.Intn(10) + 5)},
	}
}

func simulatedRoleActivity() []NameCount {
	return []NameCount{
		{Name: "Administradores", Value: 35},
		{Name: "Supervisores", Value: 25},
		{Name: "Operadores", Value: 30},
		{Name: "Usuarios", Value: 10},
	}
}

func simulatedHourlyActivity() []HourCount {
	return []HourCount{
		{Hour: 8, Value: 15},
		{Hour: 9, Value: 25},
		{Hour: 10, Value: 35},
		{Hour: 11, Value: 45},
		{Hour: 12, Value: 30},
		{Hour: 13, Value: 20},
		{Hour: 14, Value: 25},
		{Hour: 15, Value: 40},
		{Hour: 16, Value: 35},
		{Hour: 17, Value: 20},
		{Hour: 18, Value: 10},
	}
}

// simulatedTrend generates placeholder points with a gentle upward slope,
// the same shape the dashboard used when real data was unavailable.
func simulatedTrend(days int, interval string) []TrendPoint {
	step := 1
	switch interval {
	case IntervalWeekly:
		step = 7
	case IntervalMonthly:
		step = 30
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)
	span := end.Sub(start)

	var points []TrendPoint
	for date := start; !date.After(end); date = date.AddDate(0, 0, step) {
		base := 10 + int(float64(date.Sub(start))/float64(span)*20)
		docs := base + rand.Intn(10) - 5
		movs := base - 2 + rand.Intn(8) - 4
		if docs < 0 {
			docs = 0
		}
		if movs < 0 {
			movs = 0
		}
		points = append(points, TrendPoint{
			Date:      date.Format("2006-01-02"),
			Documents: int64(docs),
			Movements: int64(movs),
		})
	}
	return points
}
