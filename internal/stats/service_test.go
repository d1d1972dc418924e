package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/sisedoc/document-tracking/pkg/logger"
)

func TestStats(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Stats Module Suite")
}

type mockRepository struct {
	documents     int64
	movements     int64
	activeUsers   int64
	byStatus      []NameCount
	byDepartment  []NameCount
	byAction      []NameCount
	docTrend      []TrendBucket
	movTrend      []TrendBucket
	topUsers      []NameCount
	byRole        []NameCount
	byHour        []HourCount
	failWith      error
	lastSince     time.Time
	lastDeptID    *int64
	trendInterval string
}

func (m *mockRepository) CountDocuments(since time.Time, departmentID *int64) (int64, error) {
	m.lastSince = since
	m.lastDeptID = departmentID
	return m.documents, m.failWith
}

func (m *mockRepository) CountMovements(since time.Time, departmentID *int64) (int64, error) {
	return m.movements, m.failWith
}

func (m *mockRepository) CountActiveUsers(since time.Time) (int64, error) {
	return m.activeUsers, m.failWith
}

func (m *mockRepository) DocumentsByStatus(since time.Time, departmentID *int64) ([]NameCount, error) {
	return m.byStatus, m.failWith
}

func (m *mockRepository) DocumentsByDepartment(since time.Time) ([]NameCount, error) {
	return m.byDepartment, m.failWith
}

func (m *mockRepository) MovementsByAction(since time.Time) ([]NameCount, error) {
	return m.byAction, m.failWith
}

func (m *mockRepository) DocumentTrend(since time.Time, interval string) ([]TrendBucket, error) {
	m.trendInterval = interval
	return m.docTrend, m.failWith
}

func (m *mockRepository) MovementTrend(since time.Time, interval string) ([]TrendBucket, error) {
	return m.movTrend, m.failWith
}

func (m *mockRepository) TopUsers(since time.Time, limit int) ([]NameCount, error) {
	return m.topUsers, m.failWith
}

func (m *mockRepository) ActivityByRole(since time.Time) ([]NameCount, error) {
	return m.byRole, m.failWith
}

func (m *mockRepository) ActivityByHour(since time.Time) ([]HourCount, error) {
	return m.byHour, m.failWith
}

var _ = ginkgo.Describe("StatsService", func() {
	var (
		service *Service
		repo    *mockRepository
	)

	ginkgo.BeforeEach(func() {
		repo = &mockRepository{
			documents:   42,
			movements:   120,
			activeUsers: 7,
			byStatus: []NameCount{
				{Name: "pendiente", Value: 20},
				{Name: "completado", Value: 22},
			},
			byDepartment: []NameCount{
				{Name: "Gerencia", Value: 12},
				{Name: "Mesa de Partes", Value: 30},
			},
			byAction: []NameCount{
				{Name: "derivado", Value: 80},
				{Name: "creacion", Value: 40},
			},
			docTrend: []TrendBucket{
				{Date: "2026-08-01", Value: 5},
				{Date: "2026-08-02", Value: 8},
			},
			movTrend: []TrendBucket{
				{Date: "2026-08-02", Value: 3},
				{Date: "2026-08-03", Value: 4},
			},
			topUsers: []NameCount{
				{Name: "Usuario Prueba", Value: 15},
			},
			byRole: []NameCount{
				{Name: "operator", Value: 75},
				{Name: "admin", Value: 25},
			},
			byHour: []HourCount{
				{Hour: 9, Value: 12},
				{Hour: 15, Value: 20},
			},
		}
		service = NewService(repo, logger.L())
	})

	ginkgo.Describe("BuildReport with real data", func() {
		ginkgo.It("should report real totals without simulation flags", func() {
			report := service.BuildReport(30, nil)

			gomega.Expect(report.Totals.TotalDocuments).To(gomega.Equal(int64(42)))
			gomega.Expect(report.Totals.TotalMovements).To(gomega.Equal(int64(120)))
			gomega.Expect(report.Totals.ActiveUsers).To(gomega.Equal(int64(7)))
			gomega.Expect(report.DocumentsByStatus.Simulated).To(gomega.BeFalse())
			gomega.Expect(report.MovementsByAction.Simulated).To(gomega.BeFalse())
			gomega.Expect(report.Trend.Simulated).To(gomega.BeFalse())
		})

		ginkgo.It("should always simulate the average processing time between 24 and 72 hours", func() {
			report := service.BuildReport(30, nil)

			gomega.Expect(report.Totals.AvgProcessingHours).To(gomega.BeNumerically(">=", 24))
			gomega.Expect(report.Totals.AvgProcessingHours).To(gomega.BeNumerically("<", 72))
		})

		ginkgo.It("should zero-fill the four statuses", func() {
			report := service.BuildReport(30, nil)

			gomega.Expect(report.DocumentsByStatus.Items).To(gomega.HaveLen(4))
			byName := map[string]int64{}
			for _, item := range report.DocumentsByStatus.Items {
				byName[item.Name] = item.Value
			}
			gomega.Expect(byName).To(gomega.HaveKeyWithValue("pendiente", int64(20)))
			gomega.Expect(byName).To(gomega.HaveKeyWithValue("en_proceso", int64(0)))
			gomega.Expect(byName).To(gomega.HaveKeyWithValue("completado", int64(22)))
			gomega.Expect(byName).To(gomega.HaveKeyWithValue("rechazado", int64(0)))
		})

		ginkgo.It("should translate action tags to display labels", func() {
			report := service.BuildReport(30, nil)

			gomega.Expect(report.MovementsByAction.Items[0].Name).To(gomega.Equal("Derivado"))
			gomega.Expect(report.MovementsByAction.Items[1].Name).To(gomega.Equal("Creación"))
		})

		ginkgo.It("should merge document and movement trend buckets in date order", func() {
			report := service.BuildReport(30, nil)

			gomega.Expect(report.Trend.Points).To(gomega.HaveLen(3))
			gomega.Expect(report.Trend.Points[0].Date).To(gomega.Equal("2026-08-01"))
			gomega.Expect(report.Trend.Points[0].Documents).To(gomega.Equal(int64(5)))
			gomega.Expect(report.Trend.Points[0].Movements).To(gomega.BeZero())
			gomega.Expect(report.Trend.Points[1].Documents).To(gomega.Equal(int64(8)))
			gomega.Expect(report.Trend.Points[1].Movements).To(gomega.Equal(int64(3)))
			gomega.Expect(report.Trend.Points[2].Documents).To(gomega.BeZero())
			gomega.Expect(report.Trend.Points[2].Movements).To(gomega.Equal(int64(4)))
		})

		ginkgo.It("should convert role activity to percentages with display labels", func() {
			report := service.BuildReport(30, nil)

			gomega.Expect(report.ActivityByRole.Items).To(gomega.HaveLen(2))
			gomega.Expect(report.ActivityByRole.Items[0].Name).To(gomega.Equal("Operadores"))
			gomega.Expect(report.ActivityByRole.Items[0].Value).To(gomega.Equal(int64(75)))
			gomega.Expect(report.ActivityByRole.Items[1].Name).To(gomega.Equal("Administradores"))
			gomega.Expect(report.ActivityByRole.Items[1].Value).To(gomega.Equal(int64(25)))
		})

		ginkgo.It("should pass the department filter through to the queries", func() {
			departmentID := int64(2)

			service.BuildReport(30, &departmentID)

			gomega.Expect(repo.lastDeptID).ToNot(gomega.BeNil())
			gomega.Expect(*repo.lastDeptID).To(gomega.Equal(int64(2)))
		})
	})

	ginkgo.Describe("bucket granularity", func() {
		ginkgo.It("should use daily buckets for 30 days", func() {
			service.BuildReport(30, nil)
			gomega.Expect(repo.trendInterval).To(gomega.Equal(IntervalDaily))
		})

		ginkgo.It("should use weekly buckets for 90 days", func() {
			service.BuildReport(90, nil)
			gomega.Expect(repo.trendInterval).To(gomega.Equal(IntervalWeekly))
		})

		ginkgo.It("should use monthly buckets for a year", func() {
			service.BuildReport(365, nil)
			gomega.Expect(repo.trendInterval).To(gomega.Equal(IntervalMonthly))
		})
	})

	ginkgo.Describe("placeholder fallbacks", func() {
		ginkgo.BeforeEach(func() {
			repo.failWith = errors.New("connection refused")
		})

		ginkgo.It("should still produce a full report when every query fails", func() {
			report := service.BuildReport(30, nil)

			gomega.Expect(report.Totals.TotalDocuments).To(gomega.BeZero())
			gomega.Expect(report.DocumentsByStatus.Simulated).To(gomega.BeTrue())
			gomega.Expect(report.DocumentsByDepartment.Simulated).To(gomega.BeTrue())
			gomega.Expect(report.MovementsByAction.Simulated).To(gomega.BeTrue())
			gomega.Expect(report.Trend.Simulated).To(gomega.BeTrue())
			gomega.Expect(report.TopUsers.Simulated).To(gomega.BeTrue())
			gomega.Expect(report.ActivityByRole.Simulated).To(gomega.BeTrue())
			gomega.Expect(report.ActivityByHour.Simulated).To(gomega.BeTrue())
		})

		ginkgo.It("should keep the four zero statuses in the fallback", func() {
			report := service.BuildReport(30, nil)

			gomega.Expect(report.DocumentsByStatus.Items).To(gomega.HaveLen(4))
			for _, item := range report.DocumentsByStatus.Items {
				gomega.Expect(item.Value).To(gomega.BeZero())
			}
		})

		ginkgo.It("should generate placeholder top users", func() {
			report := service.BuildReport(30, nil)

			gomega.Expect(report.TopUsers.Items).To(gomega.HaveLen(5))
			for _, item := range report.TopUsers.Items {
				gomega.Expect(item.Value).To(gomega.BeNumerically(">", 0))
			}
		})

		ginkgo.It("should generate a non-empty placeholder trend", func() {
			report := service.BuildReport(30, nil)

			gomega.Expect(report.Trend.Points).ToNot(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("empty result fallbacks", func() {
		ginkgo.It("should flag top users simulated when nobody moved anything", func() {
			repo.topUsers = nil

			report := service.BuildReport(30, nil)

			gomega.Expect(report.TopUsers.Simulated).To(gomega.BeTrue())
			gomega.Expect(report.TopUsers.Items).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("should flag hourly activity simulated when empty", func() {
			repo.byHour = nil

			report := service.BuildReport(30, nil)

			gomega.Expect(report.ActivityByHour.Simulated).To(gomega.BeTrue())
			gomega.Expect(report.ActivityByHour.Items).ToNot(gomega.BeEmpty())
		})
	})
})
