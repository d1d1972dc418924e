package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/sisedoc/document-tracking/internal/core/events"
	"github.com/sisedoc/document-tracking/pkg/logger"
)

func TestNotification(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Notification Module Suite")
}

type mockRepository struct {
	notifications []*Notification
	departments   map[int64][]int64
	nextID        int64
	failWith      error
	pingErr       error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		departments: map[int64][]int64{},
		nextID:      1,
	}
}

func (m *mockRepository) GetLatest(userID int64, limit int) ([]*Notification, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []*Notification
	for i := len(m.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if m.notifications[i].UserID == userID {
			out = append(out, m.notifications[i])
		}
	}
	return out, nil
}

func (m *mockRepository) Create(n *Notification) error {
	if m.failWith != nil {
		return m.failWith
	}
	n.ID = m.nextID
	m.nextID++
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockRepository) MarkRead(userID, notificationID int64) error {
	for _, n := range m.notifications {
		if n.ID == notificationID && n.UserID == userID {
			n.IsRead = true
		}
	}
	return m.failWith
}

func (m *mockRepository) MarkAllRead(userID int64) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return m.failWith
}

func (m *mockRepository) Delete(userID, notificationID int64) error {
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if !(n.ID == notificationID && n.UserID == userID) {
			kept = append(kept, n)
		}
	}
	m.notifications = kept
	return m.failWith
}

func (m *mockRepository) DeleteRead(userID int64) (int64, error) {
	var deleted int64
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if n.UserID == userID && n.IsRead {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return deleted, m.failWith
}

func (m *mockRepository) UsersInDepartment(departmentID int64) ([]int64, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.departments[departmentID], nil
}

func (m *mockRepository) Ping() error {
	return m.pingErr
}

type mockPusher struct {
	notified []int64
}

func (m *mockPusher) NotifyUser(userID int64) {
	m.notified = append(m.notified, userID)
}

var _ = ginkgo.Describe("NotificationService", func() {
	var (
		service *Service
		repo    *mockRepository
		pusher  *mockPusher
	)

	ginkgo.BeforeEach(func() {
		repo = newMockRepository()
		repo.departments[2] = []int64{10, 11, 12}
		pusher = &mockPusher{}
		service = NewService(repo, pusher, logger.L())
	})

	ginkgo.Describe("onDocumentMoved", func() {
		ginkgo.It("should notify destination department members except the actor", func() {
			// Given
			toDept := int64(2)
			event := events.NewDocumentMovedEvent(5, "DOC-TEST-001", "derivado", "en_proceso", 10, &toDept)

			// When
			err := service.onDocumentMoved(context.Background(), event)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.notifications).To(gomega.HaveLen(2))
			gomega.Expect(pusher.notified).To(gomega.ConsistOf(int64(11), int64(12)))

			first := repo.notifications[0]
			gomega.Expect(first.Type).To(gomega.Equal(TypeMovement))
			gomega.Expect(first.Message).To(gomega.ContainSubstring("DOC-TEST-001"))
			gomega.Expect(*first.DocumentID).To(gomega.Equal(int64(5)))
		})

		ginkgo.It("should do nothing for an event without destination", func() {
			event := events.NewDocumentMovedEvent(5, "DOC-TEST-001", "completado", "completado", 10, nil)

			err := service.onDocumentMoved(context.Background(), event)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.notifications).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("onAttachmentAdded", func() {
		ginkgo.It("should notify the document's department about the new file", func() {
			// Given
			event := events.NewAttachmentAddedEvent(5, "DOC-TEST-001", "informe.pdf", 11, 2)

			// When
			err := service.onAttachmentAdded(context.Background(), event)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.notifications).To(gomega.HaveLen(2))
			gomega.Expect(pusher.notified).To(gomega.ConsistOf(int64(10), int64(12)))
			gomega.Expect(repo.notifications[0].Type).To(gomega.Equal(TypeAttachment))
			gomega.Expect(repo.notifications[0].Message).To(gomega.ContainSubstring("informe.pdf"))
		})
	})

	ginkgo.Describe("inbox operations", func() {
		ginkgo.BeforeEach(func() {
			for i := 0; i < 25; i++ {
				repo.Create(&Notification{UserID: 10, Title: "t", Message: "m", Type: TypeSystem})
			}
			repo.Create(&Notification{UserID: 11, Title: "other", Message: "m", Type: TypeSystem})
		})

		ginkgo.It("should cap the inbox at the latest 20", func() {
			notifications, err := service.GetLatest(10)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(notifications).To(gomega.HaveLen(20))
		})

		ginkgo.It("should return newest first", func() {
			notifications, err := service.GetLatest(10)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(notifications[0].ID).To(gomega.BeNumerically(">", notifications[1].ID))
		})

		ginkgo.It("should mark all read and then bulk-delete read rows", func() {
			gomega.Expect(service.MarkAllRead(10)).To(gomega.Succeed())

			deleted, err := service.DeleteRead(10)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(deleted).To(gomega.Equal(int64(25)))

			remaining, err := service.GetLatest(10)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(remaining).To(gomega.BeEmpty())
		})

		ginkgo.It("should not delete unread rows in bulk delete", func() {
			deleted, err := service.DeleteRead(10)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(deleted).To(gomega.BeZero())
		})
	})

	ginkgo.Describe("SetupCheck", func() {
		ginkgo.It("should succeed when the table is queryable", func() {
			gomega.Expect(service.SetupCheck()).To(gomega.Succeed())
		})

		ginkgo.It("should fail when the table is missing", func() {
			repo.pingErr = errors.New(`relation "notifications" does not exist`)

			gomega.Expect(service.SetupCheck()).To(gomega.HaveOccurred())
		})
	})
})
