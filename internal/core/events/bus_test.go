package events

import (
	"context"
	"errors"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/sisedoc/document-tracking/pkg/logger"
)

func TestEvents(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Events Module Suite")
}

var _ = ginkgo.Describe("EventBus", func() {
	var bus *EventBus

	ginkgo.BeforeEach(func() {
		bus = NewEventBus(logger.L())
	})

	ginkgo.It("should deliver the typed event to its subscribers", func() {
		// Given
		received := make(chan Event, 1)
		bus.Subscribe(EventTypeDocumentMoved, func(ctx context.Context, event Event) error {
			received <- event
			return nil
		})

		// When
		toDept := int64(2)
		err := bus.Publish(context.Background(),
			NewDocumentMovedEvent(5, "DOC-TEST-001", "derivado", "en_proceso", 10, &toDept))

		// Then
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		var event Event
		gomega.Eventually(received).Should(gomega.Receive(&event))

		moved, ok := event.(DocumentMoved)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(moved.DocumentCode).To(gomega.Equal("DOC-TEST-001"))
		gomega.Expect(moved.Action).To(gomega.Equal("derivado"))
		gomega.Expect(moved.NewStatus).To(gomega.Equal("en_proceso"))
		gomega.Expect(*moved.ToDepartmentID).To(gomega.Equal(int64(2)))
		gomega.Expect(moved.EventID()).ToNot(gomega.BeEmpty())
	})

	ginkgo.It("should not invoke subscribers of other event types", func() {
		invoked := make(chan struct{}, 1)
		bus.Subscribe(EventTypeUserInvited, func(ctx context.Context, event Event) error {
			invoked <- struct{}{}
			return nil
		})

		err := bus.Publish(context.Background(), NewDocumentCreatedEvent(1, "DOC-X", "Expediente", 1))

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Consistently(invoked).ShouldNot(gomega.Receive())
	})

	ginkgo.It("should keep delivering when other handlers fail or panic", func() {
		// Given
		received := make(chan Event, 1)
		bus.Subscribe(EventTypeAttachmentAdded, func(ctx context.Context, event Event) error {
			panic("subscriber bug")
		})
		bus.Subscribe(EventTypeAttachmentAdded, func(ctx context.Context, event Event) error {
			return errors.New("database error")
		})
		bus.Subscribe(EventTypeAttachmentAdded, func(ctx context.Context, event Event) error {
			received <- event
			return nil
		})

		// When
		err := bus.Publish(context.Background(),
			NewAttachmentAddedEvent(5, "DOC-TEST-001", "informe.pdf", 11, 2))

		// Then
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Eventually(received).Should(gomega.Receive())
	})
})
