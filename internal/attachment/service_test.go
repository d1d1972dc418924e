package attachment

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/sisedoc/document-tracking/internal"
	"github.com/sisedoc/document-tracking/pkg/logger"
)

func TestAttachment(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Attachment Module Suite")
}

type mockRepository struct {
	attachments    map[int64]*Attachment
	hasAttachments map[int64]bool
	nextID         int64
	failWith       error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		attachments:    map[int64]*Attachment{},
		hasAttachments: map[int64]bool{},
		nextID:         1,
	}
}

func (m *mockRepository) GetByID(id int64) (*Attachment, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.attachments[id], nil
}

func (m *mockRepository) GetByDocument(documentID int64) ([]*Attachment, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []*Attachment
	for _, att := range m.attachments {
		if att.DocumentID == documentID {
			out = append(out, att)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(att *Attachment) error {
	if m.failWith != nil {
		return m.failWith
	}
	att.ID = m.nextID
	m.nextID++
	m.attachments[att.ID] = att
	return nil
}

func (m *mockRepository) Delete(id int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	delete(m.attachments, id)
	return nil
}

func (m *mockRepository) ClearMainFlag(documentID int64) error {
	for _, att := range m.attachments {
		if att.DocumentID == documentID {
			att.IsMainDocument = false
		}
	}
	return nil
}

func (m *mockRepository) CountForDocument(documentID int64) (int64, error) {
	var count int64
	for _, att := range m.attachments {
		if att.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) SetDocumentHasAttachments(documentID int64, has bool) error {
	m.hasAttachments[documentID] = has
	return nil
}

type mockStorage struct {
	blobs     map[string][]byte
	putCalls  int
	putErr    error
	deleteErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{blobs: map[string][]byte{}}
}

func (m *mockStorage) Put(key string, contentType string, r io.Reader) error {
	m.putCalls++
	if m.putErr != nil {
		return m.putErr
	}
	data, _ := io.ReadAll(r)
	m.blobs[key] = data
	return nil
}

func (m *mockStorage) Get(key string) (io.ReadCloser, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, errors.New("no such file or directory")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockStorage) Delete(key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.blobs, key)
	return nil
}

type mockDocuments struct {
	docs map[int64]*DocumentRef
}

func (m *mockDocuments) GetByID(id int64) (*DocumentRef, error) {
	return m.docs[id], nil
}

var _ = ginkgo.Describe("AttachmentService", func() {
	var (
		service *Service
		repo    *mockRepository
		storage *mockStorage
		user    *internal.User
	)

	pdfUpload := func(size int64) UploadInput {
		return UploadInput{
			DocumentID:  1,
			FileName:    "informe.pdf",
			ContentType: "application/pdf",
			Size:        size,
			Content:     strings.NewReader("pdf bytes"),
		}
	}

	ginkgo.BeforeEach(func() {
		repo = newMockRepository()
		storage = newMockStorage()
		docs := &mockDocuments{docs: map[int64]*DocumentRef{
			1: {ID: 1, DocumentCode: "DOC-TEST-001"},
		}}
		service = NewService(repo, storage, docs, nil, logger.L())
		user = &internal.User{ID: 7, Role: internal.RoleUser}
	})

	ginkgo.Describe("Upload", func() {
		ginkgo.It("should store the blob and flag the document", func() {
			// When
			att, err := service.Upload(user, pdfUpload(1024))

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(att.ID).To(gomega.BeNumerically(">", 0))
			gomega.Expect(att.StoragePath).To(gomega.MatchRegexp(`^1/\d+\.pdf$`))
			gomega.Expect(storage.blobs).To(gomega.HaveKey(att.StoragePath))
			gomega.Expect(repo.hasAttachments[1]).To(gomega.BeTrue())
		})

		ginkgo.It("should store the description and start at version 1", func() {
			// Given
			in := pdfUpload(1024)
			desc := "Informe técnico firmado"
			in.Description = &desc

			// When
			att, err := service.Upload(user, in)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(att.Description).ToNot(gomega.BeNil())
			gomega.Expect(*att.Description).To(gomega.Equal("Informe técnico firmado"))
			gomega.Expect(att.Version).To(gomega.Equal(1))
		})

		ginkgo.It("should leave the description empty when none is given", func() {
			att, err := service.Upload(user, pdfUpload(1024))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(att.Description).To(gomega.BeNil())
		})

		ginkgo.It("should reject a 6MB file before any storage call", func() {
			// When
			_, err := service.Upload(user, pdfUpload(6*1024*1024))

			// Then
			gomega.Expect(err).To(gomega.Equal(internal.ErrFileTooLarge))
			gomega.Expect(storage.putCalls).To(gomega.BeZero())
		})

		ginkgo.It("should reject an executable regardless of declared MIME type", func() {
			// Given
			in := pdfUpload(1024)
			in.FileName = "malware.exe"

			// When
			_, err := service.Upload(user, in)

			// Then
			gomega.Expect(err).To(gomega.Equal(internal.ErrFileTypeNotAllowed))
			gomega.Expect(storage.putCalls).To(gomega.BeZero())
		})

		ginkgo.It("should reject a disallowed MIME type", func() {
			// Given
			in := pdfUpload(1024)
			in.ContentType = "image/png"
			in.FileName = "captura.pdf"

			// When
			_, err := service.Upload(user, in)

			// Then
			gomega.Expect(err).To(gomega.Equal(internal.ErrFileTypeNotAllowed))
		})

		ginkgo.It("should accept Word and Excel documents", func() {
			for _, tc := range []struct{ name, mime string }{
				{"oficio.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
				{"reporte.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
			} {
				in := pdfUpload(1024)
				in.FileName = tc.name
				in.ContentType = tc.mime
				in.Content = strings.NewReader("bytes")

				_, err := service.Upload(user, in)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			}
		})

		ginkgo.It("should clear the previous main attachment when a new main arrives", func() {
			// Given
			first := pdfUpload(100)
			first.IsMainDocument = true
			att1, err := service.Upload(user, first)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			second := pdfUpload(100)
			second.IsMainDocument = true
			second.Content = strings.NewReader("other")
			att2, err := service.Upload(user, second)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// Then
			gomega.Expect(repo.attachments[att1.ID].IsMainDocument).To(gomega.BeFalse())
			gomega.Expect(repo.attachments[att2.ID].IsMainDocument).To(gomega.BeTrue())
		})

		ginkgo.It("should translate a missing bucket into a guidance message", func() {
			// Given
			storage.putErr = errors.New("Bucket not found: attachments")

			// When
			_, err := service.Upload(user, pdfUpload(1024))

			// Then
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeBucketMissing))
		})

		ginkgo.It("should return not found for an unknown document", func() {
			in := pdfUpload(1024)
			in.DocumentID = 99

			_, err := service.Upload(user, in)

			gomega.Expect(err).To(gomega.Equal(internal.ErrDocumentNotFound))
		})
	})

	ginkgo.Describe("Delete", func() {
		var att *Attachment

		ginkgo.BeforeEach(func() {
			var err error
			att, err = service.Upload(user, pdfUpload(512))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should remove blob and metadata and unflag the document", func() {
			// When
			err := service.Delete(att.ID)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(storage.blobs).ToNot(gomega.HaveKey(att.StoragePath))
			gomega.Expect(repo.attachments).ToNot(gomega.HaveKey(att.ID))
			gomega.Expect(repo.hasAttachments[1]).To(gomega.BeFalse())
		})

		ginkgo.It("should keep has_attachments true while other files remain", func() {
			// Given
			other := pdfUpload(256)
			other.Content = strings.NewReader("second")
			_, err := service.Upload(user, other)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			err = service.Delete(att.ID)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.hasAttachments[1]).To(gomega.BeTrue())
		})

		ginkgo.It("should delete metadata even when the blob delete fails", func() {
			// Given
			storage.deleteErr = errors.New("permission denied")

			// When
			err := service.Delete(att.ID)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.attachments).ToNot(gomega.HaveKey(att.ID))
		})

		ginkgo.It("should return not found for a missing attachment", func() {
			err := service.Delete(999)

			gomega.Expect(err).To(gomega.Equal(internal.ErrAttachmentNotFound))
		})
	})
})
