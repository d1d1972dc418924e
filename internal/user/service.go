package user

import (
	"context"
	"crypto/rand"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/sisedoc/document-tracking/internal"
	"github.com/sisedoc/document-tracking/internal/core/events"
)

const tempPasswordLength = 12

// CredentialsMailer queues the invitation email with the temporary
// password; delivery happens in the background.
type CredentialsMailer interface {
	SendCredentials(to, fullName, tempPassword string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo       RepositoryAPI
	mailer     CredentialsMailer
	eventBus   EventPublisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, mailer CredentialsMailer, eventBus EventPublisher, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		mailer:     mailer,
		eventBus:   eventBus,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) ListUsers() ([]*ManagedUser, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("no se pudieron obtener los usuarios", err)
	}
	return users, nil
}

func (s *Service) GetUser(id int64) (*ManagedUser, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "id", id, "error", err)
		return nil, internal.NewInternalError("no se pudo obtener el usuario", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// UpdateUser applies a partial update to role, department and active flag.
func (s *Service) UpdateUser(id int64, dto UpdateUserDTO) (*ManagedUser, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if _, err := s.GetUser(id); err != nil {
		return nil, err
	}

	if dto.Role != nil {
		if err := s.repo.UpdateRole(id, *dto.Role); err != nil {
			s.logger.Error("failed to update user role", "id", id, "error", err)
			return nil, internal.NewInternalError("no se pudo actualizar el usuario", err)
		}
	}

	if dto.DepartmentID != nil {
		if err := s.repo.UpdateDepartment(id, dto.DepartmentID); err != nil {
			s.logger.Error("failed to update user department", "id", id, "error", err)
			return nil, internal.NewInternalError("no se pudo actualizar el usuario", err)
		}
	}

	if dto.IsActive != nil {
		if err := s.repo.SetActive(id, *dto.IsActive); err != nil {
			s.logger.Error("failed to update user active flag", "id", id, "error", err)
			return nil, internal.NewInternalError("no se pudo actualizar el usuario", err)
		}
	}

	return s.GetUser(id)
}

// InviteUser creates an account with a generated temporary password and
// queues the credentials email. The password is also returned so the admin
// can hand it over directly.
func (s *Service) InviteUser(dto InviteUserDTO, invitedBy int64) (*InviteResponseDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	exists, err := s.repo.EmailExists(dto.Email)
	if err != nil {
		s.logger.Error("failed to check email", "email", dto.Email, "error", err)
		return nil, internal.NewInternalError("no se pudo crear el usuario", err)
	}
	if exists {
		return nil, internal.ErrUserExists
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		s.logger.Error("failed to generate temporary password", "error", err)
		return nil, internal.NewInternalError("no se pudo crear el usuario", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash temporary password", "error", err)
		return nil, internal.NewInternalError("no se pudo crear el usuario", err)
	}

	role := dto.Role
	if role == "" {
		role = internal.RoleUser
	}

	u := &ManagedUser{
		Email:        dto.Email,
		FullName:     dto.FullName,
		PasswordHash: string(hash),
		Role:         role,
		DepartmentID: dto.DepartmentID,
		IsActive:     true,
	}
	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, internal.NewInternalError("no se pudo crear el usuario", err)
	}

	// the invite already succeeded; a full mail queue only costs the email
	if s.mailer != nil {
		if err := s.mailer.SendCredentials(u.Email, u.FullName, tempPassword); err != nil {
			s.logger.Warn("failed to queue credentials email", "email", u.Email, "error", err)
		}
	}

	if s.eventBus != nil {
		event := events.NewUserInvitedEvent(u.Email, u.FullName, tempPassword, invitedBy)
		if err := s.eventBus.Publish(context.Background(), event); err != nil {
			s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
		}
	}

	s.logger.Info("user invited", "id", u.ID, "email", u.Email, "invited_by", invitedBy)

	return &InviteResponseDTO{User: u, TempPassword: tempPassword}, nil
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateTempPassword() (string, error) {
	buf := make([]byte, tempPasswordLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = passwordCharset[int(b)%len(passwordCharset)]
	}
	return string(buf), nil
}
