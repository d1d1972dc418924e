package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/sisedoc/document-tracking/internal"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	passwords     map[string]string // email -> password hash
	userIDs       map[string]int64  // email -> userID
	usersByID     map[int64]*internal.User
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)
	deptID := int64(2)

	return &mockUserRepository{
		passwords: map[string]string{
			"user@sisedoc.gob.pe":  string(hashedPassword),
			"admin@sisedoc.gob.pe": string(hashedPassword),
		},
		userIDs: map[string]int64{
			"user@sisedoc.gob.pe":  1,
			"admin@sisedoc.gob.pe": 2,
		},
		usersByID: map[int64]*internal.User{
			1: {ID: 1, Email: "user@sisedoc.gob.pe", FullName: "Usuario Prueba", Role: internal.RoleUser, DepartmentID: &deptID},
			2: {ID: 2, Email: "admin@sisedoc.gob.pe", FullName: "Admin Prueba", Role: internal.RoleAdmin},
		},
	}
}

func (m *mockUserRepository) GetPasswordForEmail(email string) (string, int64, error) {
	if m.returnError {
		return "", 0, m.errorToReturn
	}

	if hash, exists := m.passwords[email]; exists {
		return hash, m.userIDs[email], nil
	}
	return "", 0, errors.New("user not found")
}

func (m *mockUserRepository) GetSessionUser(userID int64) (*internal.User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}

	if user, exists := m.usersByID[userID]; exists {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service       *Service
		mockRepo      *mockUserRepository
		tokenGen      *JWTTokenGenerator
		accessSecret  string        = "test-access-secret"
		refreshSecret string        = "test-refresh-secret"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return tokens and the session user", func() {
				// Given
				dto := LoginDTO{
					Email:    "user@sisedoc.gob.pe",
					Password: "correct_password",
				}

				// When
				tokens, user, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(user).ToNot(gomega.BeNil())
				gomega.Expect(user.Role).To(gomega.Equal(internal.RoleUser))
				gomega.Expect(user.DepartmentID).ToNot(gomega.BeNil())
			})

			ginkgo.It("should generate valid JWT tokens", func() {
				// Given
				dto := LoginDTO{
					Email:    "admin@sisedoc.gob.pe",
					Password: "correct_password",
				}

				// When
				tokens, _, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("2"))
				gomega.Expect(claims.Email).To(gomega.Equal("admin@sisedoc.gob.pe"))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return error for unknown email", func() {
				// Given
				dto := LoginDTO{
					Email:    "nonexistent@sisedoc.gob.pe",
					Password: "any_password",
				}

				// When
				tokens, user, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
				gomega.Expect(user).To(gomega.BeNil())
			})

			ginkgo.It("should return error for wrong password", func() {
				// Given
				dto := LoginDTO{
					Email:    "user@sisedoc.gob.pe",
					Password: "wrong_password",
				}

				// When
				tokens, _, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return validation error for empty email", func() {
				// Given
				dto := LoginDTO{Password: "password"}

				// When
				_, _, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("email is required"))
			})

			ginkgo.It("should return validation error for empty password", func() {
				// Given
				dto := LoginDTO{Email: "user@sisedoc.gob.pe"}

				// When
				_, _, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
			})
		})

		ginkgo.Context("when repository returns error", func() {
			ginkgo.It("should return invalid credentials error", func() {
				// Given
				mockRepo.setError(errors.New("database error"))
				dto := LoginDTO{
					Email:    "user@sisedoc.gob.pe",
					Password: "correct_password",
				}

				// When
				_, _, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		var validRefreshToken string

		ginkgo.BeforeEach(func() {
			dto := LoginDTO{
				Email:    "user@sisedoc.gob.pe",
				Password: "correct_password",
			}
			tokens, _, err := service.Authenticate(dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validRefreshToken = tokens.RefreshToken
		})

		ginkgo.Context("when refresh token is valid", func() {
			ginkgo.It("should return new tokens preserving user identity", func() {
				// When
				newTokens, err := service.RefreshTokens(validRefreshToken)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(newTokens.AccessToken).ToNot(gomega.BeEmpty())

				claims, err := service.ValidateAccessToken(newTokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("1"))
				gomega.Expect(claims.Email).To(gomega.Equal("user@sisedoc.gob.pe"))
			})
		})

		ginkgo.Context("when refresh token is invalid", func() {
			ginkgo.It("should return error for malformed token", func() {
				// When
				tokens, err := service.RefreshTokens("invalid.token.format")

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should reject an access token used as refresh token", func() {
				// Given
				accessToken, err := tokenGen.GenerateAccessToken("1", "user@sisedoc.gob.pe")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				_, err = service.RefreshTokens(accessToken)

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
			})

			ginkgo.It("should return error for expired token", func() {
				// Given
				expiredTokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -1*time.Hour, -1*time.Hour)
				expiredToken, err := expiredTokenGen.GenerateRefreshToken("1", "user@sisedoc.gob.pe")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				tokens, err := service.RefreshTokens(expiredToken)

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the user was deactivated after token issue", func() {
			ginkgo.It("should return ErrUserInactive", func() {
				// Given
				mockRepo.setError(errors.New("user not found"))

				// When
				_, err := service.RefreshTokens(validRefreshToken)

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrUserInactive))
			})
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.Context("when access token is valid", func() {
			ginkgo.It("should return claims with user information", func() {
				// Given
				token, err := tokenGen.GenerateAccessToken("1", "user@sisedoc.gob.pe")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				claims, err := service.ValidateAccessToken(token)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("1"))
				gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(accessTTL), time.Minute))
			})
		})

		ginkgo.Context("when access token is invalid", func() {
			ginkgo.It("should return error for malformed token", func() {
				claims, err := service.ValidateAccessToken("invalid.token")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})

			ginkgo.It("should return ErrTokenExpired for expired token", func() {
				// Given
				expiredTokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -1*time.Hour, refreshTTL)
				expiredToken, err := expiredTokenGen.GenerateAccessToken("1", "user@sisedoc.gob.pe")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				claims, err := service.ValidateAccessToken(expiredToken)

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
				gomega.Expect(claims).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("HashPassword", func() {
		ginkgo.It("should return a hash that verifies against the password", func() {
			// Given
			password := "test_password_123"

			// When
			hash, err := service.HashPassword(password)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(hash).ToNot(gomega.Equal(password))

			err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should generate different hashes for same password", func() {
			// Given
			password := "same_password"

			// When
			hash1, err1 := service.HashPassword(password)
			hash2, err2 := service.HashPassword(password)

			// Then
			gomega.Expect(err1).ToNot(gomega.HaveOccurred())
			gomega.Expect(err2).ToNot(gomega.HaveOccurred())
			gomega.Expect(hash1).ToNot(gomega.Equal(hash2))
		})
	})
})

var _ = ginkgo.Describe("LoginDTO", func() {
	ginkgo.Describe("Validate", func() {
		ginkgo.It("should accept a complete DTO", func() {
			dto := LoginDTO{
				Email:    "user@sisedoc.gob.pe",
				Password: "secure_password",
			}

			gomega.Expect(dto.Validate()).To(gomega.Succeed())
		})

		ginkgo.It("should reject an empty email", func() {
			dto := LoginDTO{Password: "password"}

			err := dto.Validate()
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.Equal("email is required"))
		})

		ginkgo.It("should reject an empty password", func() {
			dto := LoginDTO{Email: "user@sisedoc.gob.pe"}

			err := dto.Validate()
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.Equal("password is required"))
		})
	})
})
