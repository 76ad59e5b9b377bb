package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avangard-team/auth-service/internal/auth"
	"github.com/avangard-team/auth-service/internal/entity"
	"github.com/avangard-team/auth-service/internal/mailer"
	"github.com/avangard-team/auth-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrPasswordMismatch      = errors.New("passwords do not match")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
)

// resetTokenTTL is how long a password reset link stays valid.
const resetTokenTTL = 10 * time.Minute

// UserRepository is the account store consumed by the usecase. Implemented by
// repository.UserRepository; tests substitute an in-memory fake.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, userID primitive.ObjectID) (*entity.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*entity.User, error)
	GetByActiveResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error)
	MarkVerified(ctx context.Context, userID primitive.ObjectID) error
	SetResetToken(ctx context.Context, userID primitive.ObjectID, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, userID primitive.ObjectID, passwordHash string) error
	List(ctx context.Context, skip, limit int64) ([]*entity.User, error)
}

type UserUsecase struct {
	repo      UserRepository
	mailer    mailer.Mailer
	jwtSecret []byte
	baseURL   string
	logger    *zap.Logger
}

func NewUserUsecase(repo UserRepository, m mailer.Mailer, jwtSecret, baseURL string, logger *zap.Logger) *UserUsecase {
	return &UserUsecase{
		repo:      repo,
		mailer:    m,
		jwtSecret: []byte(jwtSecret),
		baseURL:   baseURL,
		logger:    logger.Named("UserUsecase"),
	}
}

// Register creates an unverified account and sends the verification link.
// The record is committed before the mail goes out; a mail failure surfaces
// as an error but does not roll the record back.
func (u *UserUsecase) Register(ctx context.Context, name, email, password string) error {
	if _, err := u.repo.GetByEmail(ctx, email); err == nil {
		return repository.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	verificationToken, err := auth.GenerateOpaqueToken()
	if err != nil {
		return err
	}

	user := &entity.User{
		Name:              name,
		Email:             email,
		PasswordHash:      string(hashedPassword),
		Role:              entity.RoleUser,
		IsVerified:        false,
		VerificationToken: verificationToken,
	}

	userID, err := u.repo.Create(ctx, user)
	if err != nil {
		return err
	}
	u.logger.Info("User registered", zap.String("userID", userID.Hex()))

	verifyURL := fmt.Sprintf("%s/api/v1/user/verify/%s", u.baseURL, verificationToken)
	if err := u.mailer.SendVerificationEmail(email, name, verifyURL); err != nil {
		u.logger.Error("Failed to send verification email", zap.String("userID", userID.Hex()), zap.Error(err))
		return err
	}

	return nil
}

// Verify marks the account matching the token as verified and clears the
// token. A reused token matches nothing and yields ErrUserNotFound.
func (u *UserUsecase) Verify(ctx context.Context, token string) error {
	user, err := u.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		return err
	}

	if err := u.repo.MarkVerified(ctx, user.ID); err != nil {
		return err
	}
	u.logger.Info("User verified", zap.String("userID", user.ID.Hex()))
	return nil
}

// Login checks credentials and issues a 24h session token. Unverified
// accounts may log in.
func (u *UserUsecase) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	user, err := u.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		u.logger.Warn("Login failed: password mismatch", zap.String("userID", user.ID.Hex()))
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateSessionToken(user.ID.Hex(), user.Role, u.jwtSecret, auth.SessionTTL)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// CurrentUser resolves the identity carried by a session token.
func (u *UserUsecase) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, repository.ErrUserNotFound
	}
	return u.repo.GetByID(ctx, oid)
}

// ForgotPassword issues a fresh reset token valid for ten minutes and mails
// the reset link. Any previously pending token is overwritten.
func (u *UserUsecase) ForgotPassword(ctx context.Context, email string) error {
	user, err := u.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	resetToken, err := auth.GenerateOpaqueToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(resetTokenTTL)
	if err := u.repo.SetResetToken(ctx, user.ID, resetToken, expires); err != nil {
		return err
	}
	u.logger.Info("Password reset token issued", zap.String("userID", user.ID.Hex()))

	resetURL := fmt.Sprintf("%s/reset-password/%s", u.baseURL, resetToken)
	if err := u.mailer.SendPasswordResetEmail(user.Email, user.Name, resetURL); err != nil {
		u.logger.Error("Failed to send password reset email", zap.String("userID", user.ID.Hex()), zap.Error(err))
		return err
	}

	return nil
}

// ResetPassword sets a new password for the account holding a live reset
// token. A wrong token and an expired one are indistinguishable.
func (u *UserUsecase) ResetPassword(ctx context.Context, token, password, confPassword string) error {
	if password != confPassword {
		return ErrPasswordMismatch
	}

	user, err := u.repo.GetByActiveResetToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := u.repo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return err
	}
	u.logger.Info("Password reset completed", zap.String("userID", user.ID.Hex()))
	return nil
}

// ChangePassword rotates the password of an authenticated user after
// re-checking the old one.
func (u *UserUsecase) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := u.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return u.repo.UpdatePassword(ctx, user.ID, string(hashedPassword))
}

// AdminListUsers returns users newest-first for callers holding the admin role.
func (u *UserUsecase) AdminListUsers(ctx context.Context, role string, skip, limit int64) ([]*entity.User, error) {
	if role != entity.RoleAdmin {
		return nil, ErrUnauthorized
	}
	return u.repo.List(ctx, skip, limit)
}
