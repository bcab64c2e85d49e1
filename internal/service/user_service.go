package service

import (
	"context"
	"errors"
	"strings"

	"fbclone/internal/media"
	"fbclone/internal/middleware"
	"fbclone/internal/models"
	"fbclone/internal/repository"
	"fbclone/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService covers accounts, authentication and profile images.
type UserService struct {
	userRepo    repository.UserRepository
	sessions    SessionIssuer
	resets      ResetTokenStore
	media       MediaStore
	frontendURL string
	bcryptCost  int
}

// RegisterInput is the sign-up payload. Field order is validation order.
type RegisterInput struct {
	Email    string `json:"email" validate:"account_email"`
	Username string `json:"username" validate:"min=3"`
	Password string `json:"password" validate:"min=6"`
}

// LoginInput is the sign-in payload.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordInput completes a password reset.
type ChangePasswordInput struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password" validate:"min=6"`
}

// AuthResult is a signed-in user and the session token to hand to the client.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func NewUserService(
	userRepo repository.UserRepository,
	sessions SessionIssuer,
	resets ResetTokenStore,
	mediaStore MediaStore,
	frontendURL string,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		sessions:    sessions,
		resets:      resets,
		media:       mediaStore,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		bcryptCost:  bcrypt.DefaultCost,
	}
}

// Register creates an account and opens a session for it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			if dup.Field == "email" {
				return nil, models.NewFieldError("email", "email already taken")
			}
			return nil, models.NewFieldError("username", "username already taken")
		}
		return nil, err
	}

	return s.openSession(ctx, user)
}

// Login checks credentials and opens a session.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewFieldError("username", "that username doesn't exist")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, models.NewFieldError("password", "incorrect password")
	}
	return s.openSession(ctx, user)
}

// Logout destroys the session behind token.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// LoggedUser returns the viewer, or nil for anonymous requests and deleted accounts.
func (s *UserService) LoggedUser(ctx context.Context, viewerID uint) (*models.User, error) {
	if viewerID == 0 {
		return nil, nil
	}
	user, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return presentUser(ctx, s.media, user, viewerID), nil
}

// GetUserByID returns one user as seen by viewerID.
func (s *UserService) GetUserByID(ctx context.Context, viewerID, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return presentUser(ctx, s.media, user, viewerID), nil
}

// GetUsers lists users in id order.
func (s *UserService) GetUsers(ctx context.Context, viewerID uint, limit, offset int) ([]*models.User, error) {
	if offset < 0 {
		offset = 0
	}
	users, err := s.userRepo.List(ctx, repository.ClampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return presentUsers(ctx, s.media, users, viewerID), nil
}

// SearchUsersByUsername finds users whose name contains query, excluding the viewer.
func (s *UserService) SearchUsersByUsername(ctx context.Context, viewerID uint, query string) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.User{}, nil
	}
	users, err := s.userRepo.SearchByUsername(ctx, query, viewerID)
	if err != nil {
		return nil, err
	}
	return presentUsers(ctx, s.media, users, viewerID), nil
}

// UploadImage replaces the viewer's avatar or banner and removes the old object.
func (s *UserService) UploadImage(ctx context.Context, viewerID uint, kind models.ImageKind, upload media.Upload) (*models.User, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError("image kind must be avatar or banner")
	}

	key, err := s.media.Store(ctx, media.PrefixFor(kind), upload)
	if err != nil {
		return nil, err
	}

	previous, err := s.userRepo.UpdateImage(ctx, viewerID, kind, key)
	if err != nil {
		s.media.Delete(ctx, &key)
		return nil, err
	}
	s.media.Delete(ctx, previous)

	return s.GetUserByID(ctx, viewerID, viewerID)
}

// ForgotPassword issues a reset token when email belongs to an account. It
// reports success either way so callers cannot probe for accounts.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if models.IsNotFound(err) {
			return nil
		}
		return err
	}

	token, err := s.resets.Issue(ctx, user.ID)
	if err != nil {
		return models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "password reset requested",
		"user_id", user.ID,
		"link", s.frontendURL+"/change-password/"+token,
	)
	return nil
}

// ChangePassword consumes a reset token, sets the new password and signs the user in.
func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	userID, err := s.resets.Lookup(ctx, in.Token)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if userID == 0 {
		return nil, models.NewFieldError("token", "token expired")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewFieldError("token", "user no longer exists")
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, err
	}
	if err := s.resets.Revoke(ctx, in.Token); err != nil {
		middleware.Logger.WarnContext(ctx, "reset token revoke failed", "user_id", user.ID, "error", err)
	}

	return s.openSession(ctx, user)
}

func (s *UserService) openSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{
		User:  presentUser(ctx, s.media, user, user.ID),
		Token: token,
	}, nil
}
