package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/models"
)

type AccountService struct {
	db       database.Database
	tokens   *auth.TokenService
	ingestor *media.Ingestor
	limits   ImageLimits
	logger   zerolog.Logger
}

func NewAccountService(db database.Database, tokens *auth.TokenService, ingestor *media.Ingestor, limits ImageLimits) *AccountService {
	return &AccountService{
		db:       db,
		tokens:   tokens,
		ingestor: ingestor,
		limits:   limits,
		logger:   log.With().Str("component", "accounts").Logger(),
	}
}

type Registration struct {
	Username string
	Name     string
	Email    string
	Password string
}

// Session is an issued access token.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *models.Account `json:"user"`
}

type ProfileUpdate struct {
	Name  string
	Email string
	Bio   *string
	Image *ImageUpload
}

type ProfileResult struct {
	User         *models.Account `json:"user"`
	ImageWarning string          `json:"image_warning,omitempty"`
}

// OwnerSeed describes the owner account created at deploy time.
type OwnerSeed struct {
	Username string
	Email    string
	Name     string
	Password string
}

// Register creates a regular account. Registration never grants ownership.
func (s *AccountService) Register(ctx context.Context, in Registration) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.ensureAvailable(ctx, "username", username, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, "email", email, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to hash password", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
	}
	if err := s.db.UserRepo().Add(ctx, user); err != nil {
		return nil, errs.NewDatabaseError("create", "user", err)
	}

	s.logger.Info().Str("userId", user.ID.String()).Msg("user registered")
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.db.UserRepo().FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewInvalidCredentialsError()
	}
	if err != nil {
		return nil, errs.NewDatabaseError("fetch", "user", err)
	}
	if !auth.ComparePassword(user.PasswordHash, password) {
		return nil, errs.NewInvalidCredentialsError()
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to issue token", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user.Account()}, nil
}

// Authenticate resolves a bearer token into an actor, reloading the user so the
// owner flag reflects the database.
func (s *AccountService) Authenticate(ctx context.Context, token string) (Actor, *auth.Claims, error) {
	claims, err := s.tokens.Parse(ctx, token)
	if err != nil {
		return Anonymous, nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return Anonymous, nil, errs.NewInvalidTokenError()
	}
	user, err := s.db.UserRepo().FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Anonymous, nil, errs.NewInvalidTokenError()
	}
	if err != nil {
		return Anonymous, nil, errs.NewDatabaseError("fetch", "user", err)
	}
	return ActorFromUser(user), claims, nil
}

// Logout revokes the presented token until it would have expired.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		s.logger.Warn().Err(err).Msg("token revocation not recorded")
	}
	return nil
}

func (s *AccountService) Profile(ctx context.Context, actor Actor) (*models.User, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	user, err := s.db.UserRepo().FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, errs.NewDatabaseError("fetch", "user", err)
	}
	return user, nil
}

// UpdateProfile changes name, e-mail and bio, and optionally the profile image.
// A replaced image is removed after commit.
func (s *AccountService) UpdateProfile(ctx context.Context, actor Actor, in ProfileUpdate) (*ProfileResult, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.ensureAvailable(ctx, "email", email, actor.UserID); err != nil {
		return nil, err
	}

	imageName, warning := stageImage(ctx, s.ingestor, media.ProfilesFolder, s.limits, in.Image)

	var user *models.User
	var replaced *string
	err := s.db.WithTransaction(ctx, func(tx database.Database) error {
		var err error
		user, err = tx.UserRepo().FindByID(ctx, actor.UserID)
		if err != nil {
			return errs.NewDatabaseError("fetch", "user", err)
		}
		user.Name = strings.TrimSpace(in.Name)
		user.Email = email
		user.Bio = blankToNil(in.Bio)
		if imageName != "" {
			replaced = user.ProfileImage
			user.ProfileImage = &imageName
		}
		if err := tx.UserRepo().Update(ctx, user); err != nil {
			return errs.NewDatabaseError("update", "user", err)
		}
		return nil
	})
	if err != nil {
		discardImage(ctx, s.ingestor, media.ProfilesFolder, &imageName)
		return nil, errs.NewDatabaseError("update", "user", err)
	}

	discardImage(ctx, s.ingestor, media.ProfilesFolder, replaced)
	return &ProfileResult{User: user.Account(), ImageWarning: warning}, nil
}

// About returns the owner's public profile.
func (s *AccountService) About(ctx context.Context) (*models.User, error) {
	owner, err := s.db.UserRepo().FindOwner(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("fetch", "owner", err)
	}
	return owner, nil
}

// ProvisionOwner creates the owner account unless one already exists. It is safe
// to run on every deploy; created reports whether this call inserted the row.
func (s *AccountService) ProvisionOwner(ctx context.Context, seed OwnerSeed) (owner *models.User, created bool, err error) {
	users := s.db.UserRepo()

	owner, err = users.FindOwner(ctx)
	if err == nil {
		return owner, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, errs.NewDatabaseError("fetch", "owner", err)
	}
	if seed.Password == "" {
		return nil, false, errs.NewConfigError("OWNER_PASSWORD")
	}

	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return nil, false, errs.NewInternalErrorWithCause("failed to hash password", err)
	}
	owner = &models.User{
		Username:     strings.TrimSpace(seed.Username),
		Email:        strings.ToLower(strings.TrimSpace(seed.Email)),
		Name:         strings.TrimSpace(seed.Name),
		PasswordHash: hash,
		IsOwner:      true,
	}
	if err := users.Add(ctx, owner); err != nil {
		// Another instance may have won the single-owner index.
		if existing, findErr := users.FindOwner(ctx); findErr == nil {
			return existing, false, nil
		}
		return nil, false, errs.NewDatabaseError("create", "owner", err)
	}

	s.logger.Info().Str("userId", owner.ID.String()).Str("username", owner.Username).Msg("owner account provisioned")
	return owner, true, nil
}

func (s *AccountService) ensureAvailable(ctx context.Context, column, value string, exceptID uuid.UUID) error {
	taken, err := s.db.UserRepo().Taken(ctx, column, value, exceptID)
	if err != nil {
		return errs.NewDatabaseError("fetch", "user", err)
	}
	if taken {
		return errs.NewAlreadyExists(column)
	}
	return nil
}
