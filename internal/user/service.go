package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/backend"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/common"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/session"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/syllabus"
	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-opofit/pkg/utilities"
)

// Service is the identity gate. It owns registration, login, logout and the
// pending/approved/revoked state machine, and bridges identity-provider
// accounts to profile records.
//
// Self-registration approves instantly. A profile that is still missing after
// the bounded post-login retry is a hard failure; no profile is recreated.
type Service struct {
	backend  backend.Backend
	issuer   *session.Issuer
	logger   *zap.SugaredLogger
	validate *validator.Validate
	now      func() time.Time

	// configuration knobs
	SessionTTL           time.Duration
	ProfileRetryBase     time.Duration
	ProfileFetchAttempts uint64
}

func NewService(b backend.Backend, issuer *session.Issuer, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		backend:              b,
		issuer:               issuer,
		logger:               logger,
		validate:             validator.New(validator.WithRequiredStructEnabled()),
		now:                  time.Now,
		SessionTTL:           24 * time.Hour,
		ProfileRetryBase:     100 * time.Millisecond,
		ProfileFetchAttempts: 3,
	}
}

// RegisterInput is the self-service registration form.
type RegisterInput struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Phone    string `json:"phone" validate:"max=32"`
	Password string `json:"password" validate:"required"`
	Reason   string `json:"reason" validate:"max=500"`
}

func (in *RegisterInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = backend.NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Reason = strings.TrimSpace(in.Reason)
}

// LoginResult is handed back on a successful login. Token is the session
// handle every later call presents.
type LoginResult struct {
	User      *entity.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func (s *Service) checkInput(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return common.Validation(fmt.Sprintf("field %s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return common.Validation(err.Error())
	}
	return nil
}

// Register creates the identity account and the profile record. The email is
// checked against the profile store before any account is created.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.normalize()
	if err := s.checkInput(in); err != nil {
		return nil, err
	}
	u, err := s.createUser(ctx, in, false)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("user registered", "user_id", u.ID)
	return u, nil
}

func (s *Service) createUser(ctx context.Context, in RegisterInput, admin bool) (*entity.User, error) {
	existing, err := s.backend.Profiles().FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, common.ErrDuplicateEmail
	}

	id, err := s.backend.Identity().CreateAccount(ctx, in.Email, in.Password, in.FullName)
	if err != nil {
		if errors.Is(err, common.ErrAccountExists) {
			return nil, common.ErrDuplicateAccount
		}
		return nil, err
	}

	now := s.now()
	u := &entity.User{
		ID:        id,
		FullName:  in.FullName,
		Email:     in.Email,
		Phone:     in.Phone,
		Reason:    in.Reason,
		Status:    entity.StatusApproved,
		IsAdmin:   admin,
		Data:      syllabus.InitialData(now, utilities.NewKSUID),
		CreatedAt: now.UTC(),
	}
	if err := s.backend.Profiles().Put(ctx, u); err != nil {
		s.logger.Errorw("orphaned identity account: profile write failed", "user_id", id, "err", err)
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrDuplicateAccount
		}
		if errors.Is(err, common.ErrUnavailable) {
			return nil, err
		}
		return nil, common.Unavailable("put user", err)
	}
	return u.Clone(), nil
}

// Login authenticates, opens a session and admits only approved profiles.
// Every rejection after authentication deletes the session first.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	id, err := s.backend.Identity().Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sess, err := s.backend.Sessions().Create(ctx, id, s.SessionTTL)
	if err != nil {
		return nil, err
	}

	u, err := s.fetchProfile(ctx, id)
	if err != nil {
		s.endSession(ctx, sess.ID)
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warnw("authenticated account has no profile", "user_id", id)
			return nil, common.ErrProfileNotFound
		}
		return nil, err
	}

	if err := admit(u); err != nil {
		s.endSession(ctx, sess.ID)
		s.logger.Debugw("login rejected", "user_id", id, "status", u.Status)
		return nil, err
	}

	token, err := s.issuer.Sign(sess)
	if err != nil {
		s.endSession(ctx, sess.ID)
		return nil, err
	}
	s.logger.Infow("user logged in", "user_id", id)
	return &LoginResult{User: u, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// fetchProfile absorbs a short write-then-read delay in the store: a missing
// profile is retried with exponential backoff, anything else is returned.
func (s *Service) fetchProfile(ctx context.Context, id string) (*entity.User, error) {
	attempts := s.ProfileFetchAttempts
	if attempts == 0 {
		attempts = 1
	}
	b := retry.WithMaxRetries(attempts-1, retry.NewExponential(s.ProfileRetryBase))

	var u *entity.User
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		got, err := s.backend.Profiles().Get(ctx, id)
		if errors.Is(err, common.ErrNotFound) {
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		u = got
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, common.Unavailable("fetch profile", ctxErr)
		}
		return nil, err
	}
	return u, nil
}

func admit(u *entity.User) error {
	switch u.Status {
	case entity.StatusApproved:
		return nil
	case entity.StatusPending:
		return common.ErrPendingApproval
	default:
		return common.ErrRevokedAccess
	}
}

// endSession tears a session down. The token for it was never handed out, so
// a failed delete is logged and otherwise ignored.
func (s *Service) endSession(ctx context.Context, id string) {
	if err := s.backend.Sessions().Delete(ctx, id); err != nil {
		s.logger.Warnw("session teardown failed", "session_id", id, "err", err)
	}
}

// Logout deletes the session behind token. It always succeeds: unknown or
// invalid tokens are already logged out, and a session the store failed to
// delete still ends when its token expires.
func (s *Service) Logout(ctx context.Context, token string) error {
	h, err := s.issuer.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.backend.Sessions().Delete(ctx, h.SessionID); err != nil {
		s.logger.Warnw("logout: session delete failed", "user_id", h.UserID, "session_id", h.SessionID, "err", err)
		return nil
	}
	s.logger.Infow("user logged out", "user_id", h.UserID)
	return nil
}

// CurrentUser resolves token to its profile. Any dead or unknown session is
// absent (nil, nil); only transport failures are errors.
func (s *Service) CurrentUser(ctx context.Context, token string) (*entity.User, error) {
	h, err := s.issuer.Parse(token)
	if err != nil {
		return nil, nil
	}
	sess, err := s.backend.Sessions().Get(ctx, h.SessionID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sess.UserID != h.UserID {
		return nil, nil
	}
	return s.GetUserProfile(ctx, sess.UserID)
}

// Authorize is the per-call check of protected routes: the session must be
// live and its profile approved right now.
func (s *Service) Authorize(ctx context.Context, token string) (*entity.User, error) {
	u, err := s.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, common.ErrNotAuthenticated
	}
	if err := admit(u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserProfile returns nil, nil when no profile has this id.
func (s *Service) GetUserProfile(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.backend.Profiles().Get(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// requireAdmin checks the stored record of actor, not the copy passed in.
func (s *Service) requireAdmin(ctx context.Context, actor *entity.User) error {
	if actor == nil {
		return common.ErrUnauthorized
	}
	cur, err := s.backend.Profiles().Get(ctx, actor.ID)
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrUnauthorized
	}
	if err != nil {
		return err
	}
	if !cur.IsActiveAdmin() {
		return common.ErrUnauthorized
	}
	return nil
}

var transitions = map[entity.Status][]entity.Status{
	entity.StatusPending:  {entity.StatusApproved},
	entity.StatusApproved: {entity.StatusRevoked},
	entity.StatusRevoked:  {entity.StatusApproved},
}

func checkTransition(target *entity.User, to entity.Status) error {
	if target.IsAdmin && to == entity.StatusRevoked {
		return fmt.Errorf("%w: administrators cannot be revoked", common.ErrInvalidTransition)
	}
	for _, next := range transitions[target.Status] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", common.ErrInvalidTransition, target.Status, to)
}

// UpdateUserStatus moves a user through the approval state machine. actor
// must be an approved administrator. Setting the current status again is a
// no-op. The returned record is re-read after the write.
func (s *Service) UpdateUserStatus(ctx context.Context, actor *entity.User, userID string, status entity.Status) (*entity.User, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, common.Validation(fmt.Sprintf("unknown status %q", status))
	}
	target, err := s.backend.Profiles().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.Status == status {
		return target, nil
	}
	if err := checkTransition(target, status); err != nil {
		return nil, err
	}
	if err := s.backend.Profiles().UpdateStatus(ctx, userID, status); err != nil {
		return nil, err
	}
	s.logger.Infow("user status changed", "user_id", userID, "from", target.Status, "to", status, "by", actor.ID)
	return s.backend.Profiles().Get(ctx, userID)
}

// GetAllUsers lists every profile, oldest first. Admin only.
func (s *Service) GetAllUsers(ctx context.Context, actor *entity.User) ([]*entity.User, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	return s.backend.Profiles().List(ctx)
}

// ProvisionAdmin makes sure an approved administrator exists for email. It
// returns the record and whether it was created now.
func (s *Service) ProvisionAdmin(ctx context.Context, fullName, email, password string) (*entity.User, bool, error) {
	in := RegisterInput{FullName: fullName, Email: email, Password: password}
	in.normalize()
	if err := s.checkInput(in); err != nil {
		return nil, false, err
	}

	existing, err := s.backend.Profiles().FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		u := existing[0]
		if !u.IsActiveAdmin() {
			s.logger.Warnw("configured admin email belongs to a non-admin profile", "user_id", u.ID)
		}
		return u, false, nil
	}

	u, err := s.createUser(ctx, in, true)
	if errors.Is(err, common.ErrDuplicateAccount) {
		// account without a profile: recover it with the configured password
		u, err = s.adoptAccount(ctx, in)
	}
	if err != nil {
		return nil, false, err
	}
	s.logger.Infow("admin provisioned", "user_id", u.ID)
	return u, true, nil
}

func (s *Service) adoptAccount(ctx context.Context, in RegisterInput) (*entity.User, error) {
	id, err := s.backend.Identity().Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u := &entity.User{
		ID:        id,
		FullName:  in.FullName,
		Email:     in.Email,
		Status:    entity.StatusApproved,
		IsAdmin:   true,
		Data:      syllabus.InitialData(now, utilities.NewKSUID),
		CreatedAt: now.UTC(),
	}
	if err := s.backend.Profiles().Put(ctx, u); err != nil {
		return nil, err
	}
	return u.Clone(), nil
}
