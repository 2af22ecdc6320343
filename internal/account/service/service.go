// Package service implements registration, login, and the admin vetting
// workflow. CBOs register unvetted and wait for an admin decision; donors
// are vetted on registration.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"matchport/internal/account"
	"matchport/internal/account/store"
	"matchport/internal/notify"
	"matchport/internal/platform/metrics"
	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/platform/sentinel"
	"matchport/pkg/platform/tx"
	"matchport/pkg/requestcontext"
)

// TokenIssuer mints access tokens on login.
type TokenIssuer interface {
	GenerateAccessToken(accountID id.AccountID, role string) (string, error)
}

// Notifier is the dispatcher port shared with the lifecycle engine.
type Notifier interface {
	Notify(ctx context.Context, in notify.Dispatch) (*notify.Notification, error)
}

type Service struct {
	accounts store.Store
	tokens   TokenIssuer
	notifier Notifier
	tx       tx.Runner
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(accounts store.Store, tokens TokenIssuer, notifier Notifier, txRunner tx.Runner, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		notifier: notifier,
		tx:       txRunner,
		logger:   logger,
		metrics:  m,
	}
}

// RegisterInput carries a self-registration. Only the cbo and donor roles
// can self-register; admins are provisioned out of band.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	Role     string
	Phone    string
}

const minPasswordLength = 8

func (in *RegisterInput) validate() error {
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return dErrors.New(dErrors.CodeValidation, "a valid email address is required")
	}
	if strings.TrimSpace(in.Username) == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if len(in.Password) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	return nil
}

// Register creates an account. Donors are vetted immediately; CBOs start
// unvetted and cannot post requests until an admin approves them.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*account.Account, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	role, err := account.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	a := &account.Account{
		ID:           id.NewAccountID(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: string(hash),
		Role:         role,
		Phone:        strings.TrimSpace(in.Phone),
		IsVetted:     role == account.RoleDonor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.accounts.Create(txCtx, a); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "an account with that email or username already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
		}
		_, err := s.notifier.Notify(txCtx, notify.Dispatch{
			RecipientID:    a.ID,
			RecipientEmail: a.Email,
			Type:           notify.TypeWelcome,
			Title:          "Welcome to MatchPort",
			Message:        welcomeMessage(role),
			TemplateID:     welcomeTemplate(role),
			TemplateData:   map[string]string{"username": a.Username},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AccountsRegistered.Inc()
	}
	s.logger.InfoContext(ctx, "account registered",
		slog.String("account_id", a.ID.String()),
		slog.String("role", string(role)),
	)
	return a, nil
}

func welcomeMessage(role account.Role) string {
	if role == account.RoleCBO {
		return "Thanks for registering. Your organization is pending review; you can post requests once an administrator approves it."
	}
	return "Thanks for registering. Browse the board to find requests you can fulfill."
}

func welcomeTemplate(role account.Role) string {
	if role == account.RoleCBO {
		return notify.TemplateWelcomeCBO
	}
	return notify.TemplateWelcomeDonor
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *account.Account, error) {
	a, err := s.accounts.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	token, err := s.tokens.GenerateAccessToken(a.ID, string(a.Role))
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return token, a, nil
}

// Get returns one account by ID.
func (s *Service) Get(ctx context.Context, accountID id.AccountID) (*account.Account, error) {
	a, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return a, nil
}

// EnsureAdmin verifies the actor holds the admin role.
func (s *Service) EnsureAdmin(ctx context.Context, actorID id.AccountID) error {
	if actorID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	a, err := s.accounts.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "unknown account")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if a.Role != account.RoleAdmin {
		return dErrors.New(dErrors.CodePermissionDenied, "administrator access required")
	}
	return nil
}

// SetVetting records an admin vetting decision: the account flag and note
// are overwritten, the decision is appended to the vetting ledger, and the
// account is notified.
func (s *Service) SetVetting(ctx context.Context, adminID, accountID id.AccountID, vetted bool, note string) (*account.Account, error) {
	if err := s.EnsureAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	var updated *account.Account
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		target, err := s.accounts.FindByID(txCtx, accountID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "account not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
		}

		if err := s.accounts.UpdateVetting(txCtx, accountID, vetted, note); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update vetting")
		}
		ev := &account.VettingEvent{
			ID:        id.NewHistoryID(),
			AccountID: accountID,
			AdminID:   adminID,
			Vetted:    vetted,
			Note:      note,
			Timestamp: requestcontext.Now(txCtx),
		}
		if err := s.accounts.AppendVettingEvent(txCtx, ev); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record vetting event")
		}

		title := "Your Account Has Been Approved"
		message := "Your organization has been approved. You can now post requests."
		template := notify.TemplateCBOApproval
		if !vetted {
			title = "Your Account Needs Attention"
			message = "Your organization could not be approved. " + note
			template = notify.TemplateCBORejection
		}
		if _, err := s.notifier.Notify(txCtx, notify.Dispatch{
			RecipientID:    target.ID,
			RecipientEmail: target.Email,
			Type:           notify.TypeVetting,
			Title:          title,
			Message:        message,
			TemplateID:     template,
			TemplateData:   map[string]string{"username": target.Username, "note": note},
		}); err != nil {
			return err
		}

		target.IsVetted = vetted
		target.VettingNote = note
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.VettingDecisions.Inc()
	}
	return updated, nil
}

// VettingQueue lists CBO accounts awaiting review.
func (s *Service) VettingQueue(ctx context.Context, adminID id.AccountID) ([]*account.Account, error) {
	if err := s.EnsureAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	queue, err := s.accounts.ListUnvettedCBOs(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list unvetted accounts")
	}
	return queue, nil
}

// VettingHistory lists the append-only ledger of decisions for an account.
func (s *Service) VettingHistory(ctx context.Context, adminID, accountID id.AccountID) ([]*account.VettingEvent, error) {
	if err := s.EnsureAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	events, err := s.accounts.ListVettingEvents(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list vetting events")
	}
	return events, nil
}
