// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"melodia/config"
	deliverycontext "melodia/internal/delivery/context"
	"melodia/internal/domain/entity"
	domainerrors "melodia/internal/domain/errors"
	"melodia/internal/domain/repository"
	"melodia/internal/domain/service"
	"melodia/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	verificationMailSubject  = "Verify your email"
	verificationMailTemplate = "verification_code.html"
)

// authService implements the AuthUsecase interface.
type authService struct {
	accountRepo  repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	sessionStore service.SessionStore
	otpService   service.OTPService
	mailer       service.Mailer
	otpTTL       string
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	AccountRepo  repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	SessionStore service.SessionStore
	OTPService   service.OTPService
	Mailer       service.Mailer
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		accountRepo:  params.AccountRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		sessionStore: params.SessionStore,
		otpService:   params.OTPService,
		mailer:       params.Mailer,
		otpTTL:       params.Config.OTP.TTL.String(),
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates an unverified account and mails the verification code.
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	email := entity.NormalizeEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrHashingFailed.WrapMessage("failed to hash password during registration")
	}

	account := &entity.Account{
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Roles:        entity.Roles{entity.RoleUser},
		Verified:     false,
	}

	if err := srv.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, domainerrors.ErrEmailAlreadyExists.WrapMessage("email already registered")
		}

		return nil, errors.Wrap(err, "failed to create account during registration")
	}

	// Mail failure must not undo the registration; the client recovers
	// through the resend flow.
	if err := srv.sendVerificationCode(ctx, account); err != nil {
		srv.log(ctx).Warn("Failed to send verification code after registration",
			slog.Any("accountID", account.ID), slog.Any("error", err))
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("accountID", account.ID))

	return &usecase.RegisterOutput{Account: account}, nil
}

// Login verifies credentials and issues a fresh token pair.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := entity.NormalizeEmail(input.Email)

	account, err := srv.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// Unknown email answers the same as a wrong password.
			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to find account during login")
	}

	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		srv.log(ctx).Warn("Password mismatch during login", slog.Any("accountID", account.ID))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	if !account.Verified {
		return nil, domainerrors.ErrAccountNotVerified.WrapMessage("email not verified")
	}

	output, err := srv.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Login succeeded", slog.Any("accountID", account.ID))

	return output, nil
}

// Refresh consumes the presented refresh token and issues a new pair.
func (srv *authService) Refresh(ctx context.Context, accountID uuid.UUID, refreshToken string) (*usecase.LoginOutput, error) {
	won, err := srv.sessionStore.Consume(ctx, accountID, refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to consume refresh session")
	}
	if !won {
		srv.log(ctx).Warn("Refresh attempted with a revoked token", slog.Any("accountID", accountID))

		return nil, domainerrors.ErrRefreshTokenRevoked.WrapMessage("refresh token already used or revoked")
	}

	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrUnauthenticated.WrapMessage("account no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load account during refresh")
	}

	return srv.issueSession(ctx, account)
}

// Logout revokes the refresh session; revoking twice is harmless.
func (srv *authService) Logout(ctx context.Context, accountID uuid.UUID, refreshToken string) error {
	if err := srv.sessionStore.Revoke(ctx, accountID, refreshToken); err != nil {
		return errors.Wrap(err, "failed to revoke refresh session")
	}

	srv.log(ctx).Info("Logout completed", slog.Any("accountID", accountID))

	return nil
}

// VerifyOTP consumes the verification code and marks the account verified.
func (srv *authService) VerifyOTP(ctx context.Context, input usecase.VerifyOTPInput) error {
	email := entity.NormalizeEmail(input.Email)

	ok, err := srv.otpService.Verify(ctx, email, input.Code)
	if err != nil {
		return errors.Wrap(err, "failed to verify code")
	}
	if !ok {
		return domainerrors.ErrInvalidOrExpiredOTP.WrapMessage("verification failed")
	}

	account, err := srv.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domainerrors.ErrAccountNotFound.WrapMessage("no account for verified email")
		}

		return errors.Wrap(err, "failed to load account during verification")
	}

	if _, err := srv.accountRepo.SetVerified(ctx, true, account.ID); err != nil {
		return errors.Wrap(err, "failed to mark account verified")
	}

	srv.log(ctx).Info("Email verified", slog.Any("accountID", account.ID))

	return nil
}

// ResendOTP regenerates the verification code, invalidating any pending one.
func (srv *authService) ResendOTP(ctx context.Context, email string) error {
	email = entity.NormalizeEmail(email)

	account, err := srv.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domainerrors.ErrAccountNotFound.WrapMessage("no account for email")
		}

		return errors.Wrap(err, "failed to find account for resend")
	}

	if account.Verified {
		return domainerrors.ErrValidation.WrapMessage("account already verified")
	}

	if err := srv.sendVerificationCode(ctx, account); err != nil {
		return errors.Wrap(err, "failed to resend verification code")
	}

	return nil
}

// issueSession signs a token pair and records the refresh session.
func (srv *authService) issueSession(ctx context.Context, account *entity.Account) (*usecase.LoginOutput, error) {
	pair, err := srv.tokenService.IssuePair(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token pair")
	}

	if err := srv.sessionStore.Put(ctx, account.ID, pair.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "failed to record refresh session")
	}

	return &usecase.LoginOutput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Account:      account,
	}, nil
}

func (srv *authService) sendVerificationCode(ctx context.Context, account *entity.Account) error {
	code, err := srv.otpService.Generate(ctx, account.Email)
	if err != nil {
		return errors.Wrap(err, "failed to generate verification code")
	}

	data := map[string]string{
		"Name":      account.DisplayName(),
		"Code":      code,
		"ExpiresIn": srv.otpTTL,
	}

	if err := srv.mailer.Send(ctx, account.Email, verificationMailSubject, verificationMailTemplate, data); err != nil {
		return errors.Wrap(err, "failed to send verification mail")
	}

	return nil
}
