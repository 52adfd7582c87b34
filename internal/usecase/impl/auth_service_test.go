package impl

import (
	"context"
	"testing"

	"melodia/internal/domain/entity"
	domainerrors "melodia/internal/domain/errors"
	"melodia/internal/domain/service"
	"melodia/internal/errors"
	infraauth "melodia/internal/infra/auth"
	"melodia/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service  usecase.AuthUsecase
	repo     *fakeAccountRepo
	sessions *fakeSessionStore
	otp      *fakeOTPService
	mailer   *recordingMailer
	tokens   service.TokenService
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	t.Helper()

	cfg := newTestConfig()
	tokens, err := infraauth.NewJWTService(cfg)
	require.NoError(t, err)

	repo := newFakeAccountRepo()
	sessions := newFakeSessionStore()
	otp := newFakeOTPService()
	mailer := &recordingMailer{}

	svc := NewAuthService(AuthServiceParams{
		AccountRepo:  repo,
		Hasher:       infraauth.NewBcryptHasher(cfg),
		TokenService: tokens,
		SessionStore: sessions,
		OTPService:   otp,
		Mailer:       mailer,
		Config:       cfg,
		Logger:       newDiscardLogger(),
	})

	return authServiceFixtures{
		service:  svc,
		repo:     repo,
		sessions: sessions,
		otp:      otp,
		mailer:   mailer,
		tokens:   tokens,
	}
}

func registerInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:     "Alice@Example.com",
		Password:  "Password123!",
		FirstName: "Alice",
		LastName:  "Smith",
	}
}

func registerAndVerify(t *testing.T, f authServiceFixtures) *entity.Account {
	t.Helper()

	ctx := context.Background()
	output, err := f.service.Register(ctx, registerInput())
	require.NoError(t, err)

	err = f.service.VerifyOTP(ctx, usecase.VerifyOTPInput{
		Email: output.Account.Email,
		Code:  "123456",
	})
	require.NoError(t, err)

	return output.Account
}

func TestAuthService_Register_Success(t *testing.T) {
	f := createTestAuthService(t)

	output, err := f.service.Register(context.Background(), registerInput())
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", output.Account.Email, "email must be normalized")
	assert.False(t, output.Account.Verified)
	assert.Equal(t, entity.Roles{entity.RoleUser}, output.Account.Roles)
	assert.NotEqual(t, uuid.Nil, output.Account.ID)
	assert.NotEqual(t, "Password123!", output.Account.PasswordHash)
	assert.Equal(t, 1, f.mailer.sentCount())
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := createTestAuthService(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = f.service.Register(ctx, registerInput())
	assert.True(t, errors.Is(err, domainerrors.ErrEmailAlreadyExists))
}

func TestAuthService_Register_MailFailureDoesNotFailRegistration(t *testing.T) {
	f := createTestAuthService(t)
	f.mailer.sendErr = errBoom

	output, err := f.service.Register(context.Background(), registerInput())
	require.NoError(t, err)
	assert.NotNil(t, output.Account)
}

func TestAuthService_Login_BeforeVerificationFails(t *testing.T) {
	f := createTestAuthService(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = f.service.Login(ctx, usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "Password123!",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotVerified))
}

func TestAuthService_Login_Success(t *testing.T) {
	f := createTestAuthService(t)
	account := registerAndVerify(t, f)
	ctx := context.Background()

	output, err := f.service.Login(ctx, usecase.LoginInput{
		Email:    "ALICE@example.com",
		Password: "Password123!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, output.AccessToken)
	assert.NotEmpty(t, output.RefreshToken)
	assert.Equal(t, account.ID, output.Account.ID)

	// The refresh session must be live.
	live, err := f.sessions.Exists(ctx, account.ID, output.RefreshToken)
	require.NoError(t, err)
	assert.True(t, live)

	// The access token must verify and carry the account claims.
	claims, err := f.tokens.Verify(output.AccessToken, service.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
}

func TestAuthService_Login_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	f := createTestAuthService(t)
	registerAndVerify(t, f)
	ctx := context.Background()

	_, errUnknown := f.service.Login(ctx, usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "Password123!",
	})
	_, errWrong := f.service.Login(ctx, usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})

	assert.True(t, errors.Is(errUnknown, domainerrors.ErrInvalidCredentials))
	assert.True(t, errors.Is(errWrong, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	f := createTestAuthService(t)
	account := registerAndVerify(t, f)
	ctx := context.Background()

	login, err := f.service.Login(ctx, usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "Password123!",
	})
	require.NoError(t, err)

	refreshed, err := f.service.Refresh(ctx, account.ID, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old session is gone, the new one is live.
	oldLive, err := f.sessions.Exists(ctx, account.ID, login.RefreshToken)
	require.NoError(t, err)
	assert.False(t, oldLive)

	newLive, err := f.sessions.Exists(ctx, account.ID, refreshed.RefreshToken)
	require.NoError(t, err)
	assert.True(t, newLive)
}

func TestAuthService_Refresh_ReplayIsRevoked(t *testing.T) {
	f := createTestAuthService(t)
	account := registerAndVerify(t, f)
	ctx := context.Background()

	login, err := f.service.Login(ctx, usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "Password123!",
	})
	require.NoError(t, err)

	_, err = f.service.Refresh(ctx, account.ID, login.RefreshToken)
	require.NoError(t, err)

	_, err = f.service.Refresh(ctx, account.ID, login.RefreshToken)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenRevoked))
}

func TestAuthService_Logout_ThenRefreshFails(t *testing.T) {
	f := createTestAuthService(t)
	account := registerAndVerify(t, f)
	ctx := context.Background()

	login, err := f.service.Login(ctx, usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "Password123!",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, account.ID, login.RefreshToken))

	_, err = f.service.Refresh(ctx, account.ID, login.RefreshToken)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenRevoked))
}

func TestAuthService_Logout_IsIdempotent(t *testing.T) {
	f := createTestAuthService(t)
	account := registerAndVerify(t, f)
	ctx := context.Background()

	require.NoError(t, f.service.Logout(ctx, account.ID, "never-issued"))
	require.NoError(t, f.service.Logout(ctx, account.ID, "never-issued"))
}

func TestAuthService_VerifyOTP_WrongCode(t *testing.T) {
	f := createTestAuthService(t)
	ctx := context.Background()

	output, err := f.service.Register(ctx, registerInput())
	require.NoError(t, err)

	err = f.service.VerifyOTP(ctx, usecase.VerifyOTPInput{
		Email: output.Account.Email,
		Code:  "000000",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidOrExpiredOTP))

	// The right code still works after a failed attempt.
	err = f.service.VerifyOTP(ctx, usecase.VerifyOTPInput{
		Email: output.Account.Email,
		Code:  "123456",
	})
	assert.NoError(t, err)
}

func TestAuthService_VerifyOTP_CodeIsSingleUse(t *testing.T) {
	f := createTestAuthService(t)
	ctx := context.Background()

	output, err := f.service.Register(ctx, registerInput())
	require.NoError(t, err)

	input := usecase.VerifyOTPInput{Email: output.Account.Email, Code: "123456"}
	require.NoError(t, f.service.VerifyOTP(ctx, input))

	err = f.service.VerifyOTP(ctx, input)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidOrExpiredOTP))
}

func TestAuthService_ResendOTP(t *testing.T) {
	f := createTestAuthService(t)
	ctx := context.Background()

	output, err := f.service.Register(ctx, registerInput())
	require.NoError(t, err)
	require.Equal(t, 1, f.mailer.sentCount())

	require.NoError(t, f.service.ResendOTP(ctx, output.Account.Email))
	assert.Equal(t, 2, f.mailer.sentCount())
}

func TestAuthService_ResendOTP_UnknownAccount(t *testing.T) {
	f := createTestAuthService(t)

	err := f.service.ResendOTP(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))
}

func TestAuthService_ResendOTP_AlreadyVerified(t *testing.T) {
	f := createTestAuthService(t)
	account := registerAndVerify(t, f)

	err := f.service.ResendOTP(context.Background(), account.Email)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

// Full lifecycle: register, verify, login, refresh, replay, logout.
func TestAuthService_SessionLifecycle(t *testing.T) {
	f := createTestAuthService(t)
	account := registerAndVerify(t, f)
	ctx := context.Background()

	login, err := f.service.Login(ctx, usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "Password123!",
	})
	require.NoError(t, err)

	refreshed, err := f.service.Refresh(ctx, account.ID, login.RefreshToken)
	require.NoError(t, err)

	_, err = f.service.Refresh(ctx, account.ID, login.RefreshToken)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenRevoked))

	require.NoError(t, f.service.Logout(ctx, account.ID, refreshed.RefreshToken))

	_, err = f.service.Refresh(ctx, account.ID, refreshed.RefreshToken)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenRevoked))
}
