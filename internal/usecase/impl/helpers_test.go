package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"melodia/config"
	"melodia/internal/domain/entity"
	"melodia/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Access = "test_access_secret_for_service_tests"
	cfg.SecretKey.Refresh = "test_refresh_secret_for_service_tests"
	cfg.Auth.BcryptCost = 4
	cfg.Auth.AccessTokenTTL = 15 * time.Minute
	cfg.Auth.RefreshTokenTTL = time.Hour
	cfg.OTP.Digits = 6
	cfg.OTP.TTL = 2 * time.Minute

	return cfg
}

// fakeAccountRepo is an in-memory AccountRepository with the same error
// semantics as the postgres implementation.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*entity.Account
	byEmail  map[string]uuid.UUID

	createErr error
	findErr   error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: make(map[uuid.UUID]*entity.Account),
		byEmail:  make(map[string]uuid.UUID),
	}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}

	if _, exists := r.byEmail[account.Email]; exists {
		return repository.ErrEmailTaken
	}

	account.ID = uuid.New()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt

	stored := *account
	r.accounts[account.ID] = &stored
	r.byEmail[account.Email] = account.ID

	return nil
}

func (r *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}

	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	account := *r.accounts[id]

	return &account, nil
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	copied := *account

	return &copied, nil
}

func (r *fakeAccountRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := make([]*entity.Account, 0, len(ids))
	for _, id := range ids {
		if account, ok := r.accounts[id]; ok {
			copied := *account
			accounts = append(accounts, &copied)
		}
	}

	return accounts, nil
}

func (r *fakeAccountRepo) List(_ context.Context, opts repository.ListAccountsOptions) ([]*entity.Account, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := make([]*entity.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		copied := *account
		accounts = append(accounts, &copied)
	}

	return accounts, int64(len(r.accounts)), nil
}

func (r *fakeAccountRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}

	account.PasswordHash = passwordHash

	return nil
}

func (r *fakeAccountRepo) SetVerified(_ context.Context, verified bool, ids ...uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for _, id := range ids {
		if account, ok := r.accounts[id]; ok {
			account.Verified = verified
			affected++
		}
	}

	return affected, nil
}

func (r *fakeAccountRepo) UpdateRoles(_ context.Context, roles entity.Roles, ids ...uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for _, id := range ids {
		if account, ok := r.accounts[id]; ok {
			account.Roles = roles
			affected++
		}
	}

	return affected, nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, ids ...uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		account, ok := r.accounts[id]
		if !ok {
			continue
		}

		delete(r.byEmail, account.Email)
		delete(r.accounts, id)
		deleted++
	}

	return deleted, nil
}

// fakeSessionStore tracks live sessions in a map, mirroring the KV-backed
// implementation's semantics.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]struct{}
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]struct{})}
}

func sessionKey(accountID uuid.UUID, token string) string {
	return accountID.String() + ":" + token
}

func (s *fakeSessionStore) Put(_ context.Context, accountID uuid.UUID, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionKey(accountID, refreshToken)] = struct{}{}

	return nil
}

func (s *fakeSessionStore) Exists(_ context.Context, accountID uuid.UUID, refreshToken string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionKey(accountID, refreshToken)]

	return ok, nil
}

func (s *fakeSessionStore) Consume(_ context.Context, accountID uuid.UUID, refreshToken string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(accountID, refreshToken)
	if _, ok := s.sessions[key]; !ok {
		return false, nil
	}

	delete(s.sessions, key)

	return true, nil
}

func (s *fakeSessionStore) Revoke(_ context.Context, accountID uuid.UUID, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionKey(accountID, refreshToken))

	return nil
}

// fakeOTPService hands out a fixed code per identifier and consumes it on a
// successful verify.
type fakeOTPService struct {
	mu    sync.Mutex
	codes map[string]string

	generateErr error
}

func newFakeOTPService() *fakeOTPService {
	return &fakeOTPService{codes: make(map[string]string)}
}

func (s *fakeOTPService) Generate(_ context.Context, identifier string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generateErr != nil {
		return "", s.generateErr
	}

	code := "123456"
	s.codes[identifier] = code

	return code, nil
}

func (s *fakeOTPService) Verify(_ context.Context, identifier, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.codes[identifier]
	if !ok || code == "" || stored != code {
		return false, nil
	}

	delete(s.codes, identifier)

	return true, nil
}

// recordingMailer captures outbound mail instead of sending it.
type recordingMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

type sentMail struct {
	To       string
	Subject  string
	Template string
	Data     any
}

func (m *recordingMailer) Send(_ context.Context, to, subject, template string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}

	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Template: template, Data: data})

	return nil
}

func (m *recordingMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sent)
}

var errBoom = errors.New("boom")
