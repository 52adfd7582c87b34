package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"melodia/config"
	"melodia/internal/domain/repository"
	"melodia/internal/domain/service"
	"melodia/internal/errors"
)

type kvOTPService struct {
	kv     repository.KVStore
	digits int
	ttl    time.Duration
}

// NewOTPService creates a verification-code service over the given KV
// backend. Codes are uniformly random numeric strings of the configured
// width and live only for the configured verification window.
func NewOTPService(cfg *config.Config, kv repository.KVStore) service.OTPService {
	return &kvOTPService{
		kv:     kv,
		digits: cfg.OTP.Digits,
		ttl:    cfg.OTP.TTL,
	}
}

func (s *kvOTPService) Generate(ctx context.Context, identifier string) (string, error) {
	code, err := randomCode(s.digits)
	if err != nil {
		return "", errors.Wrap(err, "generate verification code")
	}

	// Overwrites any pending code for the identifier, so only the latest
	// code ever verifies.
	if err := s.kv.Set(ctx, verificationCodeKey(identifier), code, s.ttl); err != nil {
		return "", errors.Wrap(err, "store verification code")
	}

	return code, nil
}

func (s *kvOTPService) Verify(ctx context.Context, identifier, code string) (bool, error) {
	if code == "" {
		return false, nil
	}

	// Compare-and-delete makes the code single-use: of concurrent verify
	// attempts with the right code exactly one succeeds, and a wrong code
	// never consumes the pending one.
	ok, err := s.kv.CompareAndDelete(ctx, verificationCodeKey(identifier), code)
	if err != nil {
		return false, errors.Wrap(err, "verify code")
	}

	return ok, nil
}

// randomCode draws a uniform numeric code of the given width, preserving
// leading zeros.
func randomCode(digits int) (string, error) {
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)

	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", digits, n), nil
}
