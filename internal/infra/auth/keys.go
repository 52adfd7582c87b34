package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Keys follow the `auth:<item>:<identifier>` scheme so every auth record
// lives in its own partition of the shared key space.
const keyPrefix = "auth"

// refreshTokenKey derives the session key for one refresh token. The token
// itself never reaches the store; only its digest does, so a raw key dump
// cannot be replayed as a credential.
func refreshTokenKey(accountID uuid.UUID, refreshToken string) string {
	sum := sha256.Sum256([]byte(refreshToken))

	return fmt.Sprintf("%s:refresh_token:%s:%s", keyPrefix, accountID, hex.EncodeToString(sum[:]))
}

func verificationCodeKey(identifier string) string {
	return fmt.Sprintf("%s:verification_code:%s", keyPrefix, identifier)
}
