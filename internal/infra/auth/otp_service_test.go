package auth

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPService_GenerateProducesNumericCode(t *testing.T) {
	svc := NewOTPService(newSessionTestConfig(), newMemKV())

	code, err := svc.Generate(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
}

func TestOTPService_VerifyConsumesCode(t *testing.T) {
	svc := NewOTPService(newSessionTestConfig(), newMemKV())
	ctx := context.Background()

	code, err := svc.Generate(ctx, "alice@example.com")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "alice@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	// The code is gone once used.
	ok, err = svc.Verify(ctx, "alice@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTPService_WrongCodeDoesNotConsume(t *testing.T) {
	svc := NewOTPService(newSessionTestConfig(), newMemKV())
	ctx := context.Background()

	code, err := svc.Generate(ctx, "alice@example.com")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "alice@example.com", "000000x")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Verify(ctx, "alice@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok, "pending code must survive a failed attempt")
}

func TestOTPService_EmptyCodeNeverVerifies(t *testing.T) {
	svc := NewOTPService(newSessionTestConfig(), newMemKV())
	ctx := context.Background()

	_, err := svc.Generate(ctx, "alice@example.com")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "alice@example.com", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTPService_RegenerateInvalidatesPriorCode(t *testing.T) {
	svc := NewOTPService(newSessionTestConfig(), newMemKV())
	ctx := context.Background()

	first, err := svc.Generate(ctx, "alice@example.com")
	require.NoError(t, err)

	second, err := svc.Generate(ctx, "alice@example.com")
	require.NoError(t, err)

	if first != second {
		ok, err := svc.Verify(ctx, "alice@example.com", first)
		require.NoError(t, err)
		assert.False(t, ok, "stale code must not verify")
	}

	ok, err := svc.Verify(ctx, "alice@example.com", second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOTPService_IdentifiersAreIsolated(t *testing.T) {
	svc := NewOTPService(newSessionTestConfig(), newMemKV())
	ctx := context.Background()

	code, err := svc.Generate(ctx, "alice@example.com")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "bob@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTPService_ConcurrentVerifySingleWinner(t *testing.T) {
	svc := NewOTPService(newSessionTestConfig(), newMemKV())
	ctx := context.Background()

	code, err := svc.Generate(ctx, "alice@example.com")
	require.NoError(t, err)

	const attempts = 16

	var (
		wg      sync.WaitGroup
		winners int
		mu      sync.Mutex
	)

	for range attempts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ok, err := svc.Verify(ctx, "alice@example.com", code)
			assert.NoError(t, err)

			if ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, winners)
}
