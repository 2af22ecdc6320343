package tx_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/platform/tx"
)

func TestMemoryRunnerPropagatesError(t *testing.T) {
	r := tx.NewMemoryRunner()
	want := errors.New("boom")

	err := r.RunInTx(context.Background(), func(context.Context) error { return want })
	assert.ErrorIs(t, err, want)

	err = r.RunInTx(context.Background(), func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestMemoryRunnerRejectsCancelledContext(t *testing.T) {
	r := tx.NewMemoryRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := r.RunInTx(ctx, func(context.Context) error { called = true; return nil })
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.False(t, called)
}

func TestMemoryRunnerSerializes(t *testing.T) {
	r := tx.NewMemoryRunner()

	var inside, max int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.RunInTx(context.Background(), func(context.Context) error {
				mu.Lock()
				inside++
				if inside > max {
					max = inside
				}
				mu.Unlock()
				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, max, "transactions must not overlap")
}

func TestFromReturnsFalseWithoutTx(t *testing.T) {
	_, ok := tx.From(context.Background())
	assert.False(t, ok)

	// A nil transaction is not stored.
	ctx := tx.WithTx(context.Background(), nil)
	_, ok = tx.From(ctx)
	assert.False(t, ok)
}
