package guard_test

import (
	"errors"
	"sync"
	"testing"

	"kargo/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotConstructed := errors.New("report must be created via NewReport")

	t.Run("constructed guard passes", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errNotConstructed))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero guard returns the supplied error", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(errNotConstructed)

		assert.Equal(t, errNotConstructed, err)
	})

	t.Run("zero guard falls back to the default error", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	type fee struct {
		amount int64
		guard  guard.ConstructorGuard
	}
	errFeeNotConstructed := errors.New("fee must be created via newFee")
	newFee := func(amount int64) fee {
		return fee{amount: amount, guard: guard.NewConstructorGuard()}
	}

	require.NoError(t, newFee(1500).guard.Validate(errFeeNotConstructed))

	var zero fee
	require.ErrorIs(t, zero.guard.Validate(errFeeNotConstructed), errFeeNotConstructed)
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Validate(nil))
		}()
	}
	wg.Wait()
}
