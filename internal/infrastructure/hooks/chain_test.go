package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lnshout/shoutout/internal/ports"
)

func TestUnregisteredHookPassesThrough(t *testing.T) {
	chain := NewChain()

	value, err := chain.ApplyFilter(
		context.Background(), ports.HookModifyLnurlpDescription, "unchanged",
	)
	require.NoError(t, err)
	require.Equal(t, "unchanged", value)
}

func TestFiltersRunInOrder(t *testing.T) {
	chain := NewChain()
	chain.Register("hook", func(_ context.Context, value interface{}) (interface{}, error) {
		return value.(string) + "-a", nil
	})
	chain.Register("hook", func(_ context.Context, value interface{}) (interface{}, error) {
		return value.(string) + "-b", nil
	})

	value, err := chain.ApplyFilter(context.Background(), "hook", "x")
	require.NoError(t, err)
	require.Equal(t, "x-a-b", value)
}

func TestFilterErrorStopsChain(t *testing.T) {
	chain := NewChain()
	boom := errors.New("boom")
	chain.Register("hook", func(context.Context, interface{}) (interface{}, error) {
		return nil, boom
	})
	chain.Register("hook", func(context.Context, interface{}) (interface{}, error) {
		t.Fatal("filter after failure must not run")
		return nil, nil
	})

	_, err := chain.ApplyFilter(context.Background(), "hook", "x")
	require.ErrorIs(t, err, boom)
}
