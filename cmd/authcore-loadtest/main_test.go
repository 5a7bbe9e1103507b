package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nuworks/authcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(1), percentile(samples, 0))
	assert.Equal(t, time.Duration(5), percentile(samples, 50))
	assert.Equal(t, time.Duration(9), percentile(samples, 95))
	assert.Equal(t, time.Duration(10), percentile(samples, 100))
	assert.Zero(t, percentile(nil, 50))
}

func TestRunPhaseCountsEveryOp(t *testing.T) {
	stats := runPhase(context.Background(), 100, 8, func(_ context.Context, i int) error {
		if i%10 == 0 {
			return errors.New("boom")
		}
		return nil
	})
	assert.Equal(t, 100, stats.ops)
	assert.Equal(t, int64(10), stats.failures)
}

func TestUserSetLookup(t *testing.T) {
	users, err := newUserSet(3)
	require.NoError(t, err)

	rec, err := users.FindByEmail(context.Background(), "user-1@loadtest.local")
	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.ID)

	_, err = users.FindByEmail(context.Background(), "nobody@loadtest.local")
	assert.ErrorIs(t, err, authcore.ErrUserNotFound)

	require.NoError(t, users.BlockUser(context.Background(), "user-1", authcore.BlockActive))
	rec, err = users.FindByEmail(context.Background(), "user-1@loadtest.local")
	require.NoError(t, err)
	assert.True(t, rec.Blocked)
}

func TestRootCommandAgainstMiniredis(t *testing.T) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--users=4", "--concurrency=2", "--ops=8", "--log.level=error"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "authenticate: ops=8 failures=0")
	assert.Contains(t, out.String(), "verify_access: ops=8 failures=0")
	assert.Contains(t, out.String(), "verify_refresh: ops=8 failures=0")
}

func TestRootCommandRejectsZeroOps(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--ops=0"})
	assert.Error(t, cmd.Execute())
}
