package process

import (
	"context"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}
}

func TestRun_EmptyCommand(t *testing.T) {
	assert.ErrorIs(t, Run("  "), ErrInvalidArgument)

	_, err := Output("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOutput(t *testing.T) {
	requireShell(t)

	out, err := Output("echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestRunAll_StopsAtFirstFailure(t *testing.T) {
	requireShell(t)

	err := RunAll("true", "false", "echo unreachable")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "false")

	assert.NoError(t, RunAll("true", "true"))
}

func TestRunTimeout_Success(t *testing.T) {
	requireShell(t)

	res, err := RunTimeout(context.Background(), 5*time.Second, "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, string(res.Output), "out")
	assert.Contains(t, string(res.Output), "err")
}

func TestRunTimeout_ExitCode(t *testing.T) {
	requireShell(t)

	res, err := RunTimeout(context.Background(), 5*time.Second, "sh", "-c", "exit 3")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunTimeout_KillsOnDeadline(t *testing.T) {
	requireShell(t)

	start := time.Now()
	res, err := RunTimeout(context.Background(), 100*time.Millisecond, "sleep", "10")
	require.ErrorIs(t, err, ErrTimeout)
	require.NotNil(t, res)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunTimeout_InvalidArguments(t *testing.T) {
	_, err := RunTimeout(context.Background(), 0, "true")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = RunTimeout(context.Background(), time.Second, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRunTimeout_ParentCancelled(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunTimeout(ctx, time.Second, "sleep", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}
