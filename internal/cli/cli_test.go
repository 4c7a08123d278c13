package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/riserite/internal/app"
	"example.com/riserite/internal/config"
)

// sharedBuild keeps one memory store across command invocations.
func sharedBuild(t *testing.T) func(context.Context, config.Config) (*app.Components, error) {
	t.Helper()
	var components *app.Components
	return func(ctx context.Context, cfg config.Config) (*app.Components, error) {
		if components != nil {
			return components, nil
		}
		var err error
		components, err = app.Build(ctx, cfg)
		return components, err
	}
}

func run(t *testing.T, opts *rootOptions, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(opts)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--backend", "memory"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVerifyOnMemoryBackend(t *testing.T) {
	out, err := run(t, &rootOptions{build: app.Build}, "verify")
	require.NoError(t, err, out)
	require.Contains(t, out, "Backend: memory")
	require.Contains(t, out, "Partition key: userId")
	require.Contains(t, out, "Probe write: ok")
	require.Contains(t, out, "Probe read: ok")
	require.Contains(t, out, "Probe delete: ok")
	require.Contains(t, out, "All checks passed.")
}

func TestRecordThenStreakAndHistory(t *testing.T) {
	t.Setenv("STREAK_TIMEZONE", "UTC")
	opts := &rootOptions{build: sharedBuild(t)}
	today := time.Now().UTC().Format("2006-01-02")

	out, err := run(t, opts, "record", "--user", "cli-user", "--date", today, "--pushups", "15", "--completed")
	require.NoError(t, err, out)
	require.Contains(t, out, "Recorded session for cli-user on "+today)

	out, err = run(t, opts, "streak", "cli-user")
	require.NoError(t, err, out)
	require.Contains(t, out, "Streak: 1")
	require.Contains(t, out, "Last session: "+today)

	out, err = run(t, opts, "history", "cli-user", "--limit", "5")
	require.NoError(t, err, out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `"pushupCount":15`)
	require.Contains(t, lines[0], `"wakeCompleted":1`)
}

func TestRecordRequiresUser(t *testing.T) {
	_, err := run(t, &rootOptions{build: app.Build}, "record", "--pushups", "3")
	require.Error(t, err)
}

func TestCreateTableOnMemoryBackend(t *testing.T) {
	out, err := run(t, &rootOptions{build: app.Build}, "create-table")
	require.NoError(t, err)
	require.Contains(t, out, "memory backend needs no table")
}

func TestUnknownBackendIsRejected(t *testing.T) {
	cmd := newRootCommand(&rootOptions{build: app.Build})
	cmd.SetArgs([]string{"--backend", "cassandra", "verify"})
	cmd.SetOut(&bytes.Buffer{})
	require.ErrorContains(t, cmd.Execute(), "unsupported store backend")
}
