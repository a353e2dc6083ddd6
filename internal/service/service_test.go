package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/ingestor/internal/config"
	"github.com/KaramelBytes/ingestor/internal/filetype"
	"github.com/KaramelBytes/ingestor/internal/gatherer"
)

type fakeGatherer struct {
	mu    sync.Mutex
	calls int
	errs  []error
}

func (f *fakeGatherer) Gather(_ context.Context, root string) (gatherer.Manifest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return gatherer.Manifest{
		root: {{Name: "a.pdf", ContentHash: "00", DocumentType: filetype.PDF}},
	}, nil
}

func testConfig(t *testing.T) *config.Global {
	t.Helper()
	c := &config.Global{}
	c.Logging.LogLevel = "INFO"
	c.General.ImportDirectory = t.TempDir()
	c.General.ScanInterval = 10 * time.Millisecond
	c.General.LockFile = filepath.Join(t.TempDir(), "ingestor.lock")
	return c
}

func collect(s *Service, n int) chan []string {
	out := make(chan []string, 1)
	var (
		mu  sync.Mutex
		ids []string
	)
	s.OnManifest = func(runID string, _ gatherer.Manifest) {
		mu.Lock()
		defer mu.Unlock()
		ids = append(ids, runID)
		if len(ids) == n {
			out <- append([]string(nil), ids...)
		}
	}
	return out
}

func waitFor[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting")
	}
	var zero T
	return zero
}

func TestRunGathersRepeatedlyUntilStopped(t *testing.T) {
	fg := &fakeGatherer{}
	s := New(testConfig(t), fg, nil)
	passes := collect(s, 3)

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(context.Background()) }()

	ids := waitFor(t, passes)
	assert.Len(t, ids, 3)
	assert.NotEqual(t, ids[0], ids[1], "each pass gets its own run id")

	s.Stop()
	require.NoError(t, waitFor(t, runErr))
	s.Stop() // idempotent
}

func TestRunContinuesAfterFailedPass(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fg := &fakeGatherer{errs: []error{&gatherer.RootAccessError{Root: "/gone", Err: os.ErrNotExist}}}
	s := New(testConfig(t), fg, zap.New(core))
	passes := collect(s, 1)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx) }()

	waitFor(t, passes)
	cancel()
	require.NoError(t, waitFor(t, runErr))

	failed := logs.FilterMessage("Gather pass failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	assert.Equal(t, 1, logs.FilterMessage("Exiting Application process...").Len())
}

func TestRunRefusesSecondInstance(t *testing.T) {
	cfg := testConfig(t)
	held := flock.New(cfg.General.LockFile)
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	s := New(cfg, &fakeGatherer{}, nil)
	err = s.Run(context.Background())
	assert.True(t, errors.Is(err, ErrAlreadyRunning))
	s.Stop()
}

func TestRunTwiceIsRejected(t *testing.T) {
	s := New(testConfig(t), &fakeGatherer{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))
	assert.ErrorIs(t, s.Run(ctx), ErrStarted)
}

func TestStopWithoutRunReturns(t *testing.T) {
	s := New(testConfig(t), &fakeGatherer{}, nil)
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	waitFor(t, done)
}

func TestInitialiseLogsConfiguration(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := testConfig(t)
	s := New(cfg, &fakeGatherer{}, zap.New(core))
	s.Initialise()

	var lines []string
	for _, e := range logs.All() {
		lines = append(lines, e.Message)
	}
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "Ingestor Service V")
	assert.Contains(t, joined, "|=> Log level: INFO")
	assert.Contains(t, joined, "|=> Import directory root : "+cfg.General.ImportDirectory)
}

func TestRunWithRealGatherer(t *testing.T) {
	cfg := testConfig(t)
	sub := filepath.Join(cfg.General.ImportDirectory, "cv")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "jane.txt"), []byte("Jane Doe\nEngineer\n"), 0o644))

	s := New(cfg, gatherer.New(nil), nil)
	got := make(chan gatherer.Manifest, 1)
	s.OnManifest = func(_ string, m gatherer.Manifest) {
		select {
		case got <- m:
		default:
		}
	}

	go func() { _ = s.Run(context.Background()) }()
	m := waitFor(t, got)
	s.Stop()

	require.Len(t, m[sub], 1)
	assert.Equal(t, "jane.txt", m[sub][0].Name)
	assert.Equal(t, filetype.Text, m[sub][0].DocumentType)
}

func TestLockPath(t *testing.T) {
	p, err := LockPath("/run/custom.lock", "/srv/import")
	require.NoError(t, err)
	assert.Equal(t, "/run/custom.lock", p)

	a, err := LockPath("", "/srv/import")
	require.NoError(t, err)
	again, err := LockPath("", "/srv/import/")
	require.NoError(t, err)
	b, err := LockPath("", "/srv/other")
	require.NoError(t, err)

	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)
	assert.Equal(t, os.TempDir(), filepath.Dir(a))
	assert.True(t, strings.HasPrefix(filepath.Base(a), "ingestor-"))
}
