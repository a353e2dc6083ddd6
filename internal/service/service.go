// Package service runs the gatherer on a fixed interval until stopped.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/ingestor/internal/config"
	"github.com/KaramelBytes/ingestor/internal/gatherer"
	"github.com/KaramelBytes/ingestor/internal/version"
)

// ErrAlreadyRunning is returned by Run when another process holds the
// instance lock for the same import root.
var ErrAlreadyRunning = errors.New("another ingestor is already scanning this import directory")

// ErrStarted is returned when Run is called a second time.
var ErrStarted = errors.New("service already started")

// Gatherer produces one manifest per call.
type Gatherer interface {
	Gather(ctx context.Context, root string) (gatherer.Manifest, error)
}

// Service is the long-running ingestor process.
type Service struct {
	cfg      *config.Global
	gatherer Gatherer
	logger   *zap.Logger

	// OnManifest, when set, receives every successful pass's manifest.
	OnManifest func(runID string, m gatherer.Manifest)

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

// New wires a service. The configuration must already be validated.
func New(cfg *config.Global, g Gatherer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		gatherer: g,
		logger:   logger.Named("service"),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Initialise logs the startup banner and the effective configuration.
func (s *Service) Initialise() {
	s.logger.Info("Staff Recruitment System Ingestor Service " + version.String())
	s.logger.Info("Licensed under the Apache License, Version 2.0")
	s.logger.Info("-------------------------------------")
	s.logger.Info("Configuration items")
	s.logger.Info("= Logger items =")
	s.logger.Info("|=> Log level: " + s.cfg.Logging.LogLevel)
	s.logger.Info("= General items =")
	s.logger.Info("|=> Import directory root : " + s.cfg.General.ImportDirectory)
	s.logger.Info("|=> Scan interval : " + s.cfg.General.ScanInterval.String())
	s.logger.Info("-------------------------------------")
}

// Run gathers immediately and then once per scan interval until ctx is
// done or Stop is called. A failed pass is logged and retried on the next
// tick. Run returns ErrAlreadyRunning if the instance lock is taken.
func (s *Service) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	defer close(s.done)

	lockPath, err := LockPath(s.cfg.General.LockFile, s.cfg.General.ImportDirectory)
	if err != nil {
		return err
	}
	lock := newInstanceLock(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("Failed to release instance lock", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Exiting Application process...")
			return nil
		case <-timer.C:
			s.pass(ctx)
			timer.Reset(s.cfg.General.ScanInterval)
		}
	}
}

func (s *Service) pass(ctx context.Context) {
	runID := uuid.NewString()
	start := time.Now()
	m, err := s.gatherer.Gather(ctx, s.cfg.General.ImportDirectory)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("Gather pass failed", zap.String("run_id", runID), zap.Error(err))
		return
	}
	s.logger.Info("Gather pass complete",
		zap.String("run_id", runID),
		zap.Int("directories", len(m)),
		zap.Int("files", m.Len()),
		zap.Duration("took", time.Since(start)))
	if s.OnManifest != nil {
		s.OnManifest(runID, m)
	}
}

// Stop asks Run to finish and waits for it. It is safe to call more than
// once, and before or without Run.
func (s *Service) Stop() {
	s.logger.Info("Stopping Application process...")
	s.stopOnce.Do(func() { close(s.stopCh) })
	if s.started.Load() {
		<-s.done
	}
	s.logger.Info("Application process shutdown has completed")
}
