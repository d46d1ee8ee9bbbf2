// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package reconciler periodically removes expired token records together
// with the session credentials they own, and short-lived template mappings.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stacklok/wopibroker/pkg/credentials"
	"github.com/stacklok/wopibroker/pkg/logger"
	"github.com/stacklok/wopibroker/pkg/metrics"
	"github.com/stacklok/wopibroker/pkg/storage"
)

const (
	// DefaultInterval is the time between two passes.
	DefaultInterval = 600 * time.Second

	// DefaultBatchSize bounds the number of token records removed per pass.
	DefaultBatchSize = 1000

	// TemplateGrace is how long a template mapping survives.
	TemplateGrace = 60 * time.Second
)

// ErrAlreadyRunning is returned by RunOnce while another pass is in flight.
var ErrAlreadyRunning = errors.New("reconcile pass already running")

// Store is the persistence the reconciler sweeps.
type Store interface {
	storage.TokenStore
	storage.TemplateStore
}

// Result summarizes one pass.
type Result struct {
	TemplatesDeleted       int `json:"templatesDeleted"`
	TokensDeleted          int `json:"tokensDeleted"`
	CredentialsInvalidated int `json:"credentialsInvalidated"`
	CredentialFailures     int `json:"credentialFailures"`
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// Reconciler sweeps expired state on a fixed interval. Passes never overlap.
type Reconciler struct {
	store     Store
	creds     credentials.Provider
	interval  time.Duration
	batchSize int
	now       func() time.Time

	running sync.Mutex

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a Reconciler.
func New(store Store, creds credentials.Provider, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:     store,
		creds:     creds,
		interval:  DefaultInterval,
		batchSize: DefaultBatchSize,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start runs passes in the background until ctx is cancelled or Stop is
// called. Calling Start twice is a no-op.
func (r *Reconciler) Start(ctx context.Context) {
	if r.started.Swap(true) {
		return
	}
	go r.loop(ctx)
}

// Stop ends the background loop and waits for an in-flight pass.
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	if r.started.Load() {
		<-r.doneCh
	}
}

func (r *Reconciler) loop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	logger.Infow("reconciler started", "interval", r.interval.String(), "batch_size", r.batchSize)
	for {
		select {
		case <-ticker.C:
			res, err := r.RunOnce(ctx)
			switch {
			case errors.Is(err, ErrAlreadyRunning):
				logger.Debugw("skipping reconcile tick, previous pass still running")
			case err != nil:
				logger.Errorw("reconcile pass failed", "error", err)
			default:
				logger.Debugw("reconcile pass finished",
					"tokens", res.TokensDeleted, "templates", res.TemplatesDeleted,
					"credentials", res.CredentialsInvalidated, "credential_failures", res.CredentialFailures)
			}
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		}
	}
}

// RunOnce performs a single pass: it drops template mappings past their
// grace window, deletes up to one batch of expired token records and
// revokes every credential each of them owned. A failing credential does
// not stop the batch.
func (r *Reconciler) RunOnce(ctx context.Context) (Result, error) {
	if !r.running.TryLock() {
		metrics.ReconcileRuns.WithLabelValues("skipped").Inc()
		return Result{}, ErrAlreadyRunning
	}
	defer r.running.Unlock()

	var (
		res  Result
		errs []error
	)

	n, err := r.store.DeleteTemplateMappingsBefore(ctx, r.now().Add(-TemplateGrace))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to delete template mappings: %w", err))
	}
	res.TemplatesDeleted = n
	metrics.ReconcileDeleted.WithLabelValues("template").Add(float64(n))

	if err := r.sweepTokens(ctx, &res); err != nil {
		errs = append(errs, err)
	}

	err = errors.Join(errs...)
	if err != nil {
		metrics.ReconcileRuns.WithLabelValues("error").Inc()
	} else {
		metrics.ReconcileRuns.WithLabelValues("success").Inc()
	}
	return res, err
}

func (r *Reconciler) sweepTokens(ctx context.Context, res *Result) error {
	ids, err := r.store.GetExpired(ctx, r.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list expired tokens: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	deleted, err := r.store.DeleteByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	res.TokensDeleted = deleted
	metrics.ReconcileDeleted.WithLabelValues("token").Add(float64(deleted))

	for _, id := range ids {
		r.invalidateOwnedBy(ctx, id, res)
	}
	return nil
}

func (r *Reconciler) invalidateOwnedBy(ctx context.Context, owner string, res *Result) {
	creds, err := r.creds.ListByOwner(ctx, owner)
	if err != nil {
		logger.Warnw("failed to list credentials of expired token", "error", err)
		res.CredentialFailures++
		metrics.ReconcileFailures.Inc()
		return
	}

	for _, cred := range creds {
		if err := r.creds.Invalidate(ctx, owner, cred.ID); err != nil {
			logger.Warnw("failed to invalidate credential of expired token", "credential_id", cred.ID, "error", err)
			res.CredentialFailures++
			metrics.ReconcileFailures.Inc()
			continue
		}
		res.CredentialsInvalidated++
		metrics.ReconcileDeleted.WithLabelValues("credential").Inc()
	}
}
