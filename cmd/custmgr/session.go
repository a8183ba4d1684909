package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contactdesk/backend/internal/application/manager"
	"github.com/contactdesk/backend/internal/infrastructure/cache"
	"github.com/contactdesk/backend/internal/infrastructure/config"
	"github.com/contactdesk/backend/internal/infrastructure/customerapi"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// defaultLoadTimeout bounds how long list waits for the collection
const defaultLoadTimeout = 15 * time.Second

// session is a mounted view and the storages behind it
type session struct {
	view    *manager.View
	durable cache.Storage
	local   cache.Storage
}

func openSession(ctx context.Context, cfg *config.Config, log *zap.Logger, reg prometheus.Registerer) (*session, error) {
	client, err := customerapi.NewClient(cfg.CustomerAPI.Endpoint,
		customerapi.WithTimeout(cfg.CustomerAPI.Timeout),
		customerapi.WithUserAgent(cfg.CustomerAPI.UserAgent),
	)
	if err != nil {
		return nil, err
	}

	factory := cache.NewStorageFactory(cfg.Redis, cfg.Manager, cache.WithLogger(log))
	durable, err := factory.CreateDurable(ctx)
	if err != nil {
		return nil, err
	}
	local := factory.CreateSession()

	m := cfg.Manager
	view := manager.New(client, durable, local,
		manager.WithLogger(log),
		manager.WithMetrics(manager.NewMetrics(reg)),
		manager.WithTimings(manager.Timings{
			CacheCopyDelay:     m.CacheCopyDelay,
			DraftInterval:      m.DraftInterval,
			MessageTTL:         m.MessageTTL,
			SearchDebounce:     m.SearchDebounce,
			StaleCheckInterval: m.StaleCheckInterval,
			SupersedeTimers:    m.SupersedeTimers,
		}),
	)
	log.Debug("Customer manager mounted", zap.String("endpoint", client.Endpoint()))
	return &session{view: view, durable: durable, local: local}, nil
}

// Close unmounts the view before releasing the storages it writes to
func (s *session) Close() error {
	return errors.Join(s.view.Close(), s.durable.Close(), s.local.Close())
}

// waitLoaded blocks until the initial server load has finished, one way or
// the other, and returns the state at that point
func waitLoaded(ctx context.Context, view *manager.View, timeout time.Duration) (manager.Snapshot, error) {
	changes, unsubscribe := view.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sawLoading := false
	for {
		snap := view.Snapshot()
		if snap.Loading {
			sawLoading = true
		} else if sawLoading || len(snap.Primary) > 0 || snap.ErrorMessage != "" {
			return snap, nil
		}

		select {
		case <-ctx.Done():
			return view.Snapshot(), fmt.Errorf("customers did not load within %s", timeout)
		case _, ok := <-changes:
			if !ok {
				return view.Snapshot(), errors.New("customer manager closed")
			}
		}
	}
}
