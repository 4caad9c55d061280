package main

import (
	"context"
	"errors"
	"fmt"

	"scrummaster/internal/config"
	"scrummaster/internal/debug"
	appErrors "scrummaster/internal/errors"
	"scrummaster/internal/httpapi"
	"scrummaster/internal/jira"
	"scrummaster/internal/overlay"
	"scrummaster/internal/reports"
	"scrummaster/internal/standup"
	"scrummaster/internal/suggest"
	"scrummaster/internal/viewsync"
)

// services is everything a command needs, built from the loaded config.
type services struct {
	jira    jira.Client
	suggest suggest.Client
	standup *standup.Service
	reports reports.Client
	groomer *suggest.Groomer
	board   *viewsync.Collection
	backlog *viewsync.Collection
	store   *overlay.Store
}

// Close releases the overlay backend.
func (s *services) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

type servicesOpener func(ctx context.Context) (*services, error)

// openServices wires the HTTP clients, the overlay store and both
// collections over a shared Bus.
func openServices(ctx context.Context) (*services, error) {
	api, err := httpapi.New(httpapi.Config{
		BaseURL: config.GetString(config.KeyServerURL),
		Timeout: config.HTTPTimeout(),
	})
	if err != nil {
		return nil, err
	}

	backend, err := openOverlayBackend(ctx)
	if err != nil {
		return nil, err
	}
	store, err := overlay.Open(ctx, backend)
	if err != nil {
		return nil, errors.Join(err, backend.Close())
	}
	debug.Logf("overlay store opened with local data for %v", store.Keys())
	journal, err := standup.OpenJournal(ctx, store)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	tracker := jira.NewHTTPClient(api)
	suggester := suggest.NewHTTPClient(api)
	bus := viewsync.NewBus()
	return &services{
		jira:    tracker,
		suggest: suggester,
		standup: &standup.Service{Client: standup.NewHTTPClient(api), Journal: journal},
		reports: reports.NewHTTPClient(api),
		groomer: suggest.NewGroomer(suggester, config.GroomConcurrency()),
		board:   viewsync.NewBoard(tracker, store, bus),
		backlog: viewsync.NewBacklog(tracker, store, bus),
		store:   store,
	}, nil
}

func openOverlayBackend(ctx context.Context) (overlay.Backend, error) {
	path, err := config.OverlayPath()
	if err != nil {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "resolve overlay path", err)
	}
	switch backend := config.GetString(config.KeyOverlayBackend); backend {
	case config.OverlayBackendFile:
		return overlay.OpenFile(path)
	case config.OverlayBackendSQLite:
		return overlay.OpenSQLite(ctx, path)
	default:
		return nil, appErrors.New(appErrors.CodeConfigurationError,
			fmt.Sprintf("unknown overlay backend %q", backend), nil)
	}
}
