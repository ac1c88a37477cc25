// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Construction of the shared chat components from configuration.

package cli

import (
	"fmt"

	"github.com/jeranaias/pppw/internal/api"
	"github.com/jeranaias/pppw/internal/config"
	"github.com/jeranaias/pppw/internal/pipeline"
	"github.com/jeranaias/pppw/internal/recorder"
	"github.com/jeranaias/pppw/internal/session"
	"github.com/jeranaias/pppw/internal/storage"
)

// Env is one open chat: store, recorder, API client and the controller
// that ties them together. Every front end builds one with OpenEnv and
// releases it with Close.
type Env struct {
	Config     *config.Config
	Backend    storage.Backend
	Store      *session.Store
	Recorder   *recorder.Recorder
	Client     *api.Client
	Controller *pipeline.Controller
}

// EnvOption customizes OpenEnv.
type EnvOption func(*envOptions)

type envOptions struct {
	device recorder.Device
}

// WithDevice replaces the ffmpeg capture device.
func WithDevice(d recorder.Device) EnvOption {
	return func(o *envOptions) { o.device = d }
}

// OpenEnv opens the configured storage backend and wires the chat
// components on top of it.
func OpenEnv(cfg *config.Config, opts ...EnvOption) (*Env, error) {
	var o envOptions
	for _, opt := range opts {
		opt(&o)
	}

	backend, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	store := session.Open(backend, cfg.Storage.Key)

	if o.device == nil {
		o.device = recorder.NewFFmpegDevice(recorder.FFmpegConfig{
			Path:        cfg.Recorder.FFmpegPath,
			InputFormat: cfg.Recorder.InputFormat,
			InputDevice: cfg.Recorder.InputDevice,
		})
	}
	rec := recorder.New(o.device, recorder.WithCandidates(cfg.Recorder.MimeCandidates))

	client := api.NewClient(cfg.API.BaseURL).WithUserAgent("pppw/" + Version)

	return &Env{
		Config:     cfg,
		Backend:    backend,
		Store:      store,
		Recorder:   rec,
		Client:     client,
		Controller: pipeline.NewController(store, rec, client),
	}, nil
}

// Close releases the recorder and flushes and closes the store.
func (e *Env) Close() error {
	return e.Controller.Close()
}
