package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDependency struct {
	name     string
	startErr error
	stopErr  error

	mu      sync.Mutex
	started bool
	stopped bool
}

func (d *fakeDependency) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = true
	return d.startErr
}

func (d *fakeDependency) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	return d.stopErr
}

func (d *fakeDependency) Name() string {
	return d.name
}

func (d *fakeDependency) wasStopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

func TestCreateApp(t *testing.T) {
	tests := map[string]struct {
		cfg     *Config
		wantErr string
	}{
		"missing service name": {
			cfg:     &Config{StopTimeout: time.Second},
			wantErr: "service name is required",
		},
		"missing stop timeout": {
			cfg:     &Config{ServiceName: "LiteTable Sink"},
			wantErr: "stop timeout is required",
		},
		"valid config": {
			cfg: &Config{ServiceName: "LiteTable Sink", StopTimeout: time.Second},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := CreateApp(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
		})
	}
}

func TestApp_Run_contextCancel(t *testing.T) {
	req := require.New(t)

	first := &fakeDependency{name: "first"}
	second := &fakeDependency{name: "second"}

	a, err := CreateApp(&Config{
		ServiceName: "LiteTable Sink",
		StopTimeout: time.Second,
	}, first, second)
	req.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	req.True(first.wasStopped())
	req.True(second.wasStopped())
}

func TestApp_Run_dependencyFailure(t *testing.T) {
	req := require.New(t)

	healthy := &fakeDependency{name: "healthy"}
	broken := &fakeDependency{name: "broken", startErr: errors.New("bind failed")}

	a, err := CreateApp(&Config{
		ServiceName: "LiteTable Sink",
		StopTimeout: time.Second,
	}, healthy, broken)
	req.NoError(err)

	done := make(chan error, 1)
	go func() {
		done <- a.Run(context.Background())
	}()

	// A failed Start tears the whole app down.
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after dependency failure")
	}

	req.True(healthy.wasStopped())
}

func TestApp_Run_secondCallRefused(t *testing.T) {
	a, err := CreateApp(&Config{
		ServiceName: "LiteTable Sink",
		StopTimeout: time.Second,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.Run(ctx))

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "run has already been called", err.Error())
}
