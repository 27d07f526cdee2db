package main

import (
	"context"
	"crypto/tls"
	"path/filepath"
	"time"

	"github.com/litetable/litetable-sink/internal/app"
	"github.com/litetable/litetable-sink/internal/config"
	"github.com/litetable/litetable-sink/internal/deadletter"
	"github.com/litetable/litetable-sink/internal/events"
	"github.com/litetable/litetable-sink/internal/ingest"
	"github.com/litetable/litetable-sink/internal/journal"
	"github.com/litetable/litetable-sink/internal/mapper"
	"github.com/litetable/litetable-sink/internal/parser"
	"github.com/litetable/litetable-sink/internal/routing"
	"github.com/litetable/litetable-sink/internal/server"
	"github.com/litetable/litetable-sink/internal/sink"
	"github.com/litetable/litetable-sink/internal/writer"
	"github.com/rs/zerolog"
)

const (
	defaultServerCert = "server.crt"
	defaultServerKey  = "server.key"
)

func main() {
	application, err := initialize()
	if err != nil {
		panic(err)
	}

	if err = application.Run(context.Background()); err != nil {
		panic(err)
	}
}

func initialize() (*app.App, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	sinkDir, err := sink.GetSinkDir()
	if err != nil {
		return nil, err
	}

	props, err := config.LoadProperties()
	if err != nil {
		return nil, err
	}

	resolver, err := routing.New(&routing.Config{
		Properties: props,
	})
	if err != nil {
		return nil, err
	}

	eventParser := parser.New()

	builder, err := mapper.New(&mapper.Config{
		Resolver: resolver,
		Parser:   eventParser,
	})
	if err != nil {
		return nil, err
	}

	journalManager, err := journal.New(&journal.Config{
		Path: sinkDir,
	})
	if err != nil {
		return nil, err
	}

	var deps []app.Dependency

	deadLetter, err := deadletter.New(&deadletter.Config{
		Path:          sinkDir,
		Retention:     time.Duration(cfg.DeadLetterRetention) * time.Minute,
		SweepInterval: time.Duration(cfg.DeadLetterSweep) * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, deadLetter)

	ltWriter, err := writer.New(&writer.Config{
		Address: cfg.LiteTableAddress,
		Port:    cfg.LiteTablePort,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, ltWriter)

	eventStream, err := events.New(&events.Config{
		Address: cfg.EventsAddress,
		Port:    cfg.EventsPort,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, eventStream)

	engine, err := ingest.New(&ingest.Config{
		Builder:    builder,
		Writer:     ltWriter,
		Decoder:    eventParser,
		Journal:    journalManager,
		DeadLetter: deadLetter,
		Emitter:    eventStream,
	})
	if err != nil {
		return nil, err
	}
	deps = append(deps, engine)

	serverCfg := &server.Config{
		Port:      cfg.ServerPort,
		Handler:   engine,
		EnableTLS: cfg.EnableTLS,
	}
	if cfg.EnableTLS {
		cert, err := tls.LoadX509KeyPair(
			filepath.Join(sinkDir, defaultServerCert),
			filepath.Join(sinkDir, defaultServerKey),
		)
		if err != nil {
			return nil, err
		}
		serverCfg.Certificate = &cert
	}

	srv, err := server.New(serverCfg)
	if err != nil {
		return nil, err
	}
	deps = append(deps, srv)

	application, err := app.CreateApp(&app.Config{
		ServiceName: "LiteTable Sink",
		StopTimeout: 5 * time.Second,
	}, deps...)
	if err != nil {
		return nil, err
	}

	return application, nil
}
