// Package ingest runs the sink pipeline: decode an incoming operation,
// journal it, build the mutation, write it to LiteTable, and broadcast the
// applied cells. A record that cannot be mapped or written goes to the
// dead-letter store instead of blocking the pipeline.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/litetable/litetable-sink/internal/events"
	"github.com/litetable/litetable-sink/internal/journal"
	"github.com/litetable/litetable-sink/internal/sink"
	"github.com/rs/zerolog/log"
)

//go:generate mockgen -destination=ingest_mock.go -package=ingest -source=ingest.go

type mutationBuilder interface {
	Build(r *sink.Record) (*sink.Mutation, error)
}

type mutationWriter interface {
	Write(ctx context.Context, m *sink.Mutation) error
}

type recordDecoder interface {
	ParsePut(payload []byte) (*sink.Record, error)
	ParseEnvelope(payload []byte) (*sink.Record, error)
}

type recordJournal interface {
	Append(e *journal.Entry) error
	Replay(apply func(e *journal.Entry) error) error
	Truncate() error
}

type deadLetterStore interface {
	Bury(destination string, payload []byte, cause error) error
}

type eventEmitter interface {
	Emit(e *events.Event)
}

// Engine is the ingest pipeline. It holds no per-record state; every Handle
// call maps and ships exactly one record.
type Engine struct {
	builder    mutationBuilder
	writer     mutationWriter
	decoder    recordDecoder
	journal    recordJournal
	deadLetter deadLetterStore
	emitter    eventEmitter

	maxBufferSize int
	writeTimeout  time.Duration
}

type Config struct {
	Builder    mutationBuilder
	Writer     mutationWriter
	Decoder    recordDecoder
	Journal    recordJournal
	DeadLetter deadLetterStore
	Emitter    eventEmitter
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Builder == nil {
		errGrp = append(errGrp, errors.New("mutation builder is required"))
	}
	if c.Writer == nil {
		errGrp = append(errGrp, errors.New("mutation writer is required"))
	}
	if c.Decoder == nil {
		errGrp = append(errGrp, errors.New("record decoder is required"))
	}
	if c.Journal == nil {
		errGrp = append(errGrp, errors.New("journal is required"))
	}
	if c.DeadLetter == nil {
		errGrp = append(errGrp, errors.New("dead letter store is required"))
	}
	if c.Emitter == nil {
		errGrp = append(errGrp, errors.New("event emitter is required"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Engine{
		builder:       cfg.Builder,
		writer:        cfg.Writer,
		decoder:       cfg.Decoder,
		journal:       cfg.Journal,
		deadLetter:    cfg.DeadLetter,
		emitter:       cfg.Emitter,
		maxBufferSize: 4096,
		writeTimeout:  10 * time.Second,
	}, nil
}

// Start replays journaled operations that were accepted before the last
// shutdown, then truncates the journal. Replayed records may already have
// been written once; mutations overwrite deterministically so re-delivery is
// safe.
func (e *Engine) Start() error {
	var replayed int
	err := e.journal.Replay(func(entry *journal.Entry) error {
		if _, procErr := e.process(entry.Op, entry.Payload); procErr != nil {
			// a record that still cannot be processed is already buried by
			// process; keep replaying the rest
			log.Warn().Err(procErr).Msg("journal replay: record not delivered")
		}
		replayed++
		return nil
	})
	if err != nil {
		return err
	}

	if replayed > 0 {
		log.Info().Msgf("replayed %d journaled records", replayed)
	}

	return e.journal.Truncate()
}

func (e *Engine) Stop() error {
	return nil
}

func (e *Engine) Name() string {
	return "Ingest Engine"
}
