package ingest

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"time"

	"github.com/litetable/litetable-sink/internal/events"
	"github.com/litetable/litetable-sink/internal/journal"
	"github.com/litetable/litetable-sink/internal/protocol"
	"github.com/litetable/litetable-sink/internal/sink"
	"github.com/rs/zerolog/log"
)

// Handle implements the server.handler interface, allowing the engine to
// respond to incoming ingest connections.
func (e *Engine) Handle(conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("error closing connection")
		}
	}()

	buf, err := e.readConn(conn)
	if err != nil {
		log.Error().Err(err).Msg("read error")
		return
	}

	op, payload, decodeErr := protocol.Decode(buf)
	if decodeErr != nil {
		e.reply(conn, []byte("ERROR: "+decodeErr.Error()))
		return
	}

	if op == protocol.Ping {
		e.reply(conn, []byte("PONG"))
		return
	}

	if len(payload) == 0 {
		e.reply(conn, []byte("ERROR: empty payload"))
		return
	}

	// journal the raw operation before processing so an accepted record
	// survives a crash between here and the storage write
	if err = e.journal.Append(&journal.Entry{
		Op:        op,
		Payload:   payload,
		Timestamp: time.Now(),
	}); err != nil {
		log.Error().Err(err).Msg("failed to journal record")
		e.reply(conn, []byte("ERROR: "+err.Error()))
		return
	}

	response, err := e.process(op, payload)
	if err != nil {
		e.reply(conn, []byte("ERROR: "+err.Error()))
		return
	}

	e.reply(conn, response)
}

// process maps one journaled operation to a mutation and ships it. Mapping
// and write failures bury the record in the dead-letter store; either a
// complete mutation reaches storage or none does.
func (e *Engine) process(op int, payload []byte) ([]byte, error) {
	record, err := e.decode(op, payload)
	if err != nil {
		if buryErr := e.deadLetter.Bury("", payload, err); buryErr != nil {
			log.Error().Err(buryErr).Msg("failed to bury undecodable record")
		}
		return nil, err
	}

	m, err := e.builder.Build(record)
	if err != nil {
		if buryErr := e.deadLetter.Bury(record.Destination, payload, err); buryErr != nil {
			log.Error().Err(buryErr).Msg("failed to bury unmappable record")
		}
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.writeTimeout)
	defer cancel()

	if err = e.writer.Write(ctx, m); err != nil {
		if buryErr := e.deadLetter.Bury(record.Destination, payload, err); buryErr != nil {
			log.Error().Err(buryErr).Msg("failed to bury unwritable record")
		}
		return nil, err
	}

	now := time.Now().Unix()
	for _, cell := range m.Cells {
		e.emitter.Emit(&events.Event{
			RowKey:    string(m.RowKey),
			Family:    cell.Family,
			Qualifier: cell.Qualifier,
			Value:     cell.Value,
			Timestamp: now,
		})
	}

	return []byte("OK " + hex.EncodeToString(m.RowKey)), nil
}

func (e *Engine) decode(op int, payload []byte) (*sink.Record, error) {
	switch op {
	case protocol.Put:
		return e.decoder.ParsePut(payload)
	case protocol.Send:
		return e.decoder.ParseEnvelope(payload)
	}

	return nil, fmt.Errorf("unsupported operation %d", op)
}

func (e *Engine) reply(conn net.Conn, response []byte) {
	if _, err := conn.Write(response); err != nil {
		log.Error().Err(err).Msg("error writing response")
	}
}

func (e *Engine) readConn(conn net.Conn) ([]byte, error) {
	buf := make([]byte, e.maxBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
