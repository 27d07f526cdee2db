// Package parser walks a record's structured payloads and produces the
// encoded field maps the mutation builder consumes.
package parser

import (
	"github.com/litetable/litetable-sink/internal/codec"
	"github.com/litetable/litetable-sink/internal/sink"
)

// Parser encodes the key and value payloads of a record, field by field,
// through the scalar codec. It is stateless and safe for concurrent use.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// ParseValue encodes every field of the record's value payload. A nil value
// payload yields an empty map so key-less and value-less records still
// process successfully.
func (p *Parser) ParseValue(r *sink.Record) (map[string][]byte, error) {
	if r == nil {
		return nil, sink.NewError(sink.ErrInvalidRecord, "record is nil")
	}
	return p.parseFields(r.Value)
}

// ParseKey encodes every field of the record's key payload. A nil key payload
// yields an empty map.
func (p *Parser) ParseKey(r *sink.Record) (map[string][]byte, error) {
	if r == nil {
		return nil, sink.NewError(sink.ErrInvalidRecord, "record is nil")
	}
	return p.parseFields(r.Key)
}

func (p *Parser) parseFields(fields sink.Fields) (map[string][]byte, error) {
	encoded := make(map[string][]byte, len(fields))
	for name, value := range fields {
		b, err := codec.Encode(value)
		if err != nil {
			return nil, err
		}
		encoded[name] = b
	}

	return encoded, nil
}
