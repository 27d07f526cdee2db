package parser

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/litetable/litetable-sink/internal/sink"
)

// envelope is the wire shape of a full record: SEND {"destination": "table",
// "key": {...}, "value": {...}}. Key and value objects are both optional.
type envelope struct {
	Destination string          `json:"destination"`
	Key         json.RawMessage `json:"key"`
	Value       json.RawMessage `json:"value"`
}

// ParseEnvelope decodes a full record envelope from the ingest transport.
func (p *Parser) ParseEnvelope(payload []byte) (*sink.Record, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, sink.NewError(sink.ErrInvalidRecord, "malformed envelope: %v", err)
	}
	if env.Destination == "" {
		return nil, sink.NewError(sink.ErrInvalidRecord, "envelope has no destination")
	}

	key, err := p.parseObject(env.Key)
	if err != nil {
		return nil, err
	}
	value, err := p.parseObject(env.Value)
	if err != nil {
		return nil, err
	}

	return &sink.Record{
		Destination: env.Destination,
		Key:         key,
		Value:       value,
	}, nil
}

// ParsePut decodes the short ingest form: PUT <destination> <json object>.
// The object supplies value fields only; the record carries no key payload.
func (p *Parser) ParsePut(payload []byte) (*sink.Record, error) {
	trimmed := bytes.TrimSpace(payload)
	idx := bytes.IndexByte(trimmed, ' ')
	if idx <= 0 {
		return nil, sink.NewError(sink.ErrInvalidRecord, "expected '<destination> <json>'")
	}

	dest := string(trimmed[:idx])
	value, err := p.parseObject(bytes.TrimSpace(trimmed[idx+1:]))
	if err != nil {
		return nil, err
	}

	return &sink.Record{
		Destination: dest,
		Value:       value,
	}, nil
}

// parseObject converts a JSON object into scalar fields. Whole numbers map to
// int64 and fractional numbers to float64; null fields are skipped; nested
// objects are flattened with a dotted field name.
func (p *Parser) parseObject(raw json.RawMessage) (sink.Fields, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, sink.NewError(sink.ErrInvalidRecord, "malformed payload: %v", err)
	}

	fields := make(sink.Fields, len(obj))
	if err := flatten("", obj, fields); err != nil {
		return nil, err
	}

	return fields, nil
}

func flatten(prefix string, obj map[string]interface{}, into sink.Fields) error {
	for name, raw := range obj {
		if prefix != "" {
			name = prefix + "." + name
		}

		switch v := raw.(type) {
		case nil:
			continue
		case string:
			into[name] = sink.String(v)
		case bool:
			into[name] = sink.Bool(v)
		case json.Number:
			into[name] = numberScalar(v)
		case map[string]interface{}:
			if err := flatten(name, v, into); err != nil {
				return err
			}
		default:
			return sink.NewError(sink.ErrInvalidRecord, "field %q has unsupported type %T", name, raw)
		}
	}

	return nil
}

func numberScalar(n json.Number) sink.Scalar {
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return sink.Int64(i)
		}
	}

	f, err := n.Float64()
	if err != nil {
		// json.Number always parses as float64 within range; out-of-range
		// values degrade to their textual form.
		return sink.String(n.String())
	}
	return sink.Float64(f)
}
