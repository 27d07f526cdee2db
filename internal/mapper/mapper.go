// Package mapper turns one ingested record into exactly one storage mutation:
// a composite row key plus a cell write per routed field.
package mapper

import (
	"bytes"
	"errors"

	"github.com/litetable/litetable-sink/internal/sink"
)

//go:generate mockgen -destination=mapper_mock.go -package=mapper -source=mapper.go

type layoutResolver interface {
	Resolve(destination string) (*sink.FamilyLayout, error)
}

type eventParser interface {
	ParseKey(r *sink.Record) (map[string][]byte, error)
	ParseValue(r *sink.Record) (map[string][]byte, error)
}

// Builder maps records to mutations. It is stateless per call; the only
// shared state is the resolver's immutable layout cache, so independent
// goroutines can build mutations concurrently.
type Builder struct {
	resolver layoutResolver
	parser   eventParser
}

type Config struct {
	Resolver layoutResolver
	Parser   eventParser
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Resolver == nil {
		errGrp = append(errGrp, errors.New("layout resolver is required"))
	}
	if c.Parser == nil {
		errGrp = append(errGrp, errors.New("event parser is required"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Builder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Builder{
		resolver: cfg.Resolver,
		parser:   cfg.Parser,
	}, nil
}

// Build produces the single mutation for a record, or no mutation at all when
// any step fails. Key and value payloads are merged with value fields winning
// a name collision, matching the precedence downstream consumers rely on.
func (b *Builder) Build(r *sink.Record) (*sink.Mutation, error) {
	if r == nil {
		return nil, sink.NewError(sink.ErrInvalidRecord, "record is nil")
	}

	layout, err := b.resolver.Resolve(r.Destination)
	if err != nil {
		return nil, err
	}

	keys, err := b.parser.ParseKey(r)
	if err != nil {
		return nil, err
	}
	values, err := b.parser.ParseValue(r)
	if err != nil {
		return nil, err
	}

	merged := make(map[string][]byte, len(keys)+len(values))
	for name, v := range keys {
		merged[name] = v
	}
	for name, v := range values {
		merged[name] = v
	}

	rowKey, err := composeRowKey(merged, layout, r.Destination)
	if err != nil {
		return nil, err
	}

	cells, err := routeCells(merged, layout, r.Destination)
	if err != nil {
		return nil, err
	}

	return &sink.Mutation{
		RowKey: rowKey,
		Cells:  cells,
	}, nil
}

// composeRowKey joins the encoded values of the configured rowkey columns, in
// configured order, with the delimiter bytes between them. A single-column
// key is the field's raw encoded bytes with no delimiter.
func composeRowKey(merged map[string][]byte, layout *sink.FamilyLayout, destination string) ([]byte, error) {
	parts := make([][]byte, 0, len(layout.RowKeyColumns))
	for _, column := range layout.RowKeyColumns {
		value, ok := merged[column]
		if !ok {
			return nil, sink.NewError(sink.ErrMissingField,
				"rowkey column %q not present in record for destination %q", column, destination)
		}
		parts = append(parts, value)
	}

	return bytes.Join(parts, []byte(layout.Delimiter)), nil
}

// routeCells assigns every field to a (family, qualifier) cell. With a single
// family every merged field becomes a cell in it. With multiple families each
// family's configured column list is routed in order; a configured column the
// record does not carry is an error, while fields no family lists are
// silently excluded.
func routeCells(merged map[string][]byte, layout *sink.FamilyLayout, destination string) ([]sink.Cell, error) {
	if !layout.MultiFamily() {
		family := layout.Families[0]
		cells := make([]sink.Cell, 0, len(merged))
		for qualifier, value := range merged {
			cells = append(cells, sink.Cell{
				Family:    family,
				Qualifier: qualifier,
				Value:     value,
			})
		}
		return cells, nil
	}

	var cells []sink.Cell
	for _, family := range layout.Families {
		for _, column := range layout.ColumnsByFamily[family] {
			value, ok := merged[column]
			if !ok {
				return nil, sink.NewError(sink.ErrColumnRouting,
					"column %q configured for family %q not present in record for destination %q",
					column, family, destination)
			}
			cells = append(cells, sink.Cell{
				Family:    family,
				Qualifier: column,
				Value:     value,
			})
		}
	}

	return cells, nil
}
