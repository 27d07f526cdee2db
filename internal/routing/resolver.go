// Package routing resolves the per-destination column-family layout: which
// fields compose the row key, which delimiter joins them, and which families
// receive which columns.
package routing

import (
	"fmt"
	"strings"
	"sync"

	"github.com/litetable/litetable-sink/internal/sink"
)

//go:generate mockgen -destination=resolver_mock.go -package=routing -source=resolver.go

// properties is the read surface of the destination configuration store.
type properties interface {
	Get(key string) (string, bool)
}

const (
	rowkeyColumnsTemplate   = "%s.rowkey.columns"
	rowkeyDelimiterTemplate = "%s.rowkey.delimiter"
	columnFamilyTemplate    = "%s.column.family"
	familyColumnsTemplate   = "%s.column.family.%s.columns"

	// DefaultDelimiter joins encoded rowkey column values when no delimiter
	// is configured for a destination.
	DefaultDelimiter = "|"
	// DefaultFamily receives every record field when no family is configured.
	DefaultFamily = "default"
)

// Resolver answers layout questions per destination. Resolved layouts are
// immutable and cached; population is guarded so concurrent first access for
// the same destination yields a single layout instance.
type Resolver struct {
	props properties

	mu      sync.RWMutex
	layouts map[string]*sink.FamilyLayout
}

type Config struct {
	Properties properties
}

func (c *Config) validate() error {
	if c.Properties == nil {
		return fmt.Errorf("properties store is required")
	}
	return nil
}

func New(cfg *Config) (*Resolver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Resolver{
		props:   cfg.Properties,
		layouts: make(map[string]*sink.FamilyLayout),
	}, nil
}

// Resolve returns the family layout for a destination, reading it from the
// properties store on first access and from the cache afterward. Resolution
// failures are not cached, so a corrected configuration is picked up on the
// next call.
func (r *Resolver) Resolve(destination string) (*sink.FamilyLayout, error) {
	r.mu.RLock()
	layout, ok := r.layouts[destination]
	r.mu.RUnlock()
	if ok {
		return layout, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another caller may have populated the entry while we waited
	if layout, ok = r.layouts[destination]; ok {
		return layout, nil
	}

	layout, err := r.resolve(destination)
	if err != nil {
		return nil, err
	}
	r.layouts[destination] = layout

	return layout, nil
}

// Invalidate drops the cached layout for a destination. The host calls this
// when the configuration store changes.
func (r *Resolver) Invalidate(destination string) {
	r.mu.Lock()
	delete(r.layouts, destination)
	r.mu.Unlock()
}

func (r *Resolver) resolve(destination string) (*sink.FamilyLayout, error) {
	columns, ok := r.props.Get(fmt.Sprintf(rowkeyColumnsTemplate, destination))
	rowkeyColumns := splitList(columns)
	if !ok || len(rowkeyColumns) == 0 {
		return nil, sink.NewError(sink.ErrConfigMissing,
			"no rowkey columns configured for destination %q", destination)
	}

	delimiter := DefaultDelimiter
	if d, ok := r.props.Get(fmt.Sprintf(rowkeyDelimiterTemplate, destination)); ok {
		delimiter = d
	}

	families := []string{DefaultFamily}
	if f, ok := r.props.Get(fmt.Sprintf(columnFamilyTemplate, destination)); ok {
		if parsed := splitList(f); len(parsed) > 0 {
			families = parsed
		}
	}

	layout := &sink.FamilyLayout{
		Families:      families,
		Delimiter:     delimiter,
		RowKeyColumns: rowkeyColumns,
	}

	// columns are routed per family only when more than one family is active
	if len(families) > 1 {
		layout.ColumnsByFamily = make(map[string][]string, len(families))
		for _, family := range families {
			cols, ok := r.props.Get(fmt.Sprintf(familyColumnsTemplate, destination, family))
			parsed := splitList(cols)
			if !ok || len(parsed) == 0 {
				return nil, sink.NewError(sink.ErrConfigMissing,
					"no columns configured for family %q of destination %q", family, destination)
			}
			layout.ColumnsByFamily[family] = parsed
		}
	}

	return layout, nil
}

// splitList parses a comma-separated configuration value, trimming whitespace
// and dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
