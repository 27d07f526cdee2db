package sink

// Kind identifies the runtime type carried by a Scalar.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindBool
	KindBytes
)

// Scalar is a closed tagged variant for a single field value. Exactly one of
// the value fields is meaningful, selected by Kind. Unsupported kinds are
// rejected by the codec rather than coerced.
type Scalar struct {
	Kind  Kind
	Str   string
	I32   int32
	I64   int64
	F32   float32
	F64   float64
	Bool  bool
	Bytes []byte
}

func String(s string) Scalar { return Scalar{Kind: KindString, Str: s} }
func Int32(n int32) Scalar { return Scalar{Kind: KindInt32, I32: n} }
func Int64(n int64) Scalar { return Scalar{Kind: KindInt64, I64: n} }
func Float32(f float32) Scalar { return Scalar{Kind: KindFloat32, F32: f} }
func Float64(f float64) Scalar { return Scalar{Kind: KindFloat64, F64: f} }
func Bool(b bool) Scalar { return Scalar{Kind: KindBool, Bool: b} }
func RawBytes(b []byte) Scalar { return Scalar{Kind: KindBytes, Bytes: b} }

// Fields maps a field name to its scalar value.
type Fields map[string]Scalar

// Record is one ingested unit of data. The destination names the target table
// and scopes all configuration lookups. Key and Value are optional; a nil
// payload is valid and simply contributes no fields.
//
// A record is transient: it is owned by the caller for the duration of one
// mapping call and never retained.
type Record struct {
	Destination string
	Key         Fields
	Value       Fields
}

// Cell is a single column write within a mutation.
type Cell struct {
	Family    string
	Qualifier string
	Value     []byte
}

// Mutation is the complete, ready-to-write unit produced for one record:
// a composite row key plus every cell write. It is immutable once built.
type Mutation struct {
	RowKey []byte
	Cells  []Cell
}

// FamilyLayout is the resolved column-family configuration for one
// destination. It is immutable once resolved and safe to share between
// concurrent readers.
//
// ColumnsByFamily is only populated when more than one family is configured;
// in single-family mode every record field lands in Families[0].
type FamilyLayout struct {
	Families        []string
	Delimiter       string
	RowKeyColumns   []string
	ColumnsByFamily map[string][]string
}

// MultiFamily reports whether per-family column routing is active.
func (l *FamilyLayout) MultiFamily() bool {
	return len(l.Families) > 1
}
