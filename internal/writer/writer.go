// Package writer ships built mutations to a LiteTable server over its gRPC
// write API.
package writer

import (
	"context"
	"errors"
	"fmt"

	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-sink/internal/sink"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// litetableClient is the slice of the generated LiteTable client the writer
// uses; narrowed so tests can substitute a double.
type litetableClient interface {
	Write(ctx context.Context, in *proto.WriteRequest, opts ...grpc.CallOption) (*proto.LitetableData, error)
}

// Writer implements the app.Dependency interface for the LiteTable client
// connection. One Write call per (mutation, family) pair; retry and
// acknowledgment policy belong to the caller.
type Writer struct {
	address string
	port    int

	conn   *grpc.ClientConn
	client litetableClient
}

type Config struct {
	Address string
	Port    int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, fmt.Errorf("address required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errGrp = append(errGrp, fmt.Errorf("invalid port: %d", c.Port))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Writer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// the client connection is created eagerly so the engine can replay
	// journaled records as soon as it starts; gRPC connects lazily
	target := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create litetable client for %s: %w", target, err)
	}

	return &Writer{
		address: cfg.Address,
		port:    cfg.Port,
		conn:    conn,
		client:  proto.NewLitetableServiceClient(conn),
	}, nil
}

func (w *Writer) Start() error {
	log.Info().Msgf("LiteTable writer targeting %s:%d", w.address, w.port)
	return nil
}

func (w *Writer) Stop() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}

func (w *Writer) Name() string {
	return "LiteTable Writer"
}

// Write sends every cell of the mutation, grouped per family because the
// write API addresses one family per request. The row key bytes pass through
// as-is.
func (w *Writer) Write(ctx context.Context, m *sink.Mutation) error {
	if m == nil {
		return errors.New("mutation cannot be nil")
	}
	if w.client == nil {
		return errors.New("writer is not started")
	}

	for _, group := range groupByFamily(m.Cells) {
		req := &proto.WriteRequest{
			Family:     group.family,
			RowKey:     string(m.RowKey),
			Qualifiers: group.qualifiers,
		}

		if _, err := w.client.Write(ctx, req); err != nil {
			return fmt.Errorf("failed to write family %q: %w", group.family, err)
		}
	}

	return nil
}

type familyGroup struct {
	family     string
	qualifiers []*proto.ColumnQualifier
}

// groupByFamily buckets cells per family, preserving the order families
// first appear in the mutation.
func groupByFamily(cells []sink.Cell) []familyGroup {
	var groups []familyGroup
	index := make(map[string]int)

	for _, cell := range cells {
		i, ok := index[cell.Family]
		if !ok {
			i = len(groups)
			index[cell.Family] = i
			groups = append(groups, familyGroup{family: cell.Family})
		}

		groups[i].qualifiers = append(groups[i].qualifiers, &proto.ColumnQualifier{
			Name:  cell.Qualifier,
			Value: cell.Value,
		})
	}

	return groups
}
