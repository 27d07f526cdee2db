package writer

import (
	"context"
	"errors"
	"testing"

	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-sink/internal/sink"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

type fakeClient struct {
	requests []*proto.WriteRequest
	err      error
}

func (f *fakeClient) Write(_ context.Context, in *proto.WriteRequest,
	_ ...grpc.CallOption) (*proto.LitetableData, error) {
	f.requests = append(f.requests, in)
	if f.err != nil {
		return nil, f.err
	}
	return &proto.LitetableData{}, nil
}

func TestNew(t *testing.T) {
	tests := map[string]struct {
		cfg     *Config
		wantErr bool
	}{
		"empty config": {
			cfg:     &Config{},
			wantErr: true,
		},
		"invalid port": {
			cfg:     &Config{Address: "localhost", Port: 70000},
			wantErr: true,
		},
		"valid config": {
			cfg: &Config{Address: "localhost", Port: 9443},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)

			got, err := New(tc.cfg)
			if tc.wantErr {
				req.Error(err)
				req.Nil(got)
				return
			}

			req.NoError(err)
			req.NotNil(got)
			req.NotNil(got.client)
			req.NoError(got.Stop())
		})
	}
}

func TestWriter_Name(t *testing.T) {
	w := &Writer{}
	require.Equal(t, "LiteTable Writer", w.Name())
}

func TestWriter_Write(t *testing.T) {
	req := require.New(t)

	client := &fakeClient{}
	w := &Writer{client: client}

	m := &sink.Mutation{
		RowKey: []byte("row-1"),
		Cells: []sink.Cell{
			{Family: "cf1", Qualifier: "id", Value: []byte{0x01}},
			{Family: "cf2", Qualifier: "url", Value: []byte("google.com")},
			{Family: "cf1", Qualifier: "zip", Value: []byte{0x02}},
		},
	}

	req.NoError(w.Write(context.Background(), m))
	req.Len(client.requests, 2, "one write per family")

	first := client.requests[0]
	req.Equal("cf1", first.GetFamily())
	req.Equal("row-1", first.GetRowKey())
	req.Len(first.GetQualifiers(), 2)
	req.Equal("id", first.GetQualifiers()[0].GetName())
	req.Equal("zip", first.GetQualifiers()[1].GetName())

	second := client.requests[1]
	req.Equal("cf2", second.GetFamily())
	req.Len(second.GetQualifiers(), 1)
	req.Equal("url", second.GetQualifiers()[0].GetName())
	req.Equal([]byte("google.com"), second.GetQualifiers()[0].GetValue())
}

func TestWriter_Write_propagatesClientError(t *testing.T) {
	req := require.New(t)

	client := &fakeClient{err: errors.New("db down")}
	w := &Writer{client: client}

	err := w.Write(context.Background(), &sink.Mutation{
		RowKey: []byte("row-1"),
		Cells:  []sink.Cell{{Family: "cf1", Qualifier: "id", Value: []byte{0x01}}},
	})
	req.Error(err)
	req.Contains(err.Error(), "cf1")
}

func TestWriter_Write_nilMutation(t *testing.T) {
	w := &Writer{client: &fakeClient{}}
	require.Error(t, w.Write(context.Background(), nil))
}

func TestGroupByFamily_preservesFirstAppearanceOrder(t *testing.T) {
	req := require.New(t)

	groups := groupByFamily([]sink.Cell{
		{Family: "b", Qualifier: "q1"},
		{Family: "a", Qualifier: "q2"},
		{Family: "b", Qualifier: "q3"},
	})

	req.Len(groups, 2)
	req.Equal("b", groups[0].family)
	req.Len(groups[0].qualifiers, 2)
	req.Equal("a", groups[1].family)
	req.Len(groups[1].qualifiers, 1)
}
