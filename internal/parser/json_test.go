package parser

import (
	"testing"

	"github.com/litetable/litetable-sink/internal/sink"
	"github.com/stretchr/testify/require"
)

func TestParser_ParseEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    *sink.Record
		wantErr bool
	}{
		{
			name:    "full envelope",
			payload: `{"destination":"orders","key":{"id":7},"value":{"url":"google.com","status":true}}`,
			want: &sink.Record{
				Destination: "orders",
				Key: sink.Fields{
					"id": sink.Int64(7),
				},
				Value: sink.Fields{
					"url":    sink.String("google.com"),
					"status": sink.Bool(true),
				},
			},
		},
		{
			name:    "value only",
			payload: `{"destination":"orders","value":{"id":1}}`,
			want: &sink.Record{
				Destination: "orders",
				Value: sink.Fields{
					"id": sink.Int64(1),
				},
			},
		},
		{
			name:    "null key payload",
			payload: `{"destination":"orders","key":null,"value":{"id":1}}`,
			want: &sink.Record{
				Destination: "orders",
				Value: sink.Fields{
					"id": sink.Int64(1),
				},
			},
		},
		{
			name:    "missing destination",
			payload: `{"value":{"id":1}}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			payload: `{"destination":`,
			wantErr: true,
		},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			got, err := p.ParseEnvelope([]byte(tt.payload))
			if tt.wantErr {
				req.ErrorIs(err, sink.ErrInvalidRecord)
				req.Nil(got)
				return
			}

			req.NoError(err)
			req.Equal(tt.want, got)
		})
	}
}

func TestParser_ParsePut(t *testing.T) {
	req := require.New(t)
	p := New()

	got, err := p.ParsePut([]byte(`orders {"id":1,"price":9.99}`))
	req.NoError(err)
	req.Equal("orders", got.Destination)
	req.Nil(got.Key)
	req.Equal(sink.Fields{
		"id":    sink.Int64(1),
		"price": sink.Float64(9.99),
	}, got.Value)

	_, err = p.ParsePut([]byte(`orders`))
	req.ErrorIs(err, sink.ErrInvalidRecord)
}

func TestParser_parseObject(t *testing.T) {
	req := require.New(t)
	p := New()

	t.Run("null fields are skipped", func(t *testing.T) {
		fields, err := p.parseObject([]byte(`{"a":null,"b":"x"}`))
		req.NoError(err)
		req.Equal(sink.Fields{"b": sink.String("x")}, fields)
	})

	t.Run("nested objects flatten with dotted names", func(t *testing.T) {
		fields, err := p.parseObject([]byte(`{"address":{"zip":95051,"geo":{"lat":1.5}}}`))
		req.NoError(err)
		req.Equal(sink.Fields{
			"address.zip":     sink.Int64(95051),
			"address.geo.lat": sink.Float64(1.5),
		}, fields)
	})

	t.Run("scientific notation is a float", func(t *testing.T) {
		fields, err := p.parseObject([]byte(`{"n":1e3}`))
		req.NoError(err)
		req.Equal(sink.Fields{"n": sink.Float64(1000)}, fields)
	})

	t.Run("arrays are rejected", func(t *testing.T) {
		_, err := p.parseObject([]byte(`{"a":[1,2]}`))
		req.ErrorIs(err, sink.ErrInvalidRecord)
	})
}
