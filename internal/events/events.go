// Package events streams every applied cell write to subscribed downstream
// clients over the LiteTable CDC protocol, so consumers can follow sink
// progress without polling the target table.
package events

import (
	"errors"
	"fmt"
	"net"
	"sync"

	v1 "github.com/litetable/litetable-cdc/go/v1"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
)

// Event is one applied cell write.
type Event struct {
	RowKey    string
	Family    string
	Qualifier string
	Value     []byte
	Timestamp int64
}

// Server implements the app.Dependency interface for the applied-event
// stream. Events are fanned out to every subscribed gRPC stream; a stream
// that fails a send is dropped.
type Server struct {
	v1.UnimplementedCDCServiceServer

	address string
	port    int

	streamMux sync.Mutex
	streams   map[string]v1.CDCService_CDCStreamServer

	server *grpc.Server
	events chan *Event
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

func New(cfg *Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Server{
		address: cfg.Address,
		port:    cfg.Port,
		streams: make(map[string]v1.CDCService_CDCStreamServer),
		events:  make(chan *Event, 1000),
	}

	srv := grpc.NewServer()
	v1.RegisterCDCServiceServer(srv, s)
	s.server = srv

	return s, nil
}

// Emit queues an applied event for broadcast. Emission never blocks the
// ingest path; when the buffer is full the event is dropped.
func (s *Server) Emit(e *Event) {
	select {
	case s.events <- e:
	default:
		log.Warn().Msg("applied event buffer full, dropping event")
	}
}

// CDCStream registers a subscriber and holds the stream open until the
// client disconnects.
func (s *Server) CDCStream(req *v1.CDCSubscriptionRequest,
	stream v1.CDCService_CDCStreamServer) error {
	s.registerStream(req.GetClientId(), stream)
	defer s.unregisterStream(req.GetClientId())

	<-stream.Context().Done()
	return nil
}

func (s *Server) registerStream(clientID string, stream v1.CDCService_CDCStreamServer) {
	s.streamMux.Lock()
	defer s.streamMux.Unlock()
	s.streams[clientID] = stream
}

func (s *Server) unregisterStream(clientID string) {
	s.streamMux.Lock()
	defer s.streamMux.Unlock()
	delete(s.streams, clientID)
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	log.Info().Msgf("applied events gRPC server listening at %s:%d", s.address, s.port)

	// Start fan-out dispatcher
	go s.dispatchLoop()

	go func() {
		if err := s.server.Serve(lis); err != nil {
			log.Error().Err(err).Msg("applied events gRPC server failed")
		}
	}()

	return nil
}

func (s *Server) Stop() error {
	log.Info().Msg("Stopping applied events server")
	s.server.GracefulStop()
	return nil
}

func (s *Server) Name() string {
	return "Applied Events Stream"
}

func (s *Server) dispatchLoop() {
	for evt := range s.events {
		s.streamMux.Lock()
		for id, stream := range s.streams {
			event := &v1.CDCEvent{
				Operation:     v1.LitetableOperation_WRITE,
				RowKey:        evt.RowKey,
				Family:        evt.Family,
				Qualifier:     evt.Qualifier,
				Value:         evt.Value,
				TimestampUnix: evt.Timestamp,
			}

			if err := stream.Send(event); err != nil {
				log.Warn().Err(err).Str("client", id).Msg("removing stream due to send error")
				delete(s.streams, id)
			}
		}
		s.streamMux.Unlock()
	}
}
