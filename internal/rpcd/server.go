// Package rpcd serves scripted chat playback over gRPC.
package rpcd

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ayrahq/ayra/internal/clock"
	"github.com/ayrahq/ayra/internal/demochat"
	"github.com/ayrahq/ayra/internal/events"
	"github.com/ayrahq/ayra/internal/metrics"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/playback"
	"github.com/ayrahq/ayra/internal/scenarios"
)

// Deps are the services the gRPC handlers use.
type Deps struct {
	Catalog *scenarios.Catalog
	Events  events.Repository
	Metrics *metrics.Collector

	// Playback is used as given. A zero config plays once with no base delay.
	Playback   playback.Config
	ReplyDelay time.Duration
	Clock      clock.Clock
}

// Server implements PlaybackServer.
type Server struct {
	deps    Deps
	logger  zerolog.Logger
	version string
}

var _ PlaybackServer = (*Server)(nil)

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithVersion sets the reported version.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates the playback service.
func NewServer(deps Deps, logger zerolog.Logger, opts ...ServerOption) *Server {
	if deps.Events == nil {
		deps.Events = events.Discard
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}

	s := &Server{
		deps:    deps,
		logger:  logger,
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Version is the version the daemon reports.
func (s *Server) Version() string {
	return s.version
}

// Play streams the reveals of one playback session. The stream ends when the
// session finishes or the client cancels; cancellation is not an error.
func (s *Server) Play(req *PlayRequest, stream Playback_PlayServer) error {
	if req.Scenario == "" {
		return status.Error(codes.InvalidArgument, "scenario is required")
	}

	scenario, err := s.deps.Catalog.Get(req.Scenario)
	if err != nil {
		return toStatus(err)
	}
	scenario, err = scenarios.Render(scenario, req.Vars)
	if err != nil {
		return toStatus(err)
	}

	cfg := s.deps.Playback
	if req.Loop != nil {
		cfg.Loop = *req.Loop
	}
	if req.BaseDelayMs != nil {
		cfg.BaseDelay = time.Duration(max(*req.BaseDelayMs, 0)) * time.Millisecond
	}

	opts := []playback.Option{playback.WithClock(s.deps.Clock), playback.WithLogger(s.logger)}
	if s.deps.Metrics != nil {
		opts = append(opts, playback.WithRecorder(s.deps.Metrics))
	}
	seq := playback.New(opts...)

	ctx := stream.Context()
	sess := seq.Start(ctx, scenario, cfg)
	payload := models.PlaybackPayload{Scenario: scenario.Name, Steps: scenario.Len(), Loop: cfg.Loop}
	if err := events.LogPlaybackStarted(ctx, s.deps.Events, sess.ID(), payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record playback start")
	}

	s.logger.Debug().
		Str("session_id", sess.ID()).
		Str("scenario", scenario.Name).
		Bool("loop", cfg.Loop).
		Msg("starting playback stream")

	var sendErr error
	for ev := range sess.Events() {
		ev := ev // per-iteration copy (go.mod targets go1.21 loop semantics)
		if sendErr != nil {
			continue
		}
		if err := stream.Send(&ev); err != nil {
			sendErr = err
			sess.Cancel()
		}
	}

	final := sess.State()
	payload.Iterations = sess.Iteration() + 1
	payload.Revealed = len(sess.Prefix())
	if err := events.LogPlaybackEnded(context.WithoutCancel(ctx), s.deps.Events, sess.ID(), final == playback.StateCancelled, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record playback end")
	}

	s.logger.Debug().
		Str("session_id", sess.ID()).
		Str("state", final.String()).
		Msg("playback stream ended")

	if sendErr != nil && ctx.Err() == nil {
		return sendErr
	}
	return nil
}

// ListScenarios returns the catalog, optionally filtered by tags.
func (s *Server) ListScenarios(ctx context.Context, req *ListScenariosRequest) (*ListScenariosResponse, error) {
	list := s.deps.Catalog.List()
	if len(req.Tags) > 0 {
		list = scenarios.Filter(list, req.Tags)
	}

	resp := &ListScenariosResponse{Scenarios: make([]ScenarioInfo, 0, len(list))}
	for _, sc := range list {
		resp.Scenarios = append(resp.Scenarios, ScenarioInfo{
			Name:        sc.Name,
			Title:       sc.Title,
			Description: sc.Description,
			Steps:       sc.Len(),
			Tags:        sc.Tags,
			Source:      sc.Source,
		})
	}
	return resp, nil
}

// Ask answers a demo chat question after the reply delay.
func (s *Server) Ask(ctx context.Context, req *AskRequest) (*AskResponse, error) {
	conv := demochat.NewConversation(
		demochat.WithClock(s.deps.Clock),
		demochat.WithReplyDelay(s.deps.ReplyDelay),
		demochat.WithLogger(s.logger),
	)
	reply, err := conv.Ask(ctx, req.Question)
	if err != nil {
		return nil, toStatus(err)
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.DemoAsked("grpc")
	}
	if err := events.LogDemoAsked(ctx, s.deps.Events, "grpc", req.Question, reply.Content); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record demo event")
	}
	return &AskResponse{Question: req.Question, Reply: reply.Content}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, scenarios.ErrScenarioNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, scenarios.ErrInvalidScenario), errors.Is(err, demochat.ErrEmptyMessage):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
