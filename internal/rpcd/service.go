package rpcd

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ayrahq/ayra/internal/playback"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ayra.v1.Playback"

// Full method names, as seen by interceptors.
const (
	MethodPlay          = "/" + ServiceName + "/Play"
	MethodListScenarios = "/" + ServiceName + "/ListScenarios"
	MethodAsk           = "/" + ServiceName + "/Ask"
)

// PlayRequest starts a playback stream.
type PlayRequest struct {
	Scenario string `json:"scenario"`

	// Loop repeats the scenario until the client cancels. Nil keeps the
	// server's setting.
	Loop *bool `json:"loop,omitempty"`

	// BaseDelayMs overrides the server's base delay when set. Zero is a valid
	// override and negative values are treated as zero.
	BaseDelayMs *int64 `json:"base_delay_ms,omitempty"`

	Vars map[string]string `json:"vars,omitempty"`
}

// ListScenariosRequest filters the scenario list by tags.
type ListScenariosRequest struct {
	Tags []string `json:"tags,omitempty"`
}

// ScenarioInfo is the list view of a scenario.
type ScenarioInfo struct {
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Steps       int      `json:"steps"`
	Tags        []string `json:"tags,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// ListScenariosResponse lists the available scenarios.
type ListScenariosResponse struct {
	Scenarios []ScenarioInfo `json:"scenarios"`
}

// AskRequest is a demo chat question.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the scripted answer.
type AskResponse struct {
	Question string `json:"question"`
	Reply    string `json:"reply"`
}

// PlaybackServer is the server API for the ayra.v1.Playback service.
type PlaybackServer interface {
	Play(*PlayRequest, Playback_PlayServer) error
	ListScenarios(context.Context, *ListScenariosRequest) (*ListScenariosResponse, error)
	Ask(context.Context, *AskRequest) (*AskResponse, error)
}

// Playback_PlayServer is the server side of the Play stream.
type Playback_PlayServer interface {
	Send(*playback.Event) error
	grpc.ServerStream
}

type playbackPlayServer struct {
	grpc.ServerStream
}

func (x *playbackPlayServer) Send(m *playback.Event) error {
	return x.ServerStream.SendMsg(m)
}

// RegisterPlaybackServer registers srv on s.
func RegisterPlaybackServer(s grpc.ServiceRegistrar, srv PlaybackServer) {
	s.RegisterService(&PlaybackServiceDesc, srv)
}

func _Playback_Play_Handler(srv any, stream grpc.ServerStream) error {
	m := new(PlayRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(PlaybackServer).Play(m, &playbackPlayServer{stream})
}

func _Playback_ListScenarios_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListScenariosRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PlaybackServer).ListScenarios(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodListScenarios}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PlaybackServer).ListScenarios(ctx, req.(*ListScenariosRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Playback_Ask_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AskRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PlaybackServer).Ask(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodAsk}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PlaybackServer).Ask(ctx, req.(*AskRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// PlaybackServiceDesc is the grpc.ServiceDesc for the ayra.v1.Playback service.
var PlaybackServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlaybackServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListScenarios", Handler: _Playback_ListScenarios_Handler},
		{MethodName: "Ask", Handler: _Playback_Ask_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Play", Handler: _Playback_Play_Handler, ServerStreams: true},
	},
	Metadata: "ayra/v1/playback",
}

// Client is the client API for the ayra.v1.Playback service. Every call
// uses the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

// ListScenarios lists the server's scenarios.
func (c *Client) ListScenarios(ctx context.Context, in *ListScenariosRequest, opts ...grpc.CallOption) (*ListScenariosResponse, error) {
	out := new(ListScenariosResponse)
	if err := c.cc.Invoke(ctx, MethodListScenarios, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// Ask sends a demo chat question.
func (c *Client) Ask(ctx context.Context, in *AskRequest, opts ...grpc.CallOption) (*AskResponse, error) {
	out := new(AskResponse)
	if err := c.cc.Invoke(ctx, MethodAsk, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// Playback_PlayClient is the client side of the Play stream.
type Playback_PlayClient interface {
	Recv() (*playback.Event, error)
	grpc.ClientStream
}

type playbackPlayClient struct {
	grpc.ClientStream
}

func (x *playbackPlayClient) Recv() (*playback.Event, error) {
	m := new(playback.Event)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Play starts a playback stream. Recv returns io.EOF once the session
// finishes; cancel ctx to stop a looping session.
func (c *Client) Play(ctx context.Context, in *PlayRequest, opts ...grpc.CallOption) (Playback_PlayClient, error) {
	stream, err := c.cc.NewStream(ctx, &PlaybackServiceDesc.Streams[0], MethodPlay, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &playbackPlayClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
