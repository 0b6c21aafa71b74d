// Package pb describes the remote play service. Messages are protobuf
// well-known types: actions travel as StringValue and snapshots as Struct,
// so the service needs no generated code.
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "tetris.TetrisService"
	PlayMethod  = "/tetris.TetrisService/Play"

	// SessionHeader carries the id of the game a Play stream is bound to.
	SessionHeader = "session-id"
)

type (
	PlayServer = grpc.BidiStreamingServer[wrapperspb.StringValue, structpb.Struct]
	PlayClient = grpc.BidiStreamingClient[wrapperspb.StringValue, structpb.Struct]
)

// TetrisServiceServer is the server API for the remote play service.
type TetrisServiceServer interface {
	// Play runs one game for the lifetime of the stream. The client sends
	// actions, the server answers with a snapshot after every change.
	Play(PlayServer) error
}

func _TetrisService_Play_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(TetrisServiceServer).Play(&grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

var TetrisService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TetrisServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Play",
			Handler:       _TetrisService_Play_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "tetris.proto",
}

func RegisterTetrisServiceServer(s grpc.ServiceRegistrar, srv TetrisServiceServer) {
	s.RegisterService(&TetrisService_ServiceDesc, srv)
}

// TetrisServiceClient is the client API for the remote play service.
type TetrisServiceClient interface {
	Play(ctx context.Context, opts ...grpc.CallOption) (PlayClient, error)
}

type tetrisServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTetrisServiceClient(cc grpc.ClientConnInterface) TetrisServiceClient {
	return &tetrisServiceClient{cc: cc}
}

func (c *tetrisServiceClient) Play(ctx context.Context, opts ...grpc.CallOption) (PlayClient, error) {
	stream, err := c.cc.NewStream(ctx, &TetrisService_ServiceDesc.Streams[0], PlayMethod, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}, nil
}
