package trace

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// UnaryServerInterceptor attaches a trace context to incoming unary calls.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = fromIncoming(ctx)
		Logger(ctx).Debug("grpc call", "method", info.FullMethod)
		return handler(ctx, req)
	}
}

// StreamServerInterceptor attaches a trace context to incoming streams.
func StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := fromIncoming(ss.Context())
		Logger(ctx).Debug("grpc stream", "method", info.FullMethod)
		return handler(srv, &tracedStream{ServerStream: ss, ctx: ctx})
	}
}

type tracedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *tracedStream) Context() context.Context { return s.ctx }

func fromIncoming(ctx context.Context) context.Context {
	var traceID, parent string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(TraceIDKey); len(v) > 0 {
			traceID = v[0]
		}
		if v := md.Get(SpanIDKey); len(v) > 0 {
			parent = v[0]
		}
	}
	return WithContext(ctx, continueFrom(traceID, parent))
}
