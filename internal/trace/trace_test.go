package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestNewContext(t *testing.T) {
	ctx := New()
	if len(ctx.TraceID) != 32 {
		t.Errorf("trace ID should be 32 chars, got %d", len(ctx.TraceID))
	}
	if len(ctx.SpanID) != 16 {
		t.Errorf("span ID should be 16 chars, got %d", len(ctx.SpanID))
	}
	if ctx.ParentSpanID != "" {
		t.Error("new context should not have parent span ID")
	}
}

func TestIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New().TraceID
		if seen[id] {
			t.Error("generated duplicate trace ID")
		}
		seen[id] = true
	}
}

func TestNewChild(t *testing.T) {
	parent := New()
	child := NewChild(parent)

	if child.TraceID != parent.TraceID {
		t.Error("child should inherit trace ID")
	}
	if child.SpanID == parent.SpanID {
		t.Error("child should have new span ID")
	}
	if child.ParentSpanID != parent.SpanID {
		t.Error("child's parent should be parent's span ID")
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("should not find trace context in empty context")
	}
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "tick")

	if span.Name != "tick" {
		t.Error("span name mismatch")
	}
	if span.Duration() != 0 {
		t.Error("open span should report zero duration")
	}
	span.SetAttr("displays", 2)
	span.End()

	if span.EndTime.IsZero() {
		t.Error("span should have end time")
	}
	if span.Attrs["displays"] != 2 {
		t.Error("span attribute mismatch")
	}
	if tc, ok := FromContext(ctx); !ok || tc.SpanID != span.Ctx.SpanID {
		t.Error("returned context should carry the span's trace context")
	}
}

func TestSpanNested(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "tick")
	_, child := StartSpan(ctx, "display")

	if child.Ctx.TraceID != parent.Ctx.TraceID {
		t.Error("child should inherit trace ID")
	}
	if child.Ctx.ParentSpanID != parent.Ctx.SpanID {
		t.Error("child's parent should be parent's span")
	}
}

func TestMiddleware(t *testing.T) {
	var got Context
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/status", http.NoBody)
	req.Header.Set(TraceIDKey, "abc123")
	req.Header.Set(SpanIDKey, "span1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got.TraceID != "abc123" {
		t.Errorf("TraceID = %q, want %q", got.TraceID, "abc123")
	}
	if got.ParentSpanID != "span1" {
		t.Errorf("ParentSpanID = %q, want %q", got.ParentSpanID, "span1")
	}
	if rec.Header().Get(TraceIDKey) != "abc123" {
		t.Error("response should echo trace id")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if len(got.TraceID) != 32 {
		t.Error("middleware should create a trace when none is supplied")
	}
}

func TestUnaryServerInterceptor(t *testing.T) {
	md := metadata.Pairs(TraceIDKey, "feedface")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	var got Context
	handler := func(ctx context.Context, req any) (any, error) {
		got, _ = FromContext(ctx)
		return nil, nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	if _, err := UnaryServerInterceptor()(ctx, nil, info, handler); err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if got.TraceID != "feedface" {
		t.Errorf("TraceID = %q, want %q", got.TraceID, "feedface")
	}
}

func TestLogger(t *testing.T) {
	ctx := WithContext(context.Background(), New())
	Logger(ctx).Info("test message")
	Logger(context.Background()).Info("no trace")
}
