package app

import (
	"context"
	"net/http"
	"testing"
)

func TestNewHTTPServiceDefaults(t *testing.T) {
	svc := NewHTTPService("127.0.0.1:0", http.NotFoundHandler())
	if svc.Name() != "http" || svc.Addr() != "127.0.0.1:0" {
		t.Fatalf("unexpected http service: %s %s", svc.Name(), svc.Addr())
	}
	if svc.server.ReadHeaderTimeout != httpReadHeaderTimeout || svc.server.MaxHeaderBytes != httpMaxHeaderBytes {
		t.Fatalf("server timeouts not applied: %+v", svc.server)
	}
}

func TestHTTPServiceStartAfterStop(t *testing.T) {
	svc := NewHTTPService("127.0.0.1:0", http.NotFoundHandler())
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop before start failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start on a closed server should return nil, got %v", err)
	}
	if svc.server.BaseContext == nil {
		t.Fatalf("base context should be bound to the start context")
	}
	if got := svc.server.BaseContext(nil); got != ctx {
		t.Fatalf("base context want start ctx")
	}
}

func TestNilHTTPService(t *testing.T) {
	var svc *HTTPService
	if svc.Name() != "http" || svc.Addr() != "" {
		t.Fatalf("nil service should report defaults")
	}
	if err := svc.Start(context.Background()); err == nil {
		t.Fatalf("nil service start should fail")
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("nil service stop should be a no-op, got %v", err)
	}
}
