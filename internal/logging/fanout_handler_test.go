package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNewFanoutHandlerNilHandlers(t *testing.T) {
	h := newFanoutHandler(nil, nil)
	if _, ok := h.(NoopHandler); !ok {
		t.Errorf("expected NoopHandler for all nil handlers, got %T", h)
	}
}

func TestNewFanoutHandlerSingleHandler(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)

	if h := newFanoutHandler(nil, inner); h != inner {
		t.Error("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerHandleRespectsLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	h := newFanoutHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout enabled for debug")
	}
	record := slog.NewRecord(time.Now(), slog.LevelDebug, "tick", 0)
	if err := h.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if infoBuf.Len() != 0 {
		t.Fatalf("expected info handler to skip debug record, got %q", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "tick") {
		t.Fatalf("expected debug handler to receive record, got %q", debugBuf.String())
	}
}

func TestFanoutHandlerWithAttrs(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newFanoutHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))
	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String(FieldMediaKey, "sm9")}))

	logger.Info("attached")

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		if !strings.Contains(buf.String(), `"media_key":"sm9"`) {
			t.Fatalf("handler %d missing attr: %q", i, buf.String())
		}
	}
}
