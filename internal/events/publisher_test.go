package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish_KeysByPath(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{w: w, topic: "images"}
	ev := Processed{
		ID:          uuid.New(),
		RunID:       "run-1",
		Path:        "/img/a.png",
		Output:      "/img/a.min.png",
		Steps:       []string{"resize", "grayscale"},
		ProcessedAt: time.Now().UTC(),
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != ev.Path {
		t.Fatalf("key = %q", w.msgs[0].Key)
	}
	var got Processed
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != ev.ID || got.Output != ev.Output || len(got.Steps) != 2 {
		t.Fatalf("decoded event = %+v", got)
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("close: %v closed=%v", err, w.closed)
	}
}

func TestPublish_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := &Publisher{w: &fakeWriter{err: boom}, topic: "images"}
	err := p.Publish(context.Background(), Processed{Path: "a.png"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}
