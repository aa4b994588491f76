package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type recordingObserver struct {
	name   string
	mu     sync.Mutex
	events []AnalysisEvent
}

func (r *recordingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) GetObserverName() string { return r.name }

func (r *recordingObserver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event AnalysisEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string                          { return "panicking" }

func TestEventPublisher_NotifyAndUnsubscribe(t *testing.T) {
	pub := NewEventPublisher()
	a := &recordingObserver{name: "a"}
	b := &recordingObserver{name: "b"}
	pub.Subscribe(a)
	pub.Subscribe(b)
	pub.Subscribe(panickingObserver{})

	pub.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted})
	pub.Wait()

	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("expected each observer to receive one event, got a=%d b=%d", a.count(), b.count())
	}
	if a.events[0].Timestamp.IsZero() {
		t.Error("expected the publisher to stamp the event")
	}

	pub.Unsubscribe(b)
	pub.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisCompleted})
	pub.Wait()

	if a.count() != 2 || b.count() != 1 {
		t.Errorf("unsubscribed observer should not receive events: a=%d b=%d", a.count(), b.count())
	}
}

func TestEventPublisher_DetachesRequestCancellation(t *testing.T) {
	pub := NewEventPublisher()
	done := make(chan error, 1)
	pub.Subscribe(observerFunc(func(ctx context.Context, e AnalysisEvent) { done <- ctx.Err() }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pub.NotifyObservers(ctx, AnalysisEvent{EventType: AnalysisCompleted})
	pub.Wait()

	if err := <-done; err != nil {
		t.Errorf("observers should not see the request's cancellation, got %v", err)
	}
}

type observerFunc func(ctx context.Context, e AnalysisEvent)

func (f observerFunc) OnEvent(ctx context.Context, e AnalysisEvent) { f(ctx, e) }
func (f observerFunc) GetObserverName() string                      { return "func" }

func TestMetricsObserver(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisStarted})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisStarted})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisStarted})
	m.OnEvent(ctx, AnalysisEvent{EventType: OCRFallback})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisCompleted, Kind: "math_solved", ProcessingTime: 2 * time.Second})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisCompleted, Kind: "low_confidence", ProcessingTime: 4 * time.Second})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisFailed})

	got := m.GetMetrics()
	checks := map[string]interface{}{
		"total_analyses":      int64(3),
		"completed_analyses":  int64(2),
		"failed_analyses":     int64(1),
		"ocr_fallbacks":       int64(1),
		"avg_processing_time": "3s",
	}
	for k, want := range checks {
		if got[k] != want {
			t.Errorf("%s = %v, want %v", k, got[k], want)
		}
	}
	byKind := got["results_by_kind"].(map[string]int64)
	if byKind["math_solved"] != 1 || byKind["low_confidence"] != 1 {
		t.Errorf("unexpected per-kind counts: %v", byKind)
	}
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.DebugLevel)

	o := NewLoggingObserver(l)
	o.OnEvent(context.Background(), AnalysisEvent{
		EventType:  AnalysisCompleted,
		RequestID:  "req-1",
		Success:    true,
		Kind:       "summary",
		Confidence: 88,
		Metadata:   map[string]interface{}{"fell_back": false},
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-1" || entry["kind"] != "summary" || entry["fell_back"] != false {
		t.Errorf("unexpected log fields: %v", entry)
	}
	if !strings.Contains(entry["msg"].(string), "completed") {
		t.Errorf("unexpected message: %v", entry["msg"])
	}
}
