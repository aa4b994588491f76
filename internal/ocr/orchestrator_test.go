package ocr

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
)

// fakeEngine returns a scripted result per profile and records calls
type fakeEngine struct {
	mu       sync.Mutex
	results  map[string]Result
	errs     map[string]error
	profiles []string
}

func (f *fakeEngine) Recognize(ctx context.Context, img image.Image, profile Profile) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = append(f.profiles, profile.Name)
	if err := f.errs[profile.Name]; err != nil {
		return Result{}, err
	}
	return f.results[profile.Name], nil
}

func (f *fakeEngine) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profiles)
}

func scored(text string, scores ...float64) Result {
	tokens := make([]Token, 0, len(scores))
	for _, s := range scores {
		tokens = append(tokens, Token{Text: "w", Confidence: Score(s)})
	}
	return Result{Text: text, Tokens: tokens}
}

func testImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 10, 10))
}

func TestResultConfidence(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   float64
	}{
		{"no tokens", Result{}, 0},
		{"all absent", Result{Tokens: []Token{{Text: "a"}, {Text: "b"}}}, 0},
		{"mean of present", scored("", 80, 90, 100), 90},
		{
			"absent scores skipped",
			Result{Tokens: []Token{{Text: "a", Confidence: Score(60)}, {Text: ""}, {Text: "b", Confidence: Score(20)}}},
			40,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Confidence(); got != tt.want {
				t.Errorf("Confidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrchestrator_PrimaryConfident(t *testing.T) {
	engine := &fakeEngine{results: map[string]Result{
		ProfileStructured.Name: scored("  2 + 2 = ?\n", 85),
	}}
	o := NewOrchestrator(engine)

	rec, err := o.Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if engine.calls() != 1 {
		t.Errorf("expected 1 engine call, got %d", engine.calls())
	}
	if rec.Text != "2 + 2 = ?" || rec.Confidence != 85 {
		t.Errorf("unexpected recognition: %+v", rec)
	}
	if rec.FellBack() || rec.Stage != StagePrimary || rec.Attempts != 1 {
		t.Errorf("expected primary stage, got %+v", rec)
	}
}

func TestOrchestrator_ExactlyAtThresholdDoesNotFallBack(t *testing.T) {
	engine := &fakeEngine{results: map[string]Result{
		ProfileStructured.Name: scored("text", MinConfidence),
	}}
	rec, err := NewOrchestrator(engine).Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if engine.calls() != 1 || rec.FellBack() {
		t.Errorf("confidence equal to threshold must not trigger fallback: calls=%d rec=%+v", engine.calls(), rec)
	}
}

func TestOrchestrator_FallbackReplacesPrimary(t *testing.T) {
	engine := &fakeEngine{results: map[string]Result{
		ProfileStructured.Name: scored("garbled", 20),
		ProfileAutomatic.Name:  scored("clean text", 70),
	}}
	rec, err := NewOrchestrator(engine).Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if engine.calls() != 2 {
		t.Fatalf("expected 2 engine calls, got %d", engine.calls())
	}
	if engine.profiles[0] != ProfileStructured.Name || engine.profiles[1] != ProfileAutomatic.Name {
		t.Errorf("unexpected profile order: %v", engine.profiles)
	}
	if rec.Text != "clean text" || rec.Confidence != 70 || !rec.FellBack() || rec.Attempts != 2 {
		t.Errorf("unexpected recognition: %+v", rec)
	}
}

func TestOrchestrator_FallbackReturnedEvenIfStillLow(t *testing.T) {
	engine := &fakeEngine{results: map[string]Result{
		ProfileStructured.Name: scored("a", 10),
		ProfileAutomatic.Name:  scored("b", 15),
	}}
	rec, err := NewOrchestrator(engine).Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if engine.calls() != 2 {
		t.Errorf("never more than one retry: got %d calls", engine.calls())
	}
	if rec.Text != "b" || rec.Confidence != 15 {
		t.Errorf("expected fallback result, got %+v", rec)
	}
}

func TestOrchestrator_EmptyOnBothAttempts(t *testing.T) {
	engine := &fakeEngine{results: map[string]Result{}}
	rec, err := NewOrchestrator(engine).Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if rec.Confidence != 0 || rec.Text != "" || engine.calls() != 2 {
		t.Errorf("expected empty zero-confidence fallback, got %+v after %d calls", rec, engine.calls())
	}
}

func TestOrchestrator_EngineFaultIsNotRetried(t *testing.T) {
	boom := errors.New("tesseract crashed")
	engine := &fakeEngine{errs: map[string]error{ProfileStructured.Name: boom}}

	_, err := NewOrchestrator(engine).Recognize(context.Background(), testImage())

	var engErr *EngineError
	if !errors.As(err, &engErr) {
		t.Fatalf("expected *EngineError, got %T: %v", err, err)
	}
	if engErr.Profile != ProfileStructured.Name || !errors.Is(err, boom) {
		t.Errorf("unexpected engine error: %+v", engErr)
	}
	if engine.calls() != 1 {
		t.Errorf("engine faults must not trigger fallback, got %d calls", engine.calls())
	}
}

func TestOrchestrator_FallbackFault(t *testing.T) {
	engine := &fakeEngine{
		results: map[string]Result{ProfileStructured.Name: scored("x", 5)},
		errs:    map[string]error{ProfileAutomatic.Name: ErrEngineUnavailable},
	}
	_, err := NewOrchestrator(engine).Recognize(context.Background(), testImage())
	var engErr *EngineError
	if !errors.As(err, &engErr) || engErr.Profile != ProfileAutomatic.Name {
		t.Fatalf("expected fallback EngineError, got %v", err)
	}
}

func TestOrchestrator_ContextErrorsAreNotEngineErrors(t *testing.T) {
	engine := &fakeEngine{errs: map[string]error{ProfileStructured.Name: context.DeadlineExceeded}}
	_, err := NewOrchestrator(engine).Recognize(context.Background(), testImage())

	var engErr *EngineError
	if errors.As(err, &engErr) {
		t.Fatalf("context errors should not be wrapped as engine faults: %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
