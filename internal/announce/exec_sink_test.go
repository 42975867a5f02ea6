package announce

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type commandRecorder struct {
	mu    sync.Mutex
	calls [][]string
	done  chan struct{}
}

func (r *commandRecorder) run(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{name}, args...))
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func lookAll(name string) (string, error) { return "/usr/bin/" + name, nil }

func lookNone(string) (string, error) { return "", errors.New("not found") }

func TestSpeechArgs(t *testing.T) {
	got := speechArgs(Utterance{Text: "Mời số A015 vào Phòng 2", Lang: "vi-VN", Rate: 0.9, Volume: 1})
	want := []string{"-v", "vi", "-s", "158", "-a", "100", "Mời số A015 vào Phòng 2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("speechArgs = %v, want %v", got, want)
	}
	silent := speechArgs(Utterance{Lang: "en-US", Volume: 0})
	if silent[1] != "en" || silent[5] != "0" {
		t.Fatalf("unexpected warm-up args %v", silent)
	}
}

func TestToneArgs(t *testing.T) {
	got := toneArgs(Tone{FrequencyHz: 880, Duration: 200 * time.Millisecond, Gain: 0.3})
	want := []string{"-q", "-n", "synth", "0.2", "sine", "880", "vol", "0.3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("toneArgs = %v, want %v", got, want)
	}
}

func TestExecSinkPlaysInOrder(t *testing.T) {
	rec := &commandRecorder{done: make(chan struct{}, 4)}
	sink := newExecSink(ExecOptions{SpeechCommand: "espeak-ng", ToneCommand: "play"}, nil, lookAll, rec.run)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sink.Run(ctx)

	if err := sink.Speak(ctx, Utterance{Text: "one", Lang: "vi-VN", Rate: 1, Volume: 1}); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if err := sink.Tone(ctx, Tone{FrequencyHz: 880, Duration: 200 * time.Millisecond, Gain: 0.3}); err != nil {
		t.Fatalf("Tone: %v", err)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-rec.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for command")
		}
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.calls[0][0] != "/usr/bin/espeak-ng" || rec.calls[1][0] != "/usr/bin/play" {
		t.Fatalf("unexpected command order %v", rec.calls)
	}
}

func TestExecSinkWithoutSpeechIsUnsupported(t *testing.T) {
	sink := newExecSink(ExecOptions{SpeechCommand: "espeak-ng", ToneCommand: "play"}, nil, lookNone, nil)
	if sink.SpeechAvailable() {
		t.Fatal("expected speech unavailable")
	}
	if err := sink.Speak(context.Background(), Utterance{Text: "x"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if err := sink.Tone(context.Background(), Tone{}); err != nil {
		t.Fatalf("expected missing tone command to be a no-op, got %v", err)
	}
}

func TestExecSinkQueueFull(t *testing.T) {
	sink := newExecSink(ExecOptions{SpeechCommand: "espeak-ng"}, nil, lookAll, nil)
	var err error
	for i := 0; i <= execQueueSize; i++ {
		err = sink.Speak(context.Background(), Utterance{Text: "x"})
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull once the queue is saturated, got %v", err)
	}
}
