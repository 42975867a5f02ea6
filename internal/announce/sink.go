package announce

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnsupported reports that a sink cannot synthesize speech on this platform.
	ErrUnsupported = errors.New("speech synthesis unsupported")
	// ErrNoAudience reports that no output currently accepts audio, such as
	// when every kiosk page is still muted.
	ErrNoAudience = errors.New("no audio output listening")
)

// Utterance is a single speech request.
type Utterance struct {
	Text   string  `json:"text"`
	Lang   string  `json:"lang"`
	Rate   float64 `json:"rate"`
	Volume float64 `json:"volume"`
}

// Tone is a short fixed-frequency beep.
type Tone struct {
	FrequencyHz int           `json:"frequencyHz"`
	Duration    time.Duration `json:"duration"`
	Gain        float64       `json:"gain"`
}

// NotificationSink is the audio output used by the Announcer. Speak returns
// ErrUnsupported when speech is unavailable so the caller can fall back to Tone.
// Implementations must not block for the length of the audio.
type NotificationSink interface {
	Speak(ctx context.Context, utterance Utterance) error
	Tone(ctx context.Context, tone Tone) error
}

// NoopSink discards all output.
type NoopSink struct{}

func (NoopSink) Speak(context.Context, Utterance) error { return nil }

func (NoopSink) Tone(context.Context, Tone) error { return nil }
