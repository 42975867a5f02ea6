package announce

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"queuedisplay/internal/blink"
	"queuedisplay/internal/calls"
	"queuedisplay/internal/logging"
)

// Options configures speech text and tone output.
type Options struct {
	Lang         string
	Rate         float64
	CallTemplate string
	LabTemplate  string
	Tone         Tone
}

// DefaultOptions mirrors the built-in configuration defaults.
func DefaultOptions() Options {
	return Options{
		Lang:         "vi-VN",
		Rate:         0.9,
		CallTemplate: "Mời số {ticketCode} vào {roomName}",
		LabTemplate:  "Kết quả xét nghiệm mã {orderCode} đã hoàn thành",
		Tone:         Tone{FrequencyHz: 880, Duration: 200 * time.Millisecond, Gain: 0.3},
	}
}

// Announcer turns detector events into audio and highlight side effects.
// Audio is gated by a permission flag that starts false; the highlight always
// happens.
type Announcer struct {
	sink              NotificationSink
	blinks            *blink.Set
	opts              Options
	logger            *slog.Logger
	permission        atomic.Bool
	warmed            atomic.Bool
	speechUnsupported atomic.Bool
}

// New constructs an Announcer. A nil sink discards audio.
func New(sink NotificationSink, blinks *blink.Set, opts Options, logger *slog.Logger) *Announcer {
	if sink == nil {
		sink = NoopSink{}
	}
	if blinks == nil {
		blinks = blink.New(blink.DefaultTTL)
	}
	defaults := DefaultOptions()
	if strings.TrimSpace(opts.Lang) == "" {
		opts.Lang = defaults.Lang
	}
	if opts.Rate <= 0 {
		opts.Rate = defaults.Rate
	}
	if strings.TrimSpace(opts.CallTemplate) == "" {
		opts.CallTemplate = defaults.CallTemplate
	}
	if strings.TrimSpace(opts.LabTemplate) == "" {
		opts.LabTemplate = defaults.LabTemplate
	}
	if opts.Tone.FrequencyHz <= 0 {
		opts.Tone = defaults.Tone
	}
	return &Announcer{
		sink:   sink,
		blinks: blinks,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "announcer"),
	}
}

// Blinks exposes the highlight set.
func (a *Announcer) Blinks() *blink.Set {
	return a.blinks
}

// AudioEnabled reports whether audible output is permitted.
func (a *Announcer) AudioEnabled() bool {
	return a.permission.Load()
}

// EnableAudio grants audio permission. The first grant primes the speech
// engine with a silent utterance.
func (a *Announcer) EnableAudio(ctx context.Context) {
	a.permission.Store(true)
	if !a.warmed.CompareAndSwap(false, true) {
		return
	}
	err := a.sink.Speak(ctx, Utterance{Text: "", Lang: a.opts.Lang, Rate: a.opts.Rate, Volume: 0})
	if errors.Is(err, ErrUnsupported) {
		a.speechUnsupported.Store(true)
		return
	}
	if err != nil {
		a.logger.Debug("speech warm-up failed", logging.Error(err))
	}
	a.logger.Info("audio enabled", logging.String(logging.FieldEventType, "audio_enabled"))
}

// DisableAudio revokes audio permission, as on a fresh page load.
func (a *Announcer) DisableAudio() {
	a.permission.Store(false)
}

// CallText renders the spoken text for a called ticket.
func (a *Announcer) CallText(event calls.Event) string {
	return render(a.opts.CallTemplate, event.TicketCode, event.RoomName, "")
}

// LabText renders the spoken text for a completed lab order.
func (a *Announcer) LabText(event calls.LabEvent) string {
	return render(a.opts.LabTemplate, "", "", event.OrderCode)
}

// Announce highlights every event and, when permitted, speaks each one in
// order. Returns the number of audible outputs issued.
func (a *Announcer) Announce(ctx context.Context, events []calls.Event) int {
	if len(events) == 0 {
		return 0
	}
	ids := make([]string, len(events))
	for i, event := range events {
		ids[i] = event.TicketID
	}
	a.blinks.Add(ids...)
	if !a.permission.Load() {
		return 0
	}
	issued := 0
	for _, event := range events {
		if a.say(ctx, a.CallText(event), logging.Ticket(event.TicketID), logging.Room(event.RoomID)) {
			issued++
		}
	}
	return issued
}

// AnnounceLab highlights every completed order and, when permitted, speaks
// only the first one. An unresolved first order gets a tone.
func (a *Announcer) AnnounceLab(ctx context.Context, events []calls.LabEvent) int {
	if len(events) == 0 {
		return 0
	}
	ids := make([]string, len(events))
	for i, event := range events {
		ids[i] = event.ItemID
	}
	a.blinks.Add(ids...)
	if !a.permission.Load() {
		return 0
	}
	first := events[0]
	if !first.Resolved() {
		return a.beep(ctx)
	}
	if a.say(ctx, a.LabText(first), logging.String("order_id", first.ItemID)) {
		return 1
	}
	return 0
}

// Test speaks arbitrary text through the same gate and fallback as real calls.
func (a *Announcer) Test(ctx context.Context, text string) bool {
	if !a.permission.Load() {
		return false
	}
	return a.say(ctx, text)
}

func (a *Announcer) say(ctx context.Context, text string, attrs ...logging.Attr) bool {
	if a.speechUnsupported.Load() {
		return a.beep(ctx) > 0
	}
	err := a.sink.Speak(ctx, Utterance{Text: text, Lang: a.opts.Lang, Rate: a.opts.Rate, Volume: 1})
	switch {
	case errors.Is(err, ErrUnsupported):
		a.speechUnsupported.Store(true)
		a.logger.Info("speech unsupported; falling back to tone",
			logging.String(logging.FieldEventType, "speech_unsupported"))
		return a.beep(ctx) > 0
	case errors.Is(err, ErrNoAudience):
		a.logger.Debug("announcement not heard", logging.Args(append(attrs, logging.Error(err))...)...)
		return false
	case err != nil:
		attrs = append(attrs,
			logging.Error(err),
			logging.String(logging.FieldImpact, "announcement skipped"),
		)
		logging.WarnWithContext(a.logger, "speech request failed", "speech_failed", attrs...)
		return false
	}
	a.logger.Debug("announcement issued", logging.Args(append(attrs, logging.String("text", text))...)...)
	return true
}

func (a *Announcer) beep(ctx context.Context) int {
	if err := a.sink.Tone(ctx, a.opts.Tone); err != nil {
		a.logger.Debug("tone request failed", logging.Error(err))
		return 0
	}
	return 1
}

func render(template, ticketCode, roomName, orderCode string) string {
	return strings.NewReplacer(
		"{ticketCode}", ticketCode,
		"{roomName}", roomName,
		"{orderCode}", orderCode,
	).Replace(template)
}
