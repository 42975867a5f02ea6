package announce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"queuedisplay/internal/logging"
	"queuedisplay/internal/services"
)

const (
	execQueueSize      = 32
	espeakDefaultWPM   = 175
	espeakDefaultLevel = 100
)

// ErrQueueFull is returned when announcements arrive faster than they play.
var ErrQueueFull = errors.New("announcement queue full")

// ExecOptions configures the local command sink.
type ExecOptions struct {
	SpeechCommand string
	ToneCommand   string
}

type execJob struct {
	name string
	args []string
}

// ExecSink plays announcements through local commands (espeak-ng and sox
// play). Requests are queued and played one at a time in submission order.
type ExecSink struct {
	speech   string
	tone     string
	logger   *slog.Logger
	jobs     chan execJob
	runCmd   func(ctx context.Context, name string, args ...string) error
	lookPath func(string) (string, error)
	once     sync.Once
}

// NewExecSink resolves the configured binaries once. A missing speech binary
// makes Speak return ErrUnsupported; a missing tone binary makes Tone a no-op.
func NewExecSink(opts ExecOptions, logger *slog.Logger) *ExecSink {
	return newExecSink(opts, logger, exec.LookPath, func(ctx context.Context, name string, args ...string) error {
		return exec.CommandContext(ctx, name, args...).Run()
	})
}

func newExecSink(opts ExecOptions, logger *slog.Logger, lookPath func(string) (string, error), run func(context.Context, string, ...string) error) *ExecSink {
	s := &ExecSink{
		logger:   logging.NewComponentLogger(logger, "exec-sink"),
		jobs:     make(chan execJob, execQueueSize),
		lookPath: lookPath,
		runCmd:   run,
	}
	s.speech = s.resolve(opts.SpeechCommand)
	s.tone = s.resolve(opts.ToneCommand)
	return s
}

func (s *ExecSink) resolve(command string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		return ""
	}
	path, err := s.lookPath(command)
	if err != nil {
		s.logger.Info("audio command not found; output disabled",
			logging.String("command", command),
			logging.String(logging.FieldEventType, "audio_command_missing"),
		)
		return ""
	}
	return path
}

// SpeechAvailable reports whether a speech binary was found.
func (s *ExecSink) SpeechAvailable() bool {
	return s.speech != ""
}

// Run plays queued jobs until ctx is cancelled. It is safe to call once.
func (s *ExecSink) Run(ctx context.Context) {
	s.once.Do(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-s.jobs:
				if err := s.runCmd(ctx, job.name, job.args...); err != nil && ctx.Err() == nil {
					err = services.Wrap(services.ErrExternalTool, "exec-sink", "play", job.name, err)
					logging.WarnWithContext(s.logger, "audio command failed", "audio_command_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, services.Hint(err)),
						logging.String(logging.FieldImpact, "announcement was not heard"),
					)
				}
			}
		}
	})
}

// Speak queues a speech request.
func (s *ExecSink) Speak(_ context.Context, utterance Utterance) error {
	if s.speech == "" {
		return ErrUnsupported
	}
	return s.enqueue(execJob{name: s.speech, args: speechArgs(utterance)})
}

// Tone queues a beep.
func (s *ExecSink) Tone(_ context.Context, tone Tone) error {
	if s.tone == "" {
		return nil
	}
	return s.enqueue(execJob{name: s.tone, args: toneArgs(tone)})
}

func (s *ExecSink) enqueue(job execJob) error {
	select {
	case s.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// speechArgs maps an utterance onto espeak-ng flags: voice from the base
// language, words per minute scaled by Rate, amplitude scaled by Volume.
func speechArgs(u Utterance) []string {
	voice := "vi"
	if tag, err := language.Parse(u.Lang); err == nil {
		base, _ := tag.Base()
		voice = base.String()
	}
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	volume := u.Volume
	if volume < 0 {
		volume = 0
	}
	return []string{
		"-v", voice,
		"-s", strconv.Itoa(int(math.Round(espeakDefaultWPM * rate))),
		"-a", strconv.Itoa(int(math.Round(espeakDefaultLevel * volume))),
		u.Text,
	}
}

// toneArgs builds a sox play invocation for a sine beep.
func toneArgs(t Tone) []string {
	return []string{
		"-q", "-n", "synth",
		strconv.FormatFloat(t.Duration.Seconds(), 'f', -1, 64),
		"sine", strconv.Itoa(t.FrequencyHz),
		"vol", strconv.FormatFloat(t.Gain, 'f', -1, 64),
	}
}

func (s *ExecSink) String() string {
	return fmt.Sprintf("exec(speech=%q tone=%q)", s.speech, s.tone)
}
