package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable. An empty room list is valid:
// the display then reports the missing configuration state instead of polling.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateDisplay(); err != nil {
		return err
	}
	if err := c.validateAnnounce(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBackend() error {
	parsed, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("backend.base_url must use http or https, got %q", c.Backend.BaseURL)
	}
	if parsed.Host == "" {
		return errors.New("backend.base_url must include a host")
	}
	return nil
}

func (c *Config) validateDisplay() error {
	switch c.Display.Mode {
	case ModeQueue, ModeLab:
	default:
		return fmt.Errorf("display.mode must be %q or %q, got %q", ModeQueue, ModeLab, c.Display.Mode)
	}
	return ensurePositiveMap(map[string]int{
		"display.queue_type":            c.Display.QueueType,
		"display.poll_interval_seconds": c.Display.PollIntervalSeconds,
		"display.blink_seconds":         c.Display.BlinkSeconds,
	})
}

func (c *Config) validateAnnounce() error {
	switch c.Announce.Sink {
	case SinkBrowser, SinkExec, SinkNone:
	default:
		return fmt.Errorf("announce.sink must be one of browser, exec, none; got %q", c.Announce.Sink)
	}
	if _, err := language.Parse(c.Announce.Locale); err != nil {
		return fmt.Errorf("announce.locale %q is not a valid language tag: %w", c.Announce.Locale, err)
	}
	if c.Announce.Rate > 10 {
		return errors.New("announce.rate must be at most 10")
	}
	if c.Announce.ToneGain > 1 {
		return errors.New("announce.tone_gain must be between 0 and 1")
	}
	if !strings.Contains(c.Announce.CallTemplate, "{ticketCode}") {
		return errors.New("announce.call_template must reference {ticketCode}")
	}
	if c.Announce.Sink == SinkExec && c.Announce.SpeechCommand == "" && c.Announce.ToneCommand == "" {
		return errors.New("announce.speech_command or announce.tone_command must be set when announce.sink is exec")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
