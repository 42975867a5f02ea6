package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeBackend()
	c.normalizeDisplay()
	c.normalizeAnnounce()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeBackend() {
	if value, ok := os.LookupEnv("QUEUEDISPLAY_API_URL"); ok && strings.TrimSpace(value) != "" {
		c.Backend.BaseURL = value
	}
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaultBaseURL
	}
	if c.Backend.RequestTimeoutSeconds < 0 {
		c.Backend.RequestTimeoutSeconds = 0
	}
}

func (c *Config) normalizeDisplay() {
	if len(c.Display.Rooms) == 0 {
		if value, ok := os.LookupEnv("QUEUEDISPLAY_ROOMS"); ok {
			c.Display.Rooms = ParseRooms(value)
		}
	}
	c.Display.Rooms = normalizeRooms(c.Display.Rooms)
	if c.Display.QueueType <= 0 {
		c.Display.QueueType = DefaultQueueType
	}
	c.Display.Mode = strings.ToLower(strings.TrimSpace(c.Display.Mode))
	if c.Display.Mode == "" {
		c.Display.Mode = defaultMode
	}
	if c.Display.PollIntervalSeconds <= 0 {
		c.Display.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Display.BlinkSeconds <= 0 {
		c.Display.BlinkSeconds = defaultBlinkSeconds
	}
	c.Display.HospitalName = strings.TrimSpace(c.Display.HospitalName)
	if c.Display.HospitalName == "" {
		c.Display.HospitalName = defaultHospitalName
	}
}

func (c *Config) normalizeAnnounce() {
	c.Announce.Sink = strings.ToLower(strings.TrimSpace(c.Announce.Sink))
	if c.Announce.Sink == "" {
		c.Announce.Sink = defaultSink
	}
	c.Announce.Locale = strings.TrimSpace(c.Announce.Locale)
	if c.Announce.Locale == "" {
		c.Announce.Locale = defaultLocale
	}
	if c.Announce.Rate <= 0 {
		c.Announce.Rate = defaultRate
	}
	if strings.TrimSpace(c.Announce.CallTemplate) == "" {
		c.Announce.CallTemplate = defaultCallTemplate
	}
	if strings.TrimSpace(c.Announce.LabTemplate) == "" {
		c.Announce.LabTemplate = defaultLabTemplate
	}
	c.Announce.SpeechCommand = strings.TrimSpace(c.Announce.SpeechCommand)
	c.Announce.ToneCommand = strings.TrimSpace(c.Announce.ToneCommand)
	if c.Announce.ToneFrequencyHz <= 0 {
		c.Announce.ToneFrequencyHz = defaultToneFrequencyHz
	}
	if c.Announce.ToneDurationMS <= 0 {
		c.Announce.ToneDurationMS = defaultToneDurationMS
	}
	if c.Announce.ToneGain <= 0 {
		c.Announce.ToneGain = defaultToneGain
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if value, ok := os.LookupEnv("QUEUEDISPLAY_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIToken = value
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.FileLevel = strings.ToLower(strings.TrimSpace(c.Logging.FileLevel))
	if c.Logging.KeepRuns < 0 {
		c.Logging.KeepRuns = 0
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
