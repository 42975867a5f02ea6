package config

// DefaultQueueType selects the examination queue when no valid queue type is given.
const DefaultQueueType = 2

const (
	defaultBaseURL             = "http://localhost:5106/api"
	defaultMode                = ModeQueue
	defaultPollIntervalSeconds = 4
	defaultBlinkSeconds        = 5
	defaultHospitalName        = "Bệnh viện"
	defaultSink                = SinkBrowser
	defaultLocale              = "vi-VN"
	defaultRate                = 0.9
	defaultCallTemplate        = "Mời số {ticketCode} vào {roomName}"
	defaultLabTemplate         = "Kết quả xét nghiệm mã {orderCode} đã hoàn thành"
	defaultSpeechCommand       = "espeak-ng"
	defaultToneCommand         = "play"
	defaultToneFrequencyHz     = 880
	defaultToneDurationMS      = 200
	defaultToneGain            = 0.3
	defaultLogDir              = "~/.local/share/queuedisplay/logs"
	defaultAPIBind             = "127.0.0.1:7480"
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
	defaultLogKeepRuns         = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Backend: Backend{
			BaseURL: defaultBaseURL,
		},
		Display: Display{
			QueueType:           DefaultQueueType,
			Mode:                defaultMode,
			PollIntervalSeconds: defaultPollIntervalSeconds,
			HospitalName:        defaultHospitalName,
			BlinkSeconds:        defaultBlinkSeconds,
		},
		Announce: Announce{
			Sink:            defaultSink,
			Locale:          defaultLocale,
			Rate:            defaultRate,
			CallTemplate:    defaultCallTemplate,
			LabTemplate:     defaultLabTemplate,
			SpeechCommand:   defaultSpeechCommand,
			ToneCommand:     defaultToneCommand,
			ToneFrequencyHz: defaultToneFrequencyHz,
			ToneDurationMS:  defaultToneDurationMS,
			ToneGain:        defaultToneGain,
		},
		Paths: Paths{
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Calls:          false,
			Outages:        true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
			KeepRuns:      defaultLogKeepRuns,
		},
	}
}
