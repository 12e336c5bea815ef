package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds the process configuration, sourced from environment
// variables with sensible defaults.
type Config struct {
	Port     string
	LogLevel string

	// Speech model server
	WhisperEndpoint      string
	WhisperAPIKey        string
	WhisperTimeout       time.Duration
	WhisperMaxConcurrent int

	// Optional speech synthesis; empty endpoint means text-only results
	TTSEndpoint string
	TTSAPIKey   string
	TTSVoice    string

	// Audio and processing
	SampleRate         int
	MaxPipelineWorkers int

	// Mirror mode default and translation fan-out policy
	MirrorDefault bool
	RoomFanout    bool
}

var ErrMissingWhisperEndpoint = errors.New("WHISPER_ENDPOINT not set")

// Load reads configuration from the environment.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WHISPER_TIMEOUT", "30s")
	v.SetDefault("WHISPER_MAX_CONCURRENT", 4)
	v.SetDefault("SAMPLE_RATE", 16000)
	v.SetDefault("MAX_PIPELINE_WORKERS", 4)
	v.SetDefault("MIRROR_DEFAULT", true)
	v.SetDefault("ROOM_FANOUT", true)

	cfg := Config{
		Port:                 v.GetString("APP_PORT"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		WhisperEndpoint:      v.GetString("WHISPER_ENDPOINT"),
		WhisperAPIKey:        v.GetString("WHISPER_API_KEY"),
		WhisperTimeout:       v.GetDuration("WHISPER_TIMEOUT"),
		WhisperMaxConcurrent: v.GetInt("WHISPER_MAX_CONCURRENT"),
		TTSEndpoint:          v.GetString("TTS_ENDPOINT"),
		TTSAPIKey:            v.GetString("TTS_API_KEY"),
		TTSVoice:             v.GetString("TTS_VOICE"),
		SampleRate:           v.GetInt("SAMPLE_RATE"),
		MaxPipelineWorkers:   v.GetInt("MAX_PIPELINE_WORKERS"),
		MirrorDefault:        v.GetBool("MIRROR_DEFAULT"),
		RoomFanout:           v.GetBool("ROOM_FANOUT"),
	}

	if cfg.WhisperEndpoint == "" {
		return Config{}, ErrMissingWhisperEndpoint
	}
	return cfg, nil
}
