package main

import (
	"net/http"
	"strings"

	"github.com/cloudgroundcontrol/live-translator/pkg/config"
	"github.com/cloudgroundcontrol/live-translator/pkg/http/rest"
	"github.com/cloudgroundcontrol/live-translator/pkg/http/ws"
	"github.com/cloudgroundcontrol/live-translator/pkg/metrics"
	"github.com/cloudgroundcontrol/live-translator/pkg/processor"
	"github.com/cloudgroundcontrol/live-translator/pkg/room"
	"github.com/cloudgroundcontrol/live-translator/pkg/speech"
	"github.com/cloudgroundcontrol/live-translator/pkg/translation"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration from the environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Get log verbosity
	var verbosity log.Lvl
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		verbosity = log.DEBUG
	case "info":
		verbosity = log.INFO
	case "warn":
		verbosity = log.WARN
	case "error":
		fallthrough
	default:
		verbosity = log.ERROR
	}
	log.SetLevel(verbosity)
	log.SetHeader("(${short_file}:${line}) ${time_rfc3339} ${level}: ")

	// Create the speech model client
	model, err := speech.NewWhisperClient(speech.WhisperConfig{
		Endpoint:      cfg.WhisperEndpoint,
		APIKey:        cfg.WhisperAPIKey,
		SampleRate:    cfg.SampleRate,
		Timeout:       cfg.WhisperTimeout,
		MaxConcurrent: cfg.WhisperMaxConcurrent,
	})
	if err != nil {
		log.Fatal(err)
	}

	// Create the synthesizer only if an endpoint is configured
	var synth speech.Synthesizer
	if cfg.TTSEndpoint != "" {
		synth, err = speech.NewTTSClient(speech.TTSConfig{
			Endpoint: cfg.TTSEndpoint,
			APIKey:   cfg.TTSAPIKey,
			Voice:    cfg.TTSVoice,
		})
		if err != nil {
			log.Fatal(err)
		}
	}

	// Initialise the orchestration layer
	m := metrics.New(prometheus.DefaultRegisterer)
	registry := room.NewRegistry(m)
	orchestrator := translation.NewOrchestrator(model, synth, cfg.SampleRate)
	proc := processor.New(processor.Config{
		SampleRate:    cfg.SampleRate,
		MaxWorkers:    cfg.MaxPipelineWorkers,
		MirrorDefault: cfg.MirrorDefault,
		RoomFanout:    cfg.RoomFanout,
	}, orchestrator, registry, m)

	// Initialise controllers
	controller := rest.NewTranslationController(registry, orchestrator, proc, rest.SystemInfo{
		APIVersion:         "1.0",
		Backend:            "whisper",
		PrivilegedLanguage: speech.PrivilegedLanguage,
		SampleRate:         cfg.SampleRate,
		SynthesisEnabled:   synth != nil,
	})
	wsHandler := ws.NewHandler(registry, proc)

	// Initialise server
	e := echo.New()

	// Attach middlewares
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "(${host}) ${time_rfc3339} ${level}: ${method} ${uri} ${status} ${error}\n",
	}))
	e.Use(middleware.CORS())

	// Attach handlers
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Welcome to the live translator")
	})
	e.GET("/health", controller.Health)
	e.GET("/system-info", controller.SystemInfo)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Attach translation handlers
	e.GET("/create-room", controller.CreateRoom)
	e.GET("/available-languages", controller.AvailableLanguages)
	e.GET("/toggle-mirror-mode", controller.ToggleMirrorMode)
	e.POST("/translate-text", controller.TranslateText)

	// Attach WebSocket handlers
	e.GET("/ws/test", wsHandler.Test)
	e.GET("/ws/:room_id", wsHandler.Serve)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
