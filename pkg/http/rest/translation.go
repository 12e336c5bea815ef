package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Translator is the text-translation side of the orchestrator.
type Translator interface {
	TranslateText(ctx context.Context, text string, sourceLang string, targetLang string) (string, error)
	Languages() map[string]string
}

// MirrorToggler flips or sets the process-wide mirror flag.
type MirrorToggler interface {
	ToggleMirror(enabled *bool) bool
}

// RoomCreator mints fresh room identifiers.
type RoomCreator interface {
	CreateRoom() string
}

// SystemInfo describes the running backend configuration.
type SystemInfo struct {
	APIVersion         string `json:"api_version"`
	Backend            string `json:"backend"`
	PrivilegedLanguage string `json:"privileged_language"`
	SampleRate         int    `json:"sample_rate"`
	SynthesisEnabled   bool   `json:"synthesis_enabled"`
}

type translationController struct {
	rooms      RoomCreator
	translator Translator
	mirror     MirrorToggler
	info       SystemInfo
}

func NewTranslationController(rooms RoomCreator, translator Translator, mirror MirrorToggler, info SystemInfo) translationController {
	return translationController{rooms: rooms, translator: translator, mirror: mirror, info: info}
}

func (tc *translationController) CreateRoom(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"room_id": tc.rooms.CreateRoom()})
}

func (tc *translationController) AvailableLanguages(c echo.Context) error {
	languages := tc.translator.Languages()
	if len(languages) == 0 {
		// Minimal set when the collaborator reports nothing
		languages = map[string]string{"en": "English", "es": "Spanish", "fr": "French"}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"languages": languages})
}

type TranslateTextRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

var ErrEmptyFields = errors.New("one or more fields is empty")

func (tc *translationController) TranslateText(c echo.Context) error {
	// Bind request data
	data := new(TranslateTextRequest)
	if err := c.Bind(data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	// Sanitise request
	if data.Text == "" || data.SourceLang == "" || data.TargetLang == "" {
		return echo.NewHTTPError(http.StatusBadRequest, ErrEmptyFields)
	}

	// This is the one path where internal failures surface to the caller
	translated, err := tc.translator.TranslateText(c.Request().Context(), data.Text, data.SourceLang, data.TargetLang)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"translated_text": translated})
}

func (tc *translationController) ToggleMirrorMode(c echo.Context) error {
	var enabled *bool
	if raw := c.QueryParam("enabled"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err)
		}
		enabled = &parsed
	}
	return c.JSON(http.StatusOK, map[string]bool{"mirror_mode": tc.mirror.ToggleMirror(enabled)})
}

func (tc *translationController) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":      "ok",
		"api_version": tc.info.APIVersion,
		"websocket":   "enabled",
	})
}

func (tc *translationController) SystemInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, tc.info)
}
