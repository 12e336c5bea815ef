package room

import (
	"github.com/cloudgroundcontrol/live-translator/pkg/translation"
	"github.com/labstack/gommon/log"
)

type participantsUpdate struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type translationResult struct {
	Type           string `json:"type"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	Language       string `json:"language"`
	ParticipantID  string `json:"participant_id"`
}

// BroadcastParticipantCount sends the current live count to every
// connection in the room. A failed delivery is logged and skipped; it
// never blocks the remaining connections or the caller.
func (r *Registry) BroadcastParticipantCount(roomID string) {
	members := r.snapshot(roomID)
	if members == nil {
		return
	}

	msg := participantsUpdate{Type: "participants_update", Count: len(members)}
	for _, p := range members {
		if err := p.SendJSON(msg); err != nil {
			r.metrics.BroadcastErrors.Inc()
			log.Warnf("cannot send participant count | error: %v, room: %s, participant: %s", err, roomID, p.ID)
		}
	}
}

// BroadcastTranslation dispatches a translation result to the room. The
// originating participant always receives it; with fanout enabled every
// other participant gets it as subtitles too. If the originator already
// left the room, the result is discarded.
func (r *Registry) BroadcastTranslation(roomID string, from *Participant, result translation.Result, fanout bool) {
	if !r.Contains(roomID, from.ID) {
		log.Debugf("discarding result for departed participant | room: %s, participant: %s", roomID, from.ID)
		return
	}

	msg := translationResult{
		Type:           "translation_result",
		OriginalText:   result.OriginalText,
		TranslatedText: result.TranslatedText,
		Language:       result.DetectedLanguage,
		ParticipantID:  from.ID,
	}

	recipients := []*Participant{from}
	if fanout {
		recipients = r.snapshot(roomID)
	}

	for _, p := range recipients {
		if err := p.SendJSON(msg); err != nil {
			r.metrics.BroadcastErrors.Inc()
			log.Warnf("cannot send translation result | error: %v, room: %s, participant: %s", err, roomID, p.ID)
			continue
		}
	}
	r.metrics.TranslationsBroadcast.Inc()
}
