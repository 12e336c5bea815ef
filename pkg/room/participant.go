package room

import "sync"

// Sender is the outbound half of a participant's transport. The
// WebSocket layer provides the real implementation; tests substitute
// in-memory fakes.
type Sender interface {
	SendJSON(v interface{}) error
	SendBinary(data []byte) error
}

// Participant is one connected client within a room. The registry owns
// the record; the RoomID field is a back-reference only.
type Participant struct {
	ID         string
	RoomID     string
	TargetLang string

	conn Sender

	// Per-participant mirror override. When unset, the process-wide
	// default applies.
	mu        sync.Mutex
	mirrorSet bool
	mirror    bool
}

func (p *Participant) SendJSON(v interface{}) error {
	return p.conn.SendJSON(v)
}

func (p *Participant) SendBinary(data []byte) error {
	return p.conn.SendBinary(data)
}

// SetMirror pins the participant's mirror mode, detaching it from the
// process-wide default.
func (p *Participant) SetMirror(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mirrorSet = true
	p.mirror = enabled
}

// Mirror resolves the participant's effective mirror mode given the
// process-wide default.
func (p *Participant) Mirror(processDefault bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mirrorSet {
		return p.mirror
	}
	return processDefault
}
