package room

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cloudgroundcontrol/live-translator/pkg/metrics"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// Registry maps room identifiers to their connected participants. It is
// the one structure mutated from multiple connection loops concurrently,
// so every access goes through the registry lock. Rooms are created on
// first join and garbage-collected when their last participant leaves.
type Registry struct {
	lock    sync.Mutex
	rooms   map[string]map[string]*Participant
	metrics *metrics.Metrics
}

func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		rooms:   make(map[string]map[string]*Participant),
		metrics: m,
	}
}

// CreateRoom generates a fresh room identifier. The room itself is only
// materialised when the first participant joins.
func (r *Registry) CreateRoom() string {
	r.lock.Lock()
	defer r.lock.Unlock()

	for {
		id := fmt.Sprintf("room-%s", strings.ToLower(shortuuid.New())[:6])
		if _, live := r.rooms[id]; !live {
			return id
		}
	}
}

// AddParticipant registers a connection in a room, creating the room on
// first use, and returns the new participant record.
func (r *Registry) AddParticipant(roomID string, conn Sender, targetLang string) *Participant {
	p := &Participant{
		ID:         uuid.NewString(),
		RoomID:     roomID,
		TargetLang: targetLang,
		conn:       conn,
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]*Participant)
		r.rooms[roomID] = members
		r.metrics.ActiveRooms.Inc()
	}
	members[p.ID] = p
	r.metrics.ActiveParticipants.Inc()
	return p
}

// RemoveParticipant drops the participant's registry entry and removes
// the room once empty. Unknown rooms and participants are no-ops, so the
// call is safe for connections that never fully registered and is
// idempotent on repeat.
func (r *Registry) RemoveParticipant(roomID string, participantID string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	if _, ok = members[participantID]; !ok {
		return
	}

	delete(members, participantID)
	r.metrics.ActiveParticipants.Dec()

	if len(members) == 0 {
		delete(r.rooms, roomID)
		r.metrics.ActiveRooms.Dec()
	}
}

// ParticipantCount returns the live count for a room, zero if unknown.
func (r *Registry) ParticipantCount(roomID string) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.rooms[roomID])
}

// Contains reports whether the participant is still registered.
func (r *Registry) Contains(roomID string, participantID string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	_, ok = members[participantID]
	return ok
}

// snapshot returns a consistent membership view for fan-out. Deliveries
// happen outside the lock so a slow connection cannot stall the registry.
func (r *Registry) snapshot(roomID string) []*Participant {
	r.lock.Lock()
	defer r.lock.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]*Participant, 0, len(members))
	for _, p := range members {
		out = append(out, p)
	}
	return out
}
