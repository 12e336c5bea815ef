package processor

import (
	"context"
	"time"

	"github.com/cloudgroundcontrol/live-translator/pkg/audio"
	"github.com/cloudgroundcontrol/live-translator/pkg/metrics"
	"github.com/cloudgroundcontrol/live-translator/pkg/room"
	"github.com/cloudgroundcontrol/live-translator/pkg/stream"
	"github.com/cloudgroundcontrol/live-translator/pkg/translation"
	"github.com/labstack/gommon/log"
	"go.uber.org/atomic"
)

// Pipeline is the translation side of the processor, satisfied by
// translation.Orchestrator.
type Pipeline interface {
	TranslateAudio(ctx context.Context, samples []float32, sourceLang string, targetLang string) (translation.Result, error)
}

const (
	bufferSeconds     = 5
	minProcessSeconds = 0.5
)

// Config tunes the processing layer.
type Config struct {
	SampleRate    int
	MaxWorkers    int
	MirrorDefault bool
	RoomFanout    bool
}

// Processor routes inbound audio chunks: mirror mode echoes them
// straight back, translation mode feeds the buffer/gate pair and
// dispatches pipeline runs onto a bounded worker pool so one
// participant's slow run never blocks another's connection loop.
type Processor struct {
	config   Config
	pipeline Pipeline
	registry *room.Registry
	buffers  *stream.Buffers
	gate     *stream.Gate
	metrics  *metrics.Metrics

	// Process-wide mirror default; participants may override it
	mirror *atomic.Bool

	workers chan struct{}
}

func New(config Config, pipeline Pipeline, registry *room.Registry, m *metrics.Metrics) *Processor {
	if config.SampleRate <= 0 {
		config.SampleRate = audio.SampleRate
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 4
	}

	maxBytes := config.SampleRate * audio.BytesPerSample * bufferSeconds
	minBytes := int(float64(config.SampleRate*audio.BytesPerSample) * minProcessSeconds)

	return &Processor{
		config:   config,
		pipeline: pipeline,
		registry: registry,
		buffers:  stream.NewBuffers(maxBytes),
		gate:     stream.NewGate(minBytes, 500*time.Millisecond),
		metrics:  m,
		mirror:   atomic.NewBool(config.MirrorDefault),
		workers:  make(chan struct{}, config.MaxWorkers),
	}
}

// MirrorDefault returns the process-wide mirror flag.
func (p *Processor) MirrorDefault() bool {
	return p.mirror.Load()
}

// ToggleMirror sets the process-wide mirror flag, or flips it when no
// explicit value is given, and returns the resulting state.
func (p *Processor) ToggleMirror(enabled *bool) bool {
	if enabled != nil {
		p.mirror.Store(*enabled)
		return *enabled
	}
	return !p.mirror.Toggle()
}

// ProcessChunk handles one inbound binary frame for a participant. It is
// called from the participant's connection loop, which is the only
// writer of that participant's buffer and gate entries.
func (p *Processor) ProcessChunk(part *room.Participant, chunk []byte) {
	p.metrics.ChunksReceived.Inc()

	// Mirror mode: echo immediately, no buffering, no debounce
	if part.Mirror(p.mirror.Load()) {
		p.metrics.ChunksMirrored.Inc()
		if err := part.SendBinary(chunk); err != nil {
			log.Errorf("cannot mirror audio | error: %v, participant: %s", err, part.ID)
		}
		return
	}

	key := stream.Key{Room: part.RoomID, Participant: part.ID}
	buffered := p.buffers.Append(key, chunk)

	if !p.gate.ShouldProcess(key, len(buffered)) {
		return
	}
	// Claim the in-flight flag before leaving the connection loop so a
	// chunk racing the completion callback cannot start a second run
	if !p.gate.Begin(key) {
		return
	}
	go p.run(key, part, buffered)
}

func (p *Processor) run(key stream.Key, part *room.Participant, buffered []byte) {
	defer p.gate.End(key)

	// Bounded pool keeps collaborator calls off the connection loops
	p.workers <- struct{}{}
	defer func() { <-p.workers }()

	samples, err := audio.DecodeFloat32(buffered)
	if err != nil {
		log.Warnf("dropping malformed buffer | error: %v, participant: %s", err, part.ID)
		p.buffers.Clear(key)
		return
	}

	p.metrics.PipelineRuns.Inc()
	start := time.Now()
	result, err := p.pipeline.TranslateAudio(context.Background(), samples, "", part.TargetLang)
	p.metrics.PipelineDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		p.metrics.PipelineFailures.Inc()
		log.Errorf("pipeline run failed | error: %v, room: %s, participant: %s", err, part.RoomID, part.ID)
		return
	}
	if result.Empty() {
		// Buffer intentionally kept: the next run retries with more
		// context until the sliding window evicts the stale audio
		p.metrics.EmptyResults.Inc()
		return
	}

	// Trim only what this run saw: chunks that arrived while the run was
	// in flight stay buffered for the next run
	p.buffers.Consume(key, len(buffered))

	if len(result.Audio) > 0 {
		if err = part.SendBinary(result.Audio); err != nil {
			log.Errorf("cannot send synthesized audio | error: %v, participant: %s", err, part.ID)
		}
	}
	p.registry.BroadcastTranslation(part.RoomID, part, result, p.config.RoomFanout)
}

// RemoveParticipant drops the buffer and gate state for a departing
// participant. An in-flight run for the key simply finishes and its
// result is discarded by the registry lookup.
func (p *Processor) RemoveParticipant(roomID string, participantID string) {
	key := stream.Key{Room: roomID, Participant: participantID}
	p.buffers.Remove(key)
	p.gate.Remove(key)
}
