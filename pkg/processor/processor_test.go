package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudgroundcontrol/live-translator/pkg/audio"
	"github.com/cloudgroundcontrol/live-translator/pkg/metrics"
	"github.com/cloudgroundcontrol/live-translator/pkg/room"
	"github.com/cloudgroundcontrol/live-translator/pkg/translation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	json   []interface{}
	binary [][]byte
}

func (f *fakeSender) SendJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.json = append(f.json, v)
	return nil
}

func (f *fakeSender) SendBinary(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.binary = append(f.binary, data)
	return nil
}

func (f *fakeSender) jsonCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.json)
}

func (f *fakeSender) binaryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.binary)
}

type fakePipeline struct {
	mu     sync.Mutex
	calls  [][]float32
	result translation.Result
	err    error

	// When set, TranslateAudio blocks until the channel is closed
	block chan struct{}
}

func (f *fakePipeline) TranslateAudio(ctx context.Context, samples []float32, sourceLang string, targetLang string) (translation.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, samples)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return f.result, f.err
}

func (f *fakePipeline) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Low sample rate keeps test chunks small: threshold is 0.5 s = 200
// bytes, cap is 5 s = 2000 bytes.
const testSampleRate = 100

func newTestProcessor(pipeline Pipeline, mirrorDefault bool) (*Processor, *room.Registry) {
	registry := room.NewRegistry(metrics.New(prometheus.NewRegistry()))
	p := New(Config{
		SampleRate:    testSampleRate,
		MaxWorkers:    2,
		MirrorDefault: mirrorDefault,
		RoomFanout:    true,
	}, pipeline, registry, metrics.New(prometheus.NewRegistry()))
	return p, registry
}

func chunk(n int) []byte {
	return make([]byte, n)
}

func TestMirrorModeEchoesToSenderOnly(t *testing.T) {
	pipeline := &fakePipeline{}
	p, registry := newTestProcessor(pipeline, true)

	s1 := &fakeSender{}
	s2 := &fakeSender{}
	p1 := registry.AddParticipant("room-1", s1, "es")
	registry.AddParticipant("room-1", s2, "fr")

	frame := []byte{1, 2, 3, 4, 5}
	p.ProcessChunk(p1, frame)

	require.Equal(t, 1, s1.binaryCount())
	require.Equal(t, frame, s1.binary[0])
	require.Zero(t, s2.binaryCount())

	// No buffering or pipeline side effects
	require.Zero(t, pipeline.callCount())
}

func TestBelowThresholdDoesNotTrigger(t *testing.T) {
	pipeline := &fakePipeline{}
	p, registry := newTestProcessor(pipeline, false)
	p1 := registry.AddParticipant("room-1", &fakeSender{}, "es")

	// 0.3 s of audio, below the 0.5 s minimum
	p.ProcessChunk(p1, chunk(120))
	require.Zero(t, pipeline.callCount())
}

func TestThresholdTriggersSingleRun(t *testing.T) {
	pipeline := &fakePipeline{result: translation.Result{
		OriginalText:     "hola",
		TranslatedText:   "hello",
		DetectedLanguage: "es",
	}}
	p, registry := newTestProcessor(pipeline, false)

	s1 := &fakeSender{}
	p1 := registry.AddParticipant("room-1", s1, "en")

	// Two 0.3 s chunks: the second crosses the threshold
	p.ProcessChunk(p1, chunk(120))
	p.ProcessChunk(p1, chunk(120))

	require.Eventually(t, func() bool { return s1.jsonCount() == 1 }, time.Second, 10*time.Millisecond)
	require.Equal(t, 1, pipeline.callCount())

	// The run consumed the whole accumulated buffer
	require.Len(t, pipeline.calls[0], 240/audio.BytesPerSample)
}

func TestInFlightRunSuppressesSecondDispatch(t *testing.T) {
	pipeline := &fakePipeline{block: make(chan struct{})}
	p, registry := newTestProcessor(pipeline, false)
	p1 := registry.AddParticipant("room-1", &fakeSender{}, "es")

	p.ProcessChunk(p1, chunk(400))
	require.Eventually(t, func() bool { return pipeline.callCount() == 1 }, time.Second, 10*time.Millisecond)

	// Arrives while in flight: buffered, not processed
	p.ProcessChunk(p1, chunk(400))
	require.Equal(t, 1, pipeline.callCount())

	close(pipeline.block)
}

func TestEmptyResultKeepsBuffer(t *testing.T) {
	pipeline := &fakePipeline{result: translation.Result{}}
	p, registry := newTestProcessor(pipeline, false)

	s1 := &fakeSender{}
	p1 := registry.AddParticipant("room-1", s1, "es")

	p.ProcessChunk(p1, chunk(200))
	require.Eventually(t, func() bool { return pipeline.callCount() == 1 }, time.Second, 10*time.Millisecond)
	require.Zero(t, s1.jsonCount())

	// After the debounce interval, the retained bytes are reprocessed
	// together with the new chunk
	time.Sleep(510 * time.Millisecond)
	p.ProcessChunk(p1, chunk(100))
	require.Eventually(t, func() bool { return pipeline.callCount() == 2 }, time.Second, 10*time.Millisecond)
	require.Len(t, pipeline.calls[1], 300/audio.BytesPerSample)
}

func TestSuccessClearsBuffer(t *testing.T) {
	pipeline := &fakePipeline{result: translation.Result{TranslatedText: "hello"}}
	p, registry := newTestProcessor(pipeline, false)

	s1 := &fakeSender{}
	p1 := registry.AddParticipant("room-1", s1, "es")

	p.ProcessChunk(p1, chunk(200))
	require.Eventually(t, func() bool { return s1.jsonCount() == 1 }, time.Second, 10*time.Millisecond)

	// Buffer restarted from zero: the next run sees only the new bytes
	time.Sleep(510 * time.Millisecond)
	p.ProcessChunk(p1, chunk(240))
	require.Eventually(t, func() bool { return pipeline.callCount() == 2 }, time.Second, 10*time.Millisecond)
	require.Len(t, pipeline.calls[1], 240/audio.BytesPerSample)
}

func TestChunkArrivingInFlightSurvivesSuccess(t *testing.T) {
	pipeline := &fakePipeline{
		result: translation.Result{TranslatedText: "hello"},
		block:  make(chan struct{}),
	}
	p, registry := newTestProcessor(pipeline, false)

	s1 := &fakeSender{}
	p1 := registry.AddParticipant("room-1", s1, "es")

	p.ProcessChunk(p1, chunk(400))
	require.Eventually(t, func() bool { return pipeline.callCount() == 1 }, time.Second, 10*time.Millisecond)

	// Arrives while the first run is in flight
	p.ProcessChunk(p1, chunk(400))

	close(pipeline.block)
	require.Eventually(t, func() bool { return s1.jsonCount() == 1 }, time.Second, 10*time.Millisecond)

	// The success only consumed the snapshot the run saw; the in-flight
	// chunk joins the next run instead of being dropped
	time.Sleep(510 * time.Millisecond)
	p.ProcessChunk(p1, chunk(400))
	require.Eventually(t, func() bool { return pipeline.callCount() == 2 }, time.Second, 10*time.Millisecond)
	require.Len(t, pipeline.calls[1], 800/audio.BytesPerSample)
}

func TestPipelineFailureSendsNothing(t *testing.T) {
	pipeline := &fakePipeline{err: errors.New("model down")}
	p, registry := newTestProcessor(pipeline, false)

	s1 := &fakeSender{}
	p1 := registry.AddParticipant("room-1", s1, "es")

	p.ProcessChunk(p1, chunk(400))
	require.Eventually(t, func() bool { return pipeline.callCount() == 1 }, time.Second, 10*time.Millisecond)

	// Silence on internal failure
	time.Sleep(50 * time.Millisecond)
	require.Zero(t, s1.jsonCount())
	require.Zero(t, s1.binaryCount())
}

func TestSynthesizedAudioGoesToSender(t *testing.T) {
	pipeline := &fakePipeline{result: translation.Result{
		TranslatedText: "hello",
		Audio:          []byte{9, 9, 9},
	}}
	p, registry := newTestProcessor(pipeline, false)

	s1 := &fakeSender{}
	s2 := &fakeSender{}
	p1 := registry.AddParticipant("room-1", s1, "es")
	registry.AddParticipant("room-1", s2, "fr")

	p.ProcessChunk(p1, chunk(400))
	require.Eventually(t, func() bool { return s1.binaryCount() == 1 }, time.Second, 10*time.Millisecond)
	require.Equal(t, []byte{9, 9, 9}, s1.binary[0])

	// Other participants get the subtitle frame, not the audio
	require.Eventually(t, func() bool { return s2.jsonCount() == 1 }, time.Second, 10*time.Millisecond)
	require.Zero(t, s2.binaryCount())
}

func TestParticipantMirrorOverride(t *testing.T) {
	pipeline := &fakePipeline{}
	p, registry := newTestProcessor(pipeline, false)

	s1 := &fakeSender{}
	p1 := registry.AddParticipant("room-1", s1, "es")
	p1.SetMirror(true)

	p.ProcessChunk(p1, chunk(400))
	require.Equal(t, 1, s1.binaryCount())
	require.Zero(t, pipeline.callCount())
}

func TestToggleMirror(t *testing.T) {
	p, _ := newTestProcessor(&fakePipeline{}, false)

	require.False(t, p.MirrorDefault())
	require.True(t, p.ToggleMirror(nil))
	require.False(t, p.ToggleMirror(nil))

	enabled := true
	require.True(t, p.ToggleMirror(&enabled))

	disabled := false
	require.False(t, p.ToggleMirror(&disabled))
}

func TestToggleMirrorConcurrentFlips(t *testing.T) {
	p, _ := newTestProcessor(&fakePipeline{}, false)

	// An even number of flips must land back on the initial state, even
	// when the requests race
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.ToggleMirror(nil)
		}()
	}
	wg.Wait()
	require.False(t, p.MirrorDefault())
}
