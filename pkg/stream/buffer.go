package stream

import "sync"

// Key identifies one participant's stream within a room. Structured keys
// avoid the collision risk of concatenated string keys.
type Key struct {
	Room        string
	Participant string
}

// Buffers holds the per-participant sliding-window audio accumulators.
// Each buffer is capped: once an append pushes it past the cap, only the
// trailing cap-sized window is kept, oldest bytes dropped first.
type Buffers struct {
	maxBytes int

	mu      sync.Mutex
	buffers map[Key][]byte
}

func NewBuffers(maxBytes int) *Buffers {
	return &Buffers{
		maxBytes: maxBytes,
		buffers:  make(map[Key][]byte),
	}
}

// Append adds a chunk to the keyed accumulator and returns a copy of the
// full (possibly trimmed) content. Returning the view here avoids a
// separate read racing with the next append.
func (b *Buffers) Append(key Key, chunk []byte) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := append(b.buffers[key], chunk...)
	if len(buf) > b.maxBytes {
		buf = buf[len(buf)-b.maxBytes:]
	}
	b.buffers[key] = buf

	view := make([]byte, len(buf))
	copy(view, buf)
	return view
}

// Consume trims the first n bytes from the accumulator, leaving bytes
// appended after the caller's snapshot in place. If the sliding window
// evicted part of the snapshot in the meantime the remainder is still
// capped at what was appended since.
func (b *Buffers) Consume(key Key, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.buffers[key]
	if !ok {
		return
	}
	if n >= len(buf) {
		b.buffers[key] = nil
		return
	}
	b.buffers[key] = buf[n:]
}

// Clear resets the accumulator, dropping everything buffered so far.
func (b *Buffers) Clear(key Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.buffers[key]; ok {
		b.buffers[key] = nil
	}
}

// Remove drops the accumulator entirely when the participant leaves.
func (b *Buffers) Remove(key Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.buffers, key)
}

// Len returns the current buffered byte count for the key.
func (b *Buffers) Len(key Key) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffers[key])
}
