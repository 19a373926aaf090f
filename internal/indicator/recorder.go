package indicator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Event is one recorded output call.
type Event struct {
	Kind string
	Text string
}

// Recorder is an Output that keeps every call in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(kind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: kind, Text: text})
}

func (r *Recorder) Speak(_ context.Context, text string)   { r.add("speak", text) }
func (r *Recorder) Braille(_ context.Context, text string) { r.add("braille", text) }

func (r *Recorder) Tone(_ context.Context, frequencyHz float64, duration time.Duration) {
	r.add("tone", fmt.Sprintf("%.0f/%d", frequencyHz, duration.Milliseconds()))
}

func (r *Recorder) ShowMessage(_ context.Context, title, body string, _ ...string) {
	r.add("message", title+"\n"+body)
}

// Events returns a copy of the recorded calls.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Spoken returns the texts passed to Speak.
func (r *Recorder) Spoken() []string {
	var out []string
	for _, e := range r.Events() {
		if e.Kind == "speak" {
			out = append(out, e.Text)
		}
	}
	return out
}

// Reset clears recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
