// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"sync"
)

// Event is one progress update for a running analysis job.
type Event struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Pct     int    `json:"pct"`
	RunID   int64  `json:"run_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// terminal reports whether the event ends the job's event stream.
func (e Event) terminal() bool {
	return e.Stage == "done" || e.Stage == "error"
}

// Job tracks one analysis request from the dashboard.
type Job struct {
	ID    int64  `json:"id"`
	Query string `json:"query"`
	Last  Event  `json:"last"`
}

// Broker assigns job IDs and fans progress events out to websocket
// subscribers. Events published before a subscriber attaches are not
// replayed except for the latest one, which is delivered on subscribe.
type Broker struct {
	mu     sync.Mutex
	nextID int64
	jobs   map[int64]*Job
	subs   map[int64][]chan Event
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		jobs: make(map[int64]*Job),
		subs: make(map[int64][]chan Event),
	}
}

// Create registers a new job for the query.
func (b *Broker) Create(query string) *Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	job := &Job{ID: b.nextID, Query: query}
	b.jobs[job.ID] = job
	return job
}

// Get returns the job with the given ID, or nil.
func (b *Broker) Get(id int64) *Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jobs[id]
}

// Publish records the event as the job's latest state and delivers it to
// all subscribers. Terminal events close the subscriber channels.
func (b *Broker) Publish(jobID int64, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if job, ok := b.jobs[jobID]; ok {
		job.Last = ev
	}
	for _, ch := range b.subs[jobID] {
		if ev.terminal() {
			// The terminal event carries the run ID; every subscriber must
			// see it. Evict buffered progress events until it fits. Publish
			// is the only sender, so each pass either delivers or frees a
			// slot.
			for delivered := false; !delivered; {
				select {
				case ch <- ev:
					delivered = true
				case <-ch:
				}
			}
			close(ch)
			continue
		}
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop the event rather than block the pipeline.
		}
	}
	if ev.terminal() {
		delete(b.subs, jobID)
	}
}

// Subscribe attaches to a job's event stream. The latest event, if any, is
// delivered immediately. The returned cancel function detaches the
// subscriber; the channel is closed on a terminal event.
func (b *Broker) Subscribe(jobID int64) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 16)
	if job, ok := b.jobs[jobID]; ok && job.Last.Stage != "" {
		ch <- job.Last
		if job.Last.terminal() {
			close(ch)
			return ch, func() {}
		}
	}
	b.subs[jobID] = append(b.subs[jobID], ch)

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[jobID]
		for i, c := range subs {
			if c == ch {
				b.subs[jobID] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
	return ch, cancel
}
