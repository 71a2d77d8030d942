// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"testing"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	job := b.Create("widgets")
	if job.ID == 0 {
		t.Fatal("job ID not assigned")
	}
	if b.Get(job.ID) != job {
		t.Error("Get did not return the created job")
	}

	events, cancel := b.Subscribe(job.ID)
	defer cancel()

	b.Publish(job.ID, Event{Stage: "searching", Pct: 10})
	ev := <-events
	if ev.Stage != "searching" || ev.Pct != 10 {
		t.Errorf("event = %+v", ev)
	}

	b.Publish(job.ID, Event{Stage: "done", Pct: 100, RunID: 7})
	ev = <-events
	if ev.Stage != "done" || ev.RunID != 7 {
		t.Errorf("event = %+v", ev)
	}

	// Terminal event closes the stream.
	if _, open := <-events; open {
		t.Error("channel still open after terminal event")
	}
}

func TestBrokerLateSubscriberGetsLastEvent(t *testing.T) {
	b := NewBroker()
	job := b.Create("widgets")
	b.Publish(job.ID, Event{Stage: "analyzing", Pct: 55})

	events, cancel := b.Subscribe(job.ID)
	defer cancel()

	ev := <-events
	if ev.Stage != "analyzing" {
		t.Errorf("late subscriber got %+v, want the latest event", ev)
	}
}

func TestBrokerSubscribeAfterTerminal(t *testing.T) {
	b := NewBroker()
	job := b.Create("widgets")
	b.Publish(job.ID, Event{Stage: "done", Pct: 100, RunID: 3})

	events, cancel := b.Subscribe(job.ID)
	defer cancel()

	ev, open := <-events
	if !open || ev.RunID != 3 {
		t.Errorf("event = %+v open=%v", ev, open)
	}
	if _, open := <-events; open {
		t.Error("channel should be closed after the replayed terminal event")
	}
}

func TestBrokerSlowSubscriberGetsTerminalEvent(t *testing.T) {
	b := NewBroker()
	job := b.Create("widgets")

	events, cancel := b.Subscribe(job.ID)
	defer cancel()

	// Fill the subscriber buffer well past capacity without reading.
	for i := 0; i < 40; i++ {
		b.Publish(job.ID, Event{Stage: "searching", Pct: i})
	}
	b.Publish(job.ID, Event{Stage: "done", Pct: 100, RunID: 11})

	var last Event
	for ev := range events {
		last = ev
	}
	if last.Stage != "done" || last.RunID != 11 {
		t.Errorf("last event = %+v, want the terminal event with run ID 11", last)
	}
}

func TestBrokerCancelDetaches(t *testing.T) {
	b := NewBroker()
	job := b.Create("widgets")

	events, cancel := b.Subscribe(job.ID)
	cancel()

	b.Publish(job.ID, Event{Stage: "searching", Pct: 10})
	select {
	case ev := <-events:
		if ev.Stage != "" {
			t.Errorf("cancelled subscriber received %+v", ev)
		}
	default:
	}
}

func TestBrokerUnknownJob(t *testing.T) {
	b := NewBroker()
	if b.Get(99) != nil {
		t.Error("Get(99) should be nil")
	}
	// Publishing to an unknown job is a no-op.
	b.Publish(99, Event{Stage: "searching"})
}
