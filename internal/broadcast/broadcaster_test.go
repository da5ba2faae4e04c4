package broadcast

import (
	"sync"
	"testing"
)

func TestSubscribePublish(t *testing.T) {
	b := New(8)

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	b.Publish(Event{DeviceID: "device-1", Kind: "sms", Payload: "hello"})

	select {
	case ev := <-sub.Events():
		if ev.DeviceID != "device-1" || ev.Kind != "sms" {
			t.Errorf("received event = %+v, want device-1/sms", ev)
		}
		if ev.At.IsZero() {
			t.Error("event At not stamped")
		}
	default:
		t.Fatal("no event delivered")
	}
}

func TestPublishFanOut(t *testing.T) {
	b := New(8)

	subs := []*Subscription{b.Subscribe(), b.Subscribe(), b.Subscribe()}
	defer func() {
		for _, sub := range subs {
			b.Unsubscribe(sub)
		}
	}()

	b.Publish(Event{DeviceID: "device-1", Kind: "contacts"})

	for i, sub := range subs {
		select {
		case ev := <-sub.Events():
			if ev.Kind != "contacts" {
				t.Errorf("subscriber %d received %q, want contacts", i, ev.Kind)
			}
		default:
			t.Errorf("subscriber %d did not receive the event", i)
		}
	}
}

func TestPublishOrdering(t *testing.T) {
	b := New(64)

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	for i := 0; i < 50; i++ {
		b.Publish(Event{DeviceID: "device-1", Kind: "sms", Payload: i})
	}

	for i := 0; i < 50; i++ {
		select {
		case ev := <-sub.Events():
			if ev.Payload != i {
				t.Fatalf("event %d has payload %v, delivery out of order", i, ev.Payload)
			}
		default:
			t.Fatalf("only %d of 50 events delivered", i)
		}
	}
}

func TestPublishNonBlockingDrop(t *testing.T) {
	b := New(2)

	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	// Fill the buffer, then keep publishing. Publish must return without
	// blocking and count the overflow.
	for i := 0; i < 5; i++ {
		b.Publish(Event{DeviceID: "device-1", Kind: "sms", Payload: i}) // returns immediately
	}

	if got := b.Dropped(); got != 3 {
		t.Errorf("Dropped() = %d, want 3", got)
	}

	// The events that did arrive are the oldest, in order.
	for i := 0; i < 2; i++ {
		ev := <-sub.Events()
		if ev.Payload != i {
			t.Errorf("buffered event %d has payload %v", i, ev.Payload)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New(8)

	sub := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", b.SubscriberCount())
	}

	b.Unsubscribe(sub)
	if b.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", b.SubscriberCount())
	}

	// Channel is closed after removal.
	if _, open := <-sub.Events(); open {
		t.Error("subscription channel still open after Unsubscribe()")
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	b := New(8)

	sub := b.Subscribe()
	b.Unsubscribe(sub)
	b.Unsubscribe(sub) // must not panic on double close
	b.Unsubscribe(nil) // nil is tolerated
}

func TestPublishAfterUnsubscribe(t *testing.T) {
	b := New(8)

	sub := b.Subscribe()
	b.Unsubscribe(sub)

	// Must not send on the closed channel.
	b.Publish(Event{DeviceID: "device-1", Kind: "sms"})
}

func TestClose(t *testing.T) {
	b := New(8)

	s1 := b.Subscribe()
	s2 := b.Subscribe()

	b.Close()

	if b.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d after Close(), want 0", b.SubscriberCount())
	}
	if _, open := <-s1.Events(); open {
		t.Error("s1 channel still open after Close()")
	}
	if _, open := <-s2.Events(); open {
		t.Error("s2 channel still open after Close()")
	}
}

func TestSubscriptionIDsUnique(t *testing.T) {
	b := New(8)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		sub := b.Subscribe()
		if seen[sub.ID()] {
			t.Fatalf("duplicate subscription id %q", sub.ID())
		}
		seen[sub.ID()] = true
	}
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	b := New(256)

	var wg sync.WaitGroup

	// Publishers.
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				b.Publish(Event{DeviceID: "device-1", Kind: "location"})
			}
		}()
	}

	// Subscriber churn racing the publishers.
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sub := b.Subscribe()
				b.Unsubscribe(sub)
			}
		}()
	}

	wg.Wait()
}
