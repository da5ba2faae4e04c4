// Package broadcast provides the event fan-out for Beacon Core.
//
// A Broadcaster owns the set of live observer subscriptions. Each
// subscription carries a buffered channel; Publish delivers an event to
// every current subscriber without blocking. A subscriber whose buffer is
// full loses the event (best effort) — a slow observer can never stall
// ingestion. Delivery order per subscriber equals publish order.
//
// The broadcaster is independent of storage: it knows nothing about how
// events came to be, only how to deliver them.
//
//	b := broadcast.New(256)
//	sub := b.Subscribe()
//	defer b.Unsubscribe(sub)
//
//	for ev := range sub.Events() {
//	    handle(ev)
//	}
package broadcast
