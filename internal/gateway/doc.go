// Package gateway hands a newly-connecting observer a consistent view of
// the telemetry store: a full snapshot followed by a gap-free stream of
// every subsequent event.
//
// The ordering is the whole point: the gateway subscribes to the
// broadcaster first, then takes the store snapshot. Any event published
// between the two lands in the subscription buffer, so nothing that
// happens after the snapshot can be missed. The price is that an event
// may appear in both the snapshot and the earliest streamed messages;
// observers must treat re-delivery of a record they already hold as a
// no-op.
//
//	session := gw.Connect()
//	defer session.Close()
//
//	send(session.Snapshot())
//	for ev := range session.Events() {
//	    send(ev)
//	}
package gateway
