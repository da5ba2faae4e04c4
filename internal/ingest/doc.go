// Package ingest turns raw producer payloads into store operations.
//
// Producers post mixed payloads: a device identity, optional summary
// fields, and any combination of category arrays under loosely-agreed
// field names (call logs alone arrive as "calllog", "calls" or
// "calllogs"). This package normalises that mess at the boundary —
// aliases resolved, unknown keys dropped, the location object wrapped as
// a one-record batch — so the store only ever sees canonical categories.
//
// Each category batch is applied independently: a failure in one never
// rolls back or blocks its siblings. Both the HTTP layer and the MQTT
// bridge feed through here, so a payload means the same thing regardless
// of transport.
package ingest
