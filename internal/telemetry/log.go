package telemetry

import "sync"

// Log is an ordered, append-only sequence of records for one device and
// one category. Index position is the log's true order: records are never
// removed or reordered, and two records may share a timestamp (order
// between them is append order, not timestamp order).
//
// All methods are safe for concurrent use. Appends to one log are
// serialised by its mutex, which makes server-assigned timestamps
// non-decreasing within the log.
type Log struct {
	mu      sync.Mutex
	records []Record
}

// Append adds a single record to the end of the log and returns the new
// length. A TimestampField value is assigned if the record has none. The
// stored record is an independent copy; the caller keeps ownership of rec.
func (l *Log) Append(rec Record) int {
	_, n := l.AppendMany([]Record{rec})
	return n
}

// AppendMany appends a batch as a single atomic unit with respect to
// concurrent readers: a Snapshot observes either none or all of the batch,
// never a partial prefix.
//
// It returns the records as stored (independent copies, timestamps
// assigned) and the new log length. Nil records must be rejected by the
// caller before appending.
func (l *Log) AppendMany(recs []Record) ([]Record, int) {
	stored := make([]Record, 0, len(recs))
	for _, rec := range recs {
		cpy := rec.Clone()
		if cpy == nil {
			cpy = Record{}
		}
		stored = append(stored, cpy)
	}

	l.mu.Lock()
	// Stamp under the lock: stamping order must equal append order, or
	// timestamps could run backwards within the log.
	for _, rec := range stored {
		if _, ok := rec[TimestampField]; !ok {
			rec[TimestampField] = nowTimestamp()
		}
	}
	l.records = append(l.records, stored...)
	n := len(l.records)
	l.mu.Unlock()

	// Return copies so the caller cannot mutate what the log holds.
	out := make([]Record, len(stored))
	for i, rec := range stored {
		out[i] = rec.Clone()
	}
	return out, n
}

// Snapshot returns an immutable copy of the log reflecting all appends
// completed before the call returns. The result is never nil.
func (l *Log) Snapshot() []Record {
	l.mu.Lock()
	records := l.records
	n := len(records)
	l.mu.Unlock()

	// The backing array up to n is immutable (append-only), so the deep
	// copy can happen outside the lock.
	out := make([]Record, n)
	for i := 0; i < n; i++ {
		out[i] = records[i].Clone()
	}
	return out
}

// Len returns the number of records in the log.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
