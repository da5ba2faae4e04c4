package telemetry

import (
	"sync"
	"testing"
	"time"
)

func TestLogAppend(t *testing.T) {
	log := &Log{}

	n := log.Append(Record{"name": "alice"})
	if n != 1 {
		t.Errorf("Append() = %d, want 1", n)
	}

	n = log.Append(Record{"name": "bob"})
	if n != 2 {
		t.Errorf("Append() = %d, want 2", n)
	}

	if log.Len() != 2 {
		t.Errorf("Len() = %d, want 2", log.Len())
	}
}

func TestLogAppendAssignsTimestamp(t *testing.T) {
	log := &Log{}

	stored, _ := log.AppendMany([]Record{{"name": "alice"}})
	if len(stored) != 1 {
		t.Fatalf("AppendMany() returned %d records, want 1", len(stored))
	}

	ts, ok := stored[0][TimestampField].(string)
	if !ok || ts == "" {
		t.Fatalf("stored record missing %s field: %v", TimestampField, stored[0])
	}
	if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
		t.Errorf("timestamp %q is not RFC3339Nano: %v", ts, err)
	}
}

func TestLogAppendKeepsCallerTimestamp(t *testing.T) {
	log := &Log{}

	stored, _ := log.AppendMany([]Record{{TimestampField: "2026-01-02T03:04:05Z"}})
	if got := stored[0][TimestampField]; got != "2026-01-02T03:04:05Z" {
		t.Errorf("timestamp = %v, want caller-supplied value preserved", got)
	}
}

func TestLogAppendCopiesInput(t *testing.T) {
	log := &Log{}

	rec := Record{"name": "alice"}
	log.Append(rec)

	// Mutating the caller's record must not reach the stored copy.
	rec["name"] = "mallory"

	snap := log.Snapshot()
	if snap[0]["name"] != "alice" {
		t.Errorf("stored record = %v, want caller mutation isolated", snap[0])
	}
}

func TestLogSnapshotIsolation(t *testing.T) {
	log := &Log{}
	log.Append(Record{"name": "alice"})

	snap := log.Snapshot()
	snap[0]["name"] = "mallory"

	snap2 := log.Snapshot()
	if snap2[0]["name"] != "alice" {
		t.Errorf("snapshot mutation reached the log: %v", snap2[0])
	}
}

func TestLogSnapshotEmpty(t *testing.T) {
	log := &Log{}

	snap := log.Snapshot()
	if snap == nil {
		t.Fatal("Snapshot() = nil, want empty slice")
	}
	if len(snap) != 0 {
		t.Errorf("Snapshot() length = %d, want 0", len(snap))
	}
}

func TestLogAppendOrder(t *testing.T) {
	log := &Log{}

	for i := 0; i < 10; i++ {
		log.Append(Record{"seq": i})
	}

	snap := log.Snapshot()
	for i, rec := range snap {
		if rec["seq"] != i {
			t.Fatalf("record %d has seq %v, want %d", i, rec["seq"], i)
		}
	}
}

func TestLogConcurrentAppend(t *testing.T) {
	const (
		goroutines = 8
		perWorker  = 50
		batchSize  = 4
	)

	log := &Log{}

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				batch := make([]Record, batchSize)
				for j := range batch {
					batch[j] = Record{"worker": worker, "iter": i, "pos": j}
				}
				log.AppendMany(batch)
			}
		}(g)
	}
	wg.Wait()

	want := goroutines * perWorker * batchSize
	if log.Len() != want {
		t.Errorf("Len() = %d, want %d", log.Len(), want)
	}

	// Batches must be contiguous: within every window of batchSize records
	// from the same worker/iter, positions run 0..batchSize-1.
	snap := log.Snapshot()
	for i := 0; i < len(snap); i += batchSize {
		worker := snap[i]["worker"]
		iter := snap[i]["iter"]
		for j := 0; j < batchSize; j++ {
			rec := snap[i+j]
			if rec["worker"] != worker || rec["iter"] != iter || rec["pos"] != j {
				t.Fatalf("batch interleaved at index %d: %v", i+j, rec)
			}
		}
	}
}

func TestLogConcurrentSnapshot(t *testing.T) {
	log := &Log{}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			log.Append(Record{"seq": i})
		}
	}()

	// Snapshots taken while appending must always be an ordered prefix.
	for i := 0; i < 50; i++ {
		snap := log.Snapshot()
		for j, rec := range snap {
			if rec["seq"] != j {
				t.Fatalf("snapshot not a prefix at %d: %v", j, rec)
			}
		}
	}
	<-done
}

func TestLogConcurrentAppendTimestampOrder(t *testing.T) {
	const (
		goroutines = 64
		batchSize  = 8
	)

	log := &Log{}

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := make([]Record, batchSize)
			for i := range batch {
				batch[i] = Record{"n": i}
			}
			log.AppendMany(batch)
		}()
	}
	wg.Wait()

	records := log.Snapshot()
	if len(records) != goroutines*batchSize {
		t.Fatalf("Snapshot() = %d records, want %d", len(records), goroutines*batchSize)
	}

	// Timestamps must be non-decreasing in log order: stamping happens
	// under the same lock that serialises appends.
	var prev time.Time
	for i, rec := range records {
		raw, ok := rec[TimestampField].(string)
		if !ok {
			t.Fatalf("record %d has no timestamp", i)
		}
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			t.Fatalf("record %d timestamp %q: %v", i, raw, err)
		}
		if ts.Before(prev) {
			t.Fatalf("record %d stamped %s before record %d stamped %s",
				i, ts.Format(time.RFC3339Nano), i-1, prev.Format(time.RFC3339Nano))
		}
		prev = ts
	}
}
