package telemetry

import (
	"sync"
	"testing"
)

func TestRegistryEnsure(t *testing.T) {
	reg := NewRegistry()

	d1 := reg.Ensure("device-1")
	if d1 == nil {
		t.Fatal("Ensure() returned nil")
	}
	if d1.ID() != "device-1" {
		t.Errorf("ID() = %q, want %q", d1.ID(), "device-1")
	}

	d2 := reg.Ensure("device-1")
	if d1 != d2 {
		t.Error("Ensure() returned a new instance for an existing id")
	}

	if reg.Count() != 1 {
		t.Errorf("Count() = %d, want 1", reg.Count())
	}
}

func TestRegistryEnsureConcurrent(t *testing.T) {
	reg := NewRegistry()

	const goroutines = 16
	devices := make([]*Device, goroutines)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			devices[i] = reg.Ensure("device-1")
		}(g)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if devices[i] != devices[0] {
			t.Fatal("concurrent Ensure() returned distinct instances for the same id")
		}
	}
	if reg.Count() != 1 {
		t.Errorf("Count() = %d, want 1", reg.Count())
	}
}

func TestRegistryGet(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Get("missing"); ok {
		t.Error("Get() found a device that was never registered")
	}

	reg.Ensure("device-1")
	d, ok := reg.Get("device-1")
	if !ok || d == nil {
		t.Fatal("Get() did not find a registered device")
	}
}

func TestRegistryIDsSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Ensure("zulu")
	reg.Ensure("alpha")
	reg.Ensure("mike")

	ids := reg.IDs()
	want := []string{"alpha", "mike", "zulu"}
	if len(ids) != len(want) {
		t.Fatalf("IDs() length = %d, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestDeviceLogs(t *testing.T) {
	d := newDevice("device-1")

	for _, cat := range AllCategories() {
		if d.Log(cat) == nil {
			t.Errorf("Log(%q) = nil, want initialised log", cat)
		}
	}

	if d.Log("bogus") != nil {
		t.Error("Log() for unknown category should be nil")
	}
}

func TestDeviceMergeInfo(t *testing.T) {
	d := newDevice("device-1")

	merged := d.mergeInfo(map[string]any{"model": "SM-G990", "battery": 80})
	if merged["model"] != "SM-G990" {
		t.Errorf("merged model = %v, want SM-G990", merged["model"])
	}
	if _, ok := merged[LastUpdatedField].(string); !ok {
		t.Errorf("merged info missing %s: %v", LastUpdatedField, merged)
	}

	// Second merge overwrites colliding keys and keeps the rest.
	merged = d.mergeInfo(map[string]any{"battery": 75})
	if merged["battery"] != 75 {
		t.Errorf("battery = %v, want 75", merged["battery"])
	}
	if merged["model"] != "SM-G990" {
		t.Errorf("model = %v, want preserved across merges", merged["model"])
	}
}

func TestDeviceMergeInfoIsolation(t *testing.T) {
	d := newDevice("device-1")

	fields := map[string]any{"tags": map[string]any{"env": "prod"}}
	merged := d.mergeInfo(fields)

	// Mutating the caller's nested map must not reach stored info.
	fields["tags"].(map[string]any)["env"] = "dev"
	// Nor must mutating the returned copy.
	merged["extra"] = true

	snap := d.infoSnapshot()
	if tags, ok := snap["tags"].(map[string]any); !ok || tags["env"] != "prod" {
		t.Errorf("stored info affected by caller mutation: %v", snap)
	}
	if _, ok := snap["extra"]; ok {
		t.Errorf("stored info affected by returned-copy mutation: %v", snap)
	}
}

func TestDeviceMergeInfoConcurrent(t *testing.T) {
	d := newDevice("device-1")

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.mergeInfo(map[string]any{"field": i})
		}(g)
	}
	wg.Wait()

	snap := d.infoSnapshot()
	if _, ok := snap["field"]; !ok {
		t.Errorf("info missing merged field after concurrent merges: %v", snap)
	}
}
