package testing

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// recordingT captures failures instead of failing the test.
type recordingT struct {
	errors []string
	fatals []string
}

func (r *recordingT) Helper() {}
func (r *recordingT) Name() string { return "TestSnapshot" }
func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}
func (r *recordingT) Fatalf(format string, args ...any) {
	r.fatals = append(r.fatals, fmt.Sprintf(format, args...))
}

func TestCaptureSnapshot(t *testing.T) {
	h := NewHarnessWithT(t, buildTree())
	if err := h.PumpUntilIdle(time.Second); err != nil {
		t.Fatal(err)
	}
	snap := h.CaptureSnapshot()

	if snap.Tree.ID != "app" || len(snap.Tree.Children) != 2 {
		t.Fatalf("tree = %+v", snap.Tree)
	}
	if len(snap.Tree.Fasteners) != 0 {
		t.Errorf("app fasteners = %v, want theme context omitted", snap.Tree.Fasteners)
	}
	footer := snap.Tree.Children[1]
	if footer.Type != "testbed.Counter" {
		t.Errorf("footer type = %s", footer.Type)
	}
	if got := footer.Fasteners["count"]; got != "0 [quiescent]" {
		t.Errorf("count = %q, want %q", got, "0 [quiescent]")
	}
	a := snap.Tree.Children[0].Children[0]
	if !strings.HasPrefix(a.Fasteners["color"], "#") {
		t.Errorf("color = %q, want a resolved color", a.Fasteners["color"])
	}
}

func TestSnapshot_MatchesFile(t *testing.T) {
	t.Setenv("FASTEN_UPDATE_SNAPSHOTS", "")
	path := filepath.Join(t.TempDir(), "tree.snapshot.json")

	h := NewHarnessWithT(t, buildTree())
	if err := h.PumpUntilIdle(time.Second); err != nil {
		t.Fatal(err)
	}
	snap := h.CaptureSnapshot()

	rec := &recordingT{}
	snap.MatchesFile(rec, path)
	if len(rec.fatals) != 1 || !strings.Contains(rec.fatals[0], "snapshot file missing") {
		t.Fatalf("fatals = %v, want missing file", rec.fatals)
	}

	if err := snap.UpdateFile(path); err != nil {
		t.Fatal(err)
	}
	rec = &recordingT{}
	snap.MatchesFile(rec, path)
	if len(rec.errors)+len(rec.fatals) != 0 {
		t.Fatalf("unexpected failures: %v %v", rec.errors, rec.fatals)
	}

	changed := Capture(h.Root())
	changed.Tree.Children[1].Fasteners["count"] = "7 [quiescent]"
	rec = &recordingT{}
	changed.MatchesFile(rec, path)
	if len(rec.errors) != 1 || !strings.Contains(rec.errors[0], `"count": "7 [quiescent]"`) {
		t.Errorf("errors = %v, want a diff naming the new count", rec.errors)
	}
}

func TestSnapshot_UpdateEnv(t *testing.T) {
	t.Setenv("FASTEN_UPDATE_SNAPSHOTS", "1")
	path := filepath.Join(t.TempDir(), "nested", "tree.snapshot.json")

	h := NewHarnessWithT(t, buildTree())
	rec := &recordingT{}
	h.CaptureSnapshot().MatchesFile(rec, path)
	if len(rec.fatals) != 0 {
		t.Fatalf("fatals = %v", rec.fatals)
	}
	if _, err := loadSnapshot(path); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
}
