package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/fasten/pkg/core"
	"github.com/go-drift/fasten/pkg/fastener"
)

// waitForServer polls the health endpoint until ready or timeout.
func waitForServer(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://%s/health", addr)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}

// waitForServerDown polls until the server stops responding or timeout.
func waitForServerDown(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://%s/health", addr)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err != nil {
			return nil // Connection refused = server is down
		}
		resp.Body.Close()
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("server still running after %v", timeout)
}

func startTestServer(t *testing.T, s *Scheduler) string {
	t.Helper()
	d := NewDebugServer(s)
	addr, err := d.Start("127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start debug server: %v", err)
	}
	t.Cleanup(d.Stop)
	if err := waitForServer(addr, 2*time.Second); err != nil {
		t.Fatalf("server not ready: %v", err)
	}
	return addr
}

func TestDebugServer_StartStop(t *testing.T) {
	s := New(core.NewNode("root", nil), &ManualFrames{})
	d := NewDebugServer(s)
	addr, err := d.Start("127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start debug server: %v", err)
	}
	defer d.Stop()

	if err := waitForServer(addr, 2*time.Second); err != nil {
		t.Fatalf("server not ready: %v", err)
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/health", addr))
	if err != nil {
		t.Fatalf("failed to reach health endpoint: %v", err)
	}
	defer resp.Body.Close()

	var health map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", health["status"])
	}

	d.Stop()
	if err := waitForServerDown(addr, 2*time.Second); err != nil {
		t.Errorf("server did not stop: %v", err)
	}
}

func TestDebugServer_MethodNotAllowed(t *testing.T) {
	addr := startTestServer(t, New(core.NewNode("root", nil), &ManualFrames{}))

	resp, err := http.Post(fmt.Sprintf("http://%s/health", addr), "application/json", nil)
	if err != nil {
		t.Fatalf("failed to reach health endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405 for POST, got %d", resp.StatusCode)
	}
}

func TestDebugServer_FailFastOnPortConflict(t *testing.T) {
	blocker, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create blocker listener: %v", err)
	}
	defer blocker.Close()

	d := NewDebugServer(New(core.NewNode("root", nil), &ManualFrames{}))
	if _, err := d.Start(blocker.Addr().String()); err == nil {
		d.Stop()
		t.Error("expected error when binding to occupied port, got nil")
	}
}

func TestDebugServer_AlreadyRunningReturnsAddr(t *testing.T) {
	d := NewDebugServer(New(core.NewNode("root", nil), &ManualFrames{}))
	addr1, err := d.Start("127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start debug server: %v", err)
	}
	defer d.Stop()

	addr2, err := d.Start("127.0.0.1:0")
	if err != nil {
		t.Fatalf("second start returned error: %v", err)
	}
	if addr1 != addr2 {
		t.Errorf("expected same address %s, got %s", addr1, addr2)
	}
}

func TestDebugServer_Tree(t *testing.T) {
	root := core.NewNode("root", nil)
	child := core.NewNode("card", nil)
	root.AppendChild(child)
	fastener.NewProperty(child, "title", "hello")

	frames := &ManualFrames{}
	s := New(root, frames)
	settle(t, frames, epoch)
	addr := startTestServer(t, s)

	type result struct {
		tree OwnerTreeNode
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := http.Get(fmt.Sprintf("http://%s/tree", addr))
		if err != nil {
			done <- result{err: err}
			return
		}
		defer resp.Body.Close()
		var tree OwnerTreeNode
		err = json.NewDecoder(resp.Body).Decode(&tree)
		done <- result{tree: tree, err: err}
	}()

	// The snapshot is taken on the frame that serves the dispatch.
	var res result
	deadline := time.After(2 * time.Second)
loop:
	for {
		select {
		case res = <-done:
			break loop
		case <-deadline:
			t.Fatal("tree request did not complete")
		default:
			frames.Fire(epoch)
			time.Sleep(time.Millisecond)
		}
	}
	if res.err != nil {
		t.Fatalf("tree request failed: %v", res.err)
	}

	if res.tree.Name != "root" || len(res.tree.Children) != 1 {
		t.Fatalf("tree = %+v, want root with one child", res.tree)
	}
	card := res.tree.Children[0]
	var title *FastenerState
	for i := range card.Fasteners {
		if card.Fasteners[i].Name == "title" {
			title = &card.Fasteners[i]
		}
	}
	if title == nil {
		t.Fatalf("card fasteners %+v lack title", card.Fasteners)
	}
	if title.Value != "hello" || title.Kind != "property" || !title.Defined {
		t.Errorf("title = %+v", *title)
	}
	for _, f := range card.Fasteners {
		if f.Name == "theme" && f.Inlet != "root.theme" {
			t.Errorf("theme inlet = %q, want root.theme", f.Inlet)
		}
	}
}

func TestDebugServer_Frames(t *testing.T) {
	frames := &ManualFrames{}
	s := New(core.NewNode("root", nil), frames, WithTrace(NewFrameTraceBuffer(8, time.Hour)))
	for range 3 {
		s.Frame(epoch)
	}
	addr := startTestServer(t, s)

	resp, err := http.Get(fmt.Sprintf("http://%s/frames?limit=2", addr))
	if err != nil {
		t.Fatalf("failed to reach frames endpoint: %v", err)
	}
	defer resp.Body.Close()

	var tl FrameTimeline
	if err := json.NewDecoder(resp.Body).Decode(&tl); err != nil {
		t.Fatalf("failed to decode timeline: %v", err)
	}
	if len(tl.Samples) != 2 {
		t.Errorf("got %d samples, want 2", len(tl.Samples))
	}
}

func TestDebugServer_FramesDisabled(t *testing.T) {
	addr := startTestServer(t, New(core.NewNode("root", nil), &ManualFrames{}))

	resp, err := http.Get(fmt.Sprintf("http://%s/frames", addr))
	if err != nil {
		t.Fatalf("failed to reach frames endpoint: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 without tracing, got %d", resp.StatusCode)
	}
}

func TestDebugServer_Metrics(t *testing.T) {
	s := New(core.NewNode("root", nil), &ManualFrames{})
	s.Frame(epoch)
	addr := startTestServer(t, s)

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
	if err != nil {
		t.Fatalf("failed to reach metrics endpoint: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	if !strings.Contains(string(body), "fasten_scheduler_frames_total") {
		t.Error("metrics output lacks fasten_scheduler_frames_total")
	}
}
