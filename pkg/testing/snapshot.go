package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/fasten/pkg/core"
	"github.com/go-drift/fasten/pkg/fastener"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the owner tree with its flags and fastener values.
type Snapshot struct {
	Tree *OwnerNode `json:"tree"`
}

// OwnerNode represents an owner in a snapshot.
type OwnerNode struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Flags     string            `json:"flags"`
	Fasteners map[string]string `json:"fasteners,omitempty"`
	Children  []*OwnerNode      `json:"children,omitempty"`
}

// CaptureSnapshot captures the current owner tree.
func (h *Harness) CaptureSnapshot() *Snapshot {
	return Capture(h.root)
}

// Capture snapshots the tree rooted at root. The inherited theme context
// properties are left out; every other fastener is recorded as
// "<value> [status]", or "absent" when undefined.
func Capture(root *core.Node) *Snapshot {
	return &Snapshot{Tree: captureOwner(root)}
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When FASTEN_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv("FASTEN_UPDATE_SNAPSHOTS") == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: FASTEN_UPDATE_SNAPSHOTS=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: FASTEN_UPDATE_SNAPSHOTS=1 go test -run %s", path, diff, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a unified diff between this snapshot and other. Returns
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

// --- Internal ---

var contextProperties = map[string]bool{
	core.ThemeProperty:       true,
	core.MoodProperty:        true,
	core.ThemeTimingProperty: true,
}

func captureOwner(n *core.Node) *OwnerNode {
	node := &OwnerNode{
		ID:    n.Name(),
		Type:  ownerTypeName(n),
		Flags: n.Flags().String(),
	}
	for _, f := range n.Fasteners() {
		if contextProperties[f.Name()] {
			continue
		}
		if node.Fasteners == nil {
			node.Fasteners = make(map[string]string)
		}
		node.Fasteners[f.Name()] = describeFastener(f)
	}
	n.VisitChildren(func(c *core.Node) bool {
		node.Children = append(node.Children, captureOwner(c))
		return true
	})
	return node
}

func ownerTypeName(n *core.Node) string {
	name := fmt.Sprintf("%T", n.Self())
	return strings.TrimPrefix(name, "*")
}

func describeFastener(f fastener.Fastener) string {
	v, defined := f.AnyValue()
	if !defined {
		return "absent"
	}
	return fmt.Sprintf("%v [%s]", v, f.Status())
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	maxLen := len(expectedLines)
	if len(actualLines) > maxLen {
		maxLen = len(actualLines)
	}

	for i := 0; i < maxLen; i++ {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}

	return buf.String()
}
