package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-drift/fasten/pkg/animation"
	"github.com/go-drift/fasten/pkg/core"
	"github.com/go-drift/fasten/pkg/fastener"
	"github.com/go-drift/fasten/pkg/theme"
)

// maxTreeDepth limits recursion depth to prevent stack overflow from malformed trees.
const maxTreeDepth = 500

// snapshotTimeout bounds how long a tree request waits for the frame goroutine.
const snapshotTimeout = 2 * time.Second

// OwnerTreeNode represents an owner in the serialized tree.
type OwnerTreeNode struct {
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Depth           int             `json:"depth"`
	Mounted         bool            `json:"mounted"`
	Flags           string          `json:"flags"`
	DescendantFlags string          `json:"descendantFlags"`
	Fasteners       []FastenerState `json:"fasteners,omitempty"`
	Children        []OwnerTreeNode `json:"children,omitempty"`
}

// FastenerState describes one fastener in the serialized tree.
type FastenerState struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Affinity string `json:"affinity"`
	Status   string `json:"status"`
	Inherits bool   `json:"inherits,omitempty"`
	Inlet    string `json:"inlet,omitempty"`
	Outlets  int    `json:"outlets,omitempty"`
	Value    string `json:"value"`
	Defined  bool   `json:"defined"`
}

// DebugServer serves the owner tree, the frame timeline and Prometheus
// metrics of one scheduler over HTTP.
type DebugServer struct {
	scheduler *Scheduler

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewDebugServer creates a stopped debug server for s.
func NewDebugServer(s *Scheduler) *DebugServer {
	return &DebugServer{scheduler: s}
}

// Start listens on addr (":0" picks an ephemeral port) and serves in the
// background. It returns the bound address.
func (d *DebugServer) Start(addr string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.server != nil {
		return d.listener.Addr().String(), nil
	}

	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("debug server listen: %w", err)
	}

	server := &http.Server{Handler: d.Handler()}
	d.server = server
	d.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			// Server failed - clear state so it can be restarted
			d.mu.Lock()
			d.server = nil
			d.listener = nil
			d.mu.Unlock()
			slog.Error("debug server stopped", "error", err)
		}
	}()

	return listener.Addr().String(), nil
}

// Handler returns the debug routes.
func (d *DebugServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tree", d.handleTree)
	mux.HandleFunc("/frames", d.handleFrameTimeline)
	mux.HandleFunc("/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Stop gracefully shuts down the server.
func (d *DebugServer) Stop() {
	d.mu.Lock()
	server := d.server
	d.server = nil
	d.listener = nil
	d.mu.Unlock()

	if server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

// handleTree returns the owner tree as JSON.
//
// The tree is only touched on the frame goroutine, so the snapshot is taken
// by a dispatched callback and handed back over a channel.
func (d *DebugServer) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := make(chan OwnerTreeNode, 1)
	d.scheduler.Dispatch(func() {
		result <- serializeOwnerTree(d.scheduler.Root(), 0)
	})

	ctx, cancel := context.WithTimeout(r.Context(), snapshotTimeout)
	defer cancel()

	var tree OwnerTreeNode
	select {
	case tree = <-result:
	case <-ctx.Done():
		http.Error(w, "frame loop did not respond", http.StatusServiceUnavailable)
		return
	}

	// Encode to buffer first so we can catch errors
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleFrameTimeline returns recent frame samples as JSON.
func (d *DebugServer) handleFrameTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	trace := d.scheduler.Trace()
	if trace == nil {
		http.Error(w, "frame tracing disabled", http.StatusServiceUnavailable)
		return
	}

	resp := trace.Snapshot()
	applyFrameFilters(r, &resp)

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleHealth returns a simple health check response.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// applyFrameFilters narrows the timeline by the query parameters limit,
// min_ms, errors and one <phase>_visits minimum per phase.
func applyFrameFilters(r *http.Request, resp *FrameTimeline) {
	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var filters []func(FrameSample) bool

	if v := parseFloatQuery(r, "min_ms"); v > 0 {
		filters = append(filters, func(s FrameSample) bool { return s.FrameMs >= v })
	}
	if value := r.URL.Query().Get("errors"); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil && parsed {
			filters = append(filters, func(s FrameSample) bool { return s.Errors > 0 })
		}
	}
	for _, phase := range phaseNames() {
		if v := parseFloatQuery(r, phase+"_visits"); v > 0 {
			filters = append(filters, func(s FrameSample) bool { return float64(s.Visits[phase]) >= v })
		}
	}

	if len(filters) > 0 {
		filtered := make([]FrameSample, 0, len(resp.Samples))
	outer:
		for _, sample := range resp.Samples {
			for _, f := range filters {
				if !f(sample) {
					continue outer
				}
			}
			filtered = append(filtered, sample)
		}
		resp.Samples = filtered
	}

	if limit > 0 && len(resp.Samples) > limit {
		resp.Samples = resp.Samples[len(resp.Samples)-limit:]
	}
}

func parseFloatQuery(r *http.Request, key string) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func serializeOwnerTree(n *core.Node, depth int) OwnerTreeNode {
	node := OwnerTreeNode{
		Name:            n.Name(),
		Type:            fmt.Sprintf("%T", n.Self()),
		Depth:           n.Depth(),
		Mounted:         n.Mounted(),
		Flags:           n.Flags().String(),
		DescendantFlags: n.DescendantFlags().String(),
	}
	for _, f := range n.Fasteners() {
		node.Fasteners = append(node.Fasteners, describeFastener(f))
	}
	if depth >= maxTreeDepth {
		return node
	}
	n.VisitChildren(func(c *core.Node) bool {
		node.Children = append(node.Children, serializeOwnerTree(c, depth+1))
		return true
	})
	return node
}

func describeFastener(f fastener.Fastener) FastenerState {
	v, defined := f.AnyValue()
	st := FastenerState{
		Name:     f.Name(),
		Kind:     f.Kind().String(),
		Affinity: f.Affinity().String(),
		Status:   f.Status().String(),
		Inherits: f.Inherits(),
		Outlets:  len(f.Outlets()),
		Value:    formatValue(v),
		Defined:  defined,
	}
	if in := f.Inlet(); in != nil {
		owner := ""
		if in.Owner() != nil {
			owner = in.Owner().OwnerName()
		}
		st.Inlet = owner + "." + in.Name()
	}
	return st
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case *theme.Theme:
		if v == nil {
			return "<nil>"
		}
		return v.Name
	case *animation.Timing:
		if v == nil {
			return "<nil>"
		}
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
