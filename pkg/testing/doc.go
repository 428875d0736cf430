// Package testing provides a deterministic harness for owner trees.
//
// # Quick Start
//
// Wrap a root owner in a harness, change some state, and pump frames:
//
//	func TestFade(t *testing.T) {
//	    root := core.NewNode("root", nil)
//	    opacity := fastener.NewAnimator(root, "opacity", 0.0)
//	    h := fastentest.NewHarnessWithT(t, root)
//
//	    opacity.SetState(1.0, &fade)
//	    h.Pump(0)
//	    h.Pump(150 * time.Millisecond)
//
//	    if err := h.PumpUntilIdle(time.Second); err != nil {
//	        t.Fatal(err)
//	    }
//	}
//
// The harness installs a [FakeClock] as the animation clock and drives the
// scheduler through [engine.ManualFrames], so frames only run when the test pumps.
//
// # Finders
//
// Locate owners in the tree by name, type or declared fastener:
//
//	card := h.Find(fastentest.ByName("card")).First()
//	title := fastentest.Value[string](h.Find(fastentest.ByName("card")), "title")
//
// # Snapshot Testing
//
// Capture and compare owner tree snapshots:
//
//	h.CaptureSnapshot().MatchesFile(t, "testdata/card.snapshot.json")
//
// Update snapshots with:
//
//	FASTEN_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import fastentest "github.com/go-drift/fasten/pkg/testing"
package testing
