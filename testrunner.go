package backdrop

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Theme  string  `json:"theme,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected pointer moves, resizes, theme changes and
// screenshots across frames for automated visual checks. Pass it to a Host
// through RunConfig.Script.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

var knownActions = map[string]bool{
	"screenshot": true,
	"move":       true,
	"sweep":      true,
	"resize":     true,
	"theme":      true,
	"wait":       true,
}

// LoadTestScript parses a JSON test script:
//
//	{"steps": [
//	  {"action": "move", "x": 100, "y": 80},
//	  {"action": "wait", "frames": 30},
//	  {"action": "screenshot", "label": "hover"}
//	]}
//
// Theme steps take "light", "dark" or "toggle".
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action == "theme" && st.Theme != "toggle" {
			if _, err := ParseTheme(st.Theme); err != nil {
				return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
			}
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame. Called from Host.Update.
func (r *TestRunner) step(h *Host) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(h.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		h.Screenshot(st.Label)
	case "move":
		h.InjectPointer(st.X, st.Y)
	case "sweep":
		h.InjectSweep(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "resize":
		h.InjectResize(st.Width, st.Height)
	case "theme":
		t := h.bg.Theme().Toggle()
		if st.Theme != "toggle" {
			t, _ = ParseTheme(st.Theme)
		}
		h.InjectTheme(t)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(h.injectQueue) == 0 {
		r.done = true
	}
}
