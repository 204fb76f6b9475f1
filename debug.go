package backdrop

import (
	"time"
)

// frameStats holds per-frame timing and command metrics.
// Only logged when the Background is in debug mode.
type frameStats struct {
	stepTime     time.Duration
	renderTime   time.Duration
	commandCount int
	segmentCount int
}

// debugLog reports frame timings at debug level, at most once per
// debugLogInterval of elapsed time.
func (b *Background) debugLog(stats frameStats, now float64) {
	if !b.debug || now-b.lastDebugLog < debugLogInterval {
		return
	}
	b.lastDebugLog = now
	slogger().Debug("backdrop: frame",
		"frame", b.field.Frames(),
		"step", stats.stepTime,
		"render", stats.renderTime,
		"total", stats.stepTime+stats.renderTime,
		"commands", stats.commandCount,
		"segments", stats.segmentCount,
	)
}

const debugLogInterval = 1.0

// debugListStats reports how much a renderer drew, when it exposes a
// DisplayList.
func debugListStats(r Renderer) (commands, segments int) {
	lr, ok := r.(interface{ DisplayList() *DisplayList })
	if !ok {
		return 0, 0
	}
	d := lr.DisplayList()
	return len(d.Commands), len(d.Segments)
}
