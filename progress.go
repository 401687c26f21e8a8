package pdfraster

// ProgressFunc receives rendering progress. percent is in [0, 100].
// It is called from the converting goroutine and must not block for long.
type ProgressFunc func(strategy string, percent float64)

// report calls fn with the completed share of pages. Safe on a nil fn.
func (fn ProgressFunc) report(strategy string, done, total int) {
	if fn == nil || total <= 0 {
		return
	}
	percent := float64(done) / float64(total) * 100.0
	if percent > 100.0 {
		percent = 100.0
	}
	fn(strategy, percent)
}

// ProgressEvent is a progress update delivered over a channel.
type ProgressEvent struct {
	Strategy string
	Percent  float64
}

// ProgressChannel adapts a channel to a ProgressFunc. Events are dropped
// when the channel is full so a slow reader never stalls rendering.
func ProgressChannel(ch chan<- ProgressEvent) ProgressFunc {
	return func(strategy string, percent float64) {
		select {
		case ch <- ProgressEvent{Strategy: strategy, Percent: percent}:
		default:
		}
	}
}
