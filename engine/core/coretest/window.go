package coretest

import "github.com/hubastard/webgrove/engine/core"

// Window closes itself after Frames calls to SwapBuffers. Events queued with
// Emit are delivered on the next PollEvents.
type Window struct {
	Frames int
	W, H   int
	Title  string

	Polls   int
	Swaps   int
	closed  bool
	cb      func(core.Event)
	pending []core.Event
}

func (w *Window) Emit(ev core.Event) { w.pending = append(w.pending, ev) }

func (w *Window) PollEvents() {
	w.Polls++
	evs := w.pending
	w.pending = nil
	for _, ev := range evs {
		if w.cb != nil {
			w.cb(ev)
		}
	}
}

func (w *Window) SwapBuffers() {
	w.Swaps++
	if w.Frames > 0 && w.Swaps >= w.Frames {
		w.closed = true
	}
}

func (w *Window) ShouldClose() bool                    { return w.closed }
func (w *Window) RequestClose()                        { w.closed = true }
func (w *Window) FramebufferSize() (int, int)          { return w.W, w.H }
func (w *Window) SetTitle(t string)                    { w.Title = t }
func (w *Window) SetEventCallback(cb func(core.Event)) { w.cb = cb }
