package browser

import "sync"

// Event is a native notification queued for the host thread.
type Event interface{ isEvent() }

type WindowCreated struct {
	Identity      Identity
	Index         int
	Width, Height int
	Format        PixelFormat
}

type WindowResized struct {
	Identity      Identity
	Index         int
	Width, Height int
}

type BrowserEvent struct {
	Identity     Identity
	Index        int
	Kind         BrowserEventKind
	Data1, Data2 int
	Text         string
}

func (WindowCreated) isEvent() {}
func (WindowResized) isEvent() {}
func (BrowserEvent) isEvent()  {}

// Inbox queues native callbacks until the host thread drains them. Posting
// never blocks on the consumer.
type Inbox struct {
	mu     sync.Mutex
	events []Event
}

func NewInbox() *Inbox { return &Inbox{} }

func (in *Inbox) post(ev Event) {
	in.mu.Lock()
	in.events = append(in.events, ev)
	in.mu.Unlock()
}

func (in *Inbox) OnWindowCreated(id Identity, index, width, height int, format PixelFormat) {
	in.post(WindowCreated{Identity: id, Index: index, Width: width, Height: height, Format: format})
}

func (in *Inbox) OnWindowResized(id Identity, index, width, height int) {
	in.post(WindowResized{Identity: id, Index: index, Width: width, Height: height})
}

func (in *Inbox) OnBrowserEvent(id Identity, index int, kind BrowserEventKind, data1, data2 int, text string) {
	in.post(BrowserEvent{Identity: id, Index: index, Kind: kind, Data1: data1, Data2: data2, Text: text})
}

// Drain returns queued events in posting order and empties the inbox.
func (in *Inbox) Drain() []Event {
	in.mu.Lock()
	evs := in.events
	in.events = nil
	in.mu.Unlock()
	return evs
}

func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.events)
}
