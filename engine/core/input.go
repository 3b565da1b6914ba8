package core

// Input is the keyboard and mouse state as of the last polled event.
type Input struct {
	keys           map[Key]bool
	buttons        map[MouseButton]bool
	mouseX, mouseY float64
	clicks         []EventMouseButton
}

func NewInput() *Input {
	return &Input{keys: map[Key]bool{}, buttons: map[MouseButton]bool{}}
}

func (in *Input) Handle(ev Event) {
	switch e := ev.(type) {
	case EventKey:
		in.keys[e.Key] = e.Down
	case EventMouseMove:
		in.mouseX, in.mouseY = e.X, e.Y
	case EventMouseButton:
		in.buttons[e.Button] = e.Down
		in.mouseX, in.mouseY = e.X, e.Y
		if e.Down {
			in.clicks = append(in.clicks, e)
		}
	}
}

func (in *Input) IsKeyDown(k Key) bool           { return in.keys[k] }
func (in *Input) IsMouseDown(b MouseButton) bool { return in.buttons[b] }
func (in *Input) Mouse() (float64, float64)      { return in.mouseX, in.mouseY }

// Clicks returns the button presses since the previous call, oldest first.
func (in *Input) Clicks() []EventMouseButton {
	c := in.clicks
	in.clicks = nil
	return c
}
