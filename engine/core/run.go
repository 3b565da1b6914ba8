package core

import (
	"runtime"
	"time"
)

// Fixed update step.
const tick = time.Second / 60

// maxStep bounds fixed updates per frame to prevent a spiral of death.
const maxStep = 10

// Run wires the platform window + renderer and executes the main loop.
func Run(app App, cfg Config, newWindow func(Config) (Window, error), newRenderer func(Window, Config) (Renderer, error)) error {
	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log := Logger()

	win, err := newWindow(cfg)
	if err != nil {
		return err
	}

	rend, err := newRenderer(win, cfg)
	if err != nil {
		return err
	}
	defer rend.Shutdown()

	w, h := win.FramebufferSize()
	rend.Resize(w, h)

	eng := &Engine{Window: win, Renderer: rend, Input: NewInput(), start: time.Now()}
	win.SetEventCallback(func(ev Event) {
		eng.Input.Handle(ev)
		handled := false
		eng.Layers.ForEachReverse(func(l Layer) bool {
			handled = l.OnEvent(eng, ev)
			return handled
		})
		if !handled {
			app.OnEvent(eng, ev)
		}
		switch ev.(type) {
		case EventResize:
			fw, fh := win.FramebufferSize()
			if fw < 1 || fh < 1 {
				return
			}
			rend.Resize(fw, fh)
		case EventCloseRequested:
			win.RequestClose()
		}
	})

	app.OnStart(eng)
	log.Info("engine started", "title", cfg.Title, "width", w, "height", h)

	// Fixed-timestep (60 Hz) with interpolation
	var (
		accum time.Duration
		prev  = time.Now()
		clear = cfg.ClearColor
	)

	for !win.ShouldClose() {
		now := time.Now()
		frame := now.Sub(prev)
		prev = now
		accum += frame

		// Poll OS events (platform will emit via callbacks)
		win.PollEvents()

		frameDt := frame.Seconds()
		eng.Layers.ForEach(func(l Layer) {
			if fl, ok := l.(FrameLayer); ok {
				fl.OnFrame(eng, frameDt)
			}
		})

		// Run fixed updates
		steps := 0
		for accum >= tick && steps < maxStep {
			dt := tick.Seconds()
			app.OnUpdate(eng, dt)
			eng.Layers.ForEach(func(l Layer) { l.OnUpdate(eng, dt) })
			accum -= tick
			steps++
		}
		if steps == maxStep && accum >= tick {
			log.Debug("dropping fixed updates", "behind", accum)
			accum = 0
		}
		// Interpolation factor for rendering
		alpha := float64(accum) / float64(tick)

		// Render
		rend.Clear(clear[0], clear[1], clear[2], clear[3])
		eng.Layers.ForEach(func(l Layer) { l.OnRender(eng, alpha) })
		app.OnRender(eng, alpha)

		// Present
		win.SwapBuffers()
		eng.frame++

		eng.Layers.ForEach(func(l Layer) {
			if pl, ok := l.(PostFrameLayer); ok {
				pl.OnPostFrame(eng)
			}
		})
	}

	app.OnShutdown(eng)
	for {
		if _, ok := eng.PopLayer(); !ok {
			break
		}
	}
	log.Info("engine exit", "frames", eng.frame, "uptime", eng.Uptime())
	return nil
}
