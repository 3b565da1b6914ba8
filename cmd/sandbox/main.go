package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/hubastard/webgrove/engine/config"
	"github.com/hubastard/webgrove/engine/core"
	glbackend "github.com/hubastard/webgrove/engine/gfx/gl"
	"github.com/hubastard/webgrove/engine/platform"
	"github.com/hubastard/webgrove/engine/profiler"
)

type App struct {
	cfg       *config.Config
	windows   int
	log       *slog.Logger
	lastFrame time.Time
	browsers  *BrowserLayer
	stats     *LayerStats
}

func (a *App) OnStart(e *core.Engine) {
	a.browsers = &BrowserLayer{cfg: a.cfg, initial: a.windows, log: a.log}
	e.PushLayer(a.browsers)

	a.stats = &LayerStats{browsers: a.browsers, log: a.log, title: a.cfg.Host.Title}
	e.PushLayer(a.stats)
}

func (a *App) OnUpdate(e *core.Engine, dt float64) {
	now := time.Now()
	if !a.lastFrame.IsZero() {
		a.stats.frameDuration = now.Sub(a.lastFrame)
	}
	a.lastFrame = now
}
func (a *App) OnRender(e *core.Engine, alpha float64) {}
func (a *App) OnEvent(e *core.Engine, ev core.Event)  {}
func (a *App) OnShutdown(e *core.Engine) {
	a.log.Info("sandbox stopped", "uptime", e.Uptime().Round(time.Millisecond), "frames", e.Frame())
}

func main() {
	configPath := flag.String("config", "webgrove.yaml", "path to the YAML config")
	profileMode := flag.String("profile", "", "capture a pprof profile: cpu, mem, trace, block or mutex")
	profileDir := flag.String("profile-dir", ".", "directory for -profile output")
	windows := flag.Int("windows", 1, "browser windows to open at start")
	flag.Parse()

	cfg, err := config.LoadFromPath(*configPath)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := cfg.NewLogger(os.Stderr)
	core.SetLogger(log)

	mode, err := profiler.ParseMode(*profileMode)
	if err != nil {
		log.Error("profile", "err", err)
		os.Exit(2)
	}
	capture, err := profiler.Capture(mode, *profileDir)
	if err != nil {
		log.Error("profile", "err", err)
		os.Exit(1)
	}

	app := &App{cfg: cfg, windows: max(*windows, 0), log: log}
	var host *platform.GLFWWindow
	newWindow := func(c core.Config) (core.Window, error) {
		w, err := platform.NewGLFWWindow(c)
		host = w
		return w, err
	}
	newRenderer := func(win core.Window, c core.Config) (core.Renderer, error) {
		return glbackend.NewRendererGL(win, c)
	}

	err = core.Run(app, cfg.EngineConfig(), newWindow, newRenderer)
	if host != nil {
		host.Destroy()
	}
	capture.Stop()
	if err != nil {
		log.Error("run", "err", err)
		os.Exit(1)
	}
}
