// Key Overlay
// Shows the keys held in a target window as chips in a browser overlay.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"keyoverlay/internal/api"
	"keyoverlay/internal/app"
	"keyoverlay/internal/autostart"
	"keyoverlay/internal/capture"
	"keyoverlay/internal/config"
	"keyoverlay/internal/hotkey"
	"keyoverlay/internal/logging"
	"keyoverlay/internal/network"
	"keyoverlay/internal/osutils"
	"keyoverlay/internal/tray"
	"keyoverlay/internal/ui"
	"keyoverlay/internal/window"
)

var (
	version     = "0.3.0"
	configPath  = flag.String("config", "", "Path to config.toml (default: per-user config directory)")
	portFlag    = flag.Int("port", 0, "Override the configured port for this run")
	strategy    = flag.String("strategy", "", "Capture strategy: auto, hook, polling or tap")
	hookSource  = flag.String("hook-source", "", "Hook backend: native, gohook or evdev")
	noTray      = flag.Bool("no-tray", false, "Run without the system tray icon")
	noOpen      = flag.Bool("no-open", false, "Do not open the control panel on start")
	listWindows = flag.Bool("list-windows", false, "List visible top-level windows and exit")
	watch       = flag.Bool("watch", false, "Print held keys from a running instance")
	resetKeys   = flag.Bool("reset", false, "Clear the held keys of a running instance and exit")
	showVer     = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("keyoverlay version %s\n", version)
		return
	}

	if *listWindows {
		printWindows(window.New())
		return
	}

	cfgMgr, err := newConfigManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize config: %v\n", err)
		os.Exit(1)
	}
	loadErr := cfgMgr.Load()
	cfg := cfgMgr.Get()

	if err := initLogging(cfgMgr, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer logging.Close()
	log := logging.For("main")

	if loadErr != nil {
		log.Warn().Err(loadErr).Str("path", cfgMgr.Path()).Msg("Failed to load config, using defaults")
	}
	log.Info().Str("version", version).Str("config", cfgMgr.Path()).Msg("Key Overlay starting")

	if *portFlag != 0 {
		cfg.Port = *portFlag
	}
	if cfg.Port < config.MinPort || cfg.Port > config.MaxPort {
		log.Fatal().Int("port", cfg.Port).Msg("Port must be between 1000-65535")
	}

	if *watch || *resetKeys {
		runClient(cfg.Port, log)
		return
	}

	elevated := osutils.IsAdmin()
	ev := log.Info().Bool("elevated", elevated)
	if hint := osutils.PrivilegeHint(elevated); hint != "" {
		ev = ev.Str("hint", hint)
	}
	ev.Msg("Process privileges")

	state := app.New(cfgMgr, window.New(), logging.For("app"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startCapture(ctx, state, cfg, log)

	server := api.NewServer(state, logging.For("api"))
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx, cfg.Port)
	}()

	controlURL := fmt.Sprintf("http://127.0.0.1:%d/control", cfg.Port)
	overlayURL := fmt.Sprintf("http://127.0.0.1:%d/overlay", cfg.Port)
	log.Info().Str("overlay", overlayURL).Str("control", controlURL).Msg("Add the overlay URL as a browser source")

	syncAutostart(cfg.General.StartOnBoot, log)
	state.OnConfigChange(func(c config.Config) {
		syncAutostart(c.General.StartOnBoot, log)
	})

	hkMgr := hotkey.NewManager(logging.For("hotkey"))
	if err := hkMgr.Register(cfg.General.ResetHotkey, state.ResetKeys); err != nil {
		log.Warn().Err(err).Str("hotkey", cfg.General.ResetHotkey).Msg("Ignoring invalid reset hotkey")
	}
	startHotkeys := func() {
		if err := hkMgr.Start(ctx, state.Notifier); err != nil {
			log.Warn().Err(err).Msg("Hotkey engine failed to start")
		}
	}

	if cfg.General.OpenControlOnStart && !*noOpen {
		go func() {
			if err := ui.OpenBrowser(controlURL); err != nil {
				log.Warn().Err(err).Msg("Failed to open control panel")
			}
		}()
	}

	if *noTray {
		if runtime.GOOS == "darwin" {
			log.Warn().Msg("Global hotkeys need the tray run loop on macOS and are disabled")
		} else {
			startHotkeys()
		}
		runHeadless(ctx, serverErr, log)
		return
	}

	t := tray.New("Key Overlay", fmt.Sprintf("Key Overlay on port %d", cfg.Port))
	t.AddMenuItem("Open Control Panel", "", func() {
		if err := ui.OpenBrowser(controlURL); err != nil {
			log.Warn().Err(err).Msg("Failed to open control panel")
		}
	})
	t.AddMenuItem("Open Overlay", "", func() {
		if err := ui.OpenBrowser(overlayURL); err != nil {
			log.Warn().Err(err).Msg("Failed to open overlay")
		}
	})
	t.AddMenuItem("Reset Keys", "Clear every held key", state.ResetKeys)
	t.AddSeparator()

	var startupID int
	startupID = t.AddCheckbox("Run on Startup", "", autostart.IsEnabled(), func() {
		enable := !t.Checked(startupID)
		if err := cfgMgr.Update(func(c *config.Config) { c.General.StartOnBoot = enable }); err != nil {
			log.Error().Err(err).Msg("Failed to save startup setting")
			return
		}
		t.SetItemChecked(startupID, autostart.IsEnabled())
	})
	state.OnConfigChange(func(c config.Config) {
		t.SetItemChecked(startupID, c.General.StartOnBoot)
	})
	t.AddSeparator()
	t.AddMenuItem("Quit", "", t.Stop)

	t.OnReady(startHotkeys)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Info().Msg("Shutting down...")
		case err := <-serverErr:
			if err != nil {
				log.Error().Err(err).Msg("API server exited")
			}
		}
		t.Stop()
	}()

	log.Info().Msg("Key Overlay running. Use the tray menu or Ctrl+C to stop.")
	t.Run()
	cancel()
}

func newConfigManager() (*config.Manager, error) {
	if *configPath != "" {
		return config.NewManagerAt(*configPath), nil
	}
	return config.NewManager()
}

// initLogging logs to stderr and a file next to the config.
func initLogging(cfgMgr *config.Manager, level string) error {
	dir := ""
	if cfgMgr.Path() != "" {
		dir = filepath.Dir(cfgMgr.Path())
	}
	err := logging.Init(logging.Options{Level: level, Dir: dir, Console: true})
	if err != nil && level != "" {
		// An unknown log_level falls back to info.
		if retry := logging.Init(logging.Options{Dir: dir, Console: true}); retry == nil {
			return fmt.Errorf("invalid log level %q, using info", level)
		}
	}
	return err
}

func startCapture(ctx context.Context, state *app.State, cfg config.Config, log zerolog.Logger) {
	name := cfg.Capture.Strategy
	if *strategy != "" {
		name = *strategy
	}
	kind, err := capture.ParseKind(name)
	if err != nil {
		log.Error().Err(err).Msg("Invalid capture strategy")
		state.SetStrategy(nil, err)
		return
	}

	opts := state.CaptureOptions()
	if *hookSource != "" {
		opts.HookSource = *hookSource
	}
	st, err := capture.New(kind, opts)
	if err != nil {
		log.Error().Err(err).Str("strategy", string(kind)).Msg("Capture unavailable")
		state.SetStrategy(nil, err)
		return
	}
	state.SetStrategy(st, nil)

	done := capture.Launch(ctx, st, logging.For("capture"))
	go func() {
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			state.StrategyFailed(err)
		}
	}()
}

func syncAutostart(want bool, log zerolog.Logger) {
	if autostart.IsEnabled() == want {
		return
	}
	if err := autostart.Set(want); err != nil {
		if errors.Is(err, autostart.ErrUnsupported) {
			log.Debug().Msg("Run on startup is not supported on this platform")
			return
		}
		log.Error().Err(err).Bool("enabled", want).Msg("Failed to update run on startup")
		return
	}
	log.Info().Bool("enabled", want).Msg("Run on startup updated")
}

func runHeadless(ctx context.Context, serverErr <-chan error, log zerolog.Logger) {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("Key Overlay running. Press Ctrl+C to stop.")
	select {
	case <-sigCtx.Done():
		log.Info().Msg("Shutting down...")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("API server exited")
		}
	}
}

// runClient attaches to the instance listening on port.
func runClient(port int, log zerolog.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := network.NewWSClient(fmt.Sprintf("127.0.0.1:%d", port), logging.For("client"))
	if *resetKeys {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		err := c.Reset(ctx)
		switch {
		case errors.Is(err, network.ErrResetTimeout):
			log.Fatal().Err(err).Msg("Running instance did not confirm the reset within 5s")
		case err != nil:
			log.Fatal().Err(err).Msg("No running instance reachable")
		}
		fmt.Println("Held keys cleared")
		return
	}

	c.OnKeys = func(keys []string) {
		if len(keys) == 0 {
			fmt.Println("(none)")
			return
		}
		fmt.Println(strings.Join(keys, " + "))
	}
	c.Run(ctx, true)
}

func printWindows(p window.Provider) {
	wins := p.List()
	sort.Slice(wins, func(i, j int) bool {
		if wins[i].Process != wins[j].Process {
			return wins[i].Process < wins[j].Process
		}
		return wins[i].Title < wins[j].Title
	})

	fmt.Println("Visible Windows:")
	fmt.Println("----------------")
	for _, w := range wins {
		fmt.Printf("HWND: %s\n", w.ID)
		fmt.Printf("  Process: %s\n", w.Process)
		fmt.Printf("  Title: %s\n", w.Title)
		if w.Class != "" {
			fmt.Printf("  Class: %s\n", w.Class)
		}
		fmt.Println()
	}
}
