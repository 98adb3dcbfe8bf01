// Command goboy runs a DMG cartridge headless, optionally streaming
// the background to browsers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/thelolagemann/dmgcore/internal/gameboy"
	"github.com/thelolagemann/dmgcore/internal/ppu/palette"
	"github.com/thelolagemann/dmgcore/pkg/debugger"
	"github.com/thelolagemann/dmgcore/pkg/display/web"
	"github.com/thelolagemann/dmgcore/pkg/log"
	"github.com/thelolagemann/dmgcore/pkg/perf"
	"github.com/thelolagemann/dmgcore/pkg/render"
	"github.com/thelolagemann/dmgcore/pkg/utils"
)

// maxSpeed bounds -speed.
const maxSpeed = 16.0

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("goboy", flag.ContinueOnError)
	fs.SetOutput(stderr)

	romFile := fs.String("rom", "", "The rom file to load")
	bootROM := fs.String("boot", "", "The boot rom file to load")
	verbosity := fs.String("v", "info", "Log level: error, warn, info, debug or trace")
	renderer := fs.String("renderer", gameboy.RendererNone, "The renderer to use. Can be none or web")
	addr := fs.String("addr", ":8090", "The address the web renderer listens on")
	trace := fs.Bool("trace", false, "Log every executed instruction (requires -v debug)")
	bootDisable := fs.String("boot-disable-register", "", "The I/O register (hex) whose writes unmap the boot rom")
	speed := fs.Float64("speed", 1, "The speed to run the emulator at, 0 for unthrottled")
	frames := fs.Uint64("frames", 0, "Stop after this many frames, 0 to run until interrupted")
	paletteName := fs.String("palette", palette.Greyscale, "The palette to render with: "+strings.Join(palette.Names(), ", "))
	scale := fs.Int("scale", 1, "The scale of the screenshot")
	screenshot := fs.String("screenshot", "", "Write the final frame to this BMP file")
	plotFile := fs.String("plot", "", "Write a frame time plot to this PNG file")
	state := fs.String("state", "", "The state file to load")
	saveState := fs.String("save-state", "", "Write the final state to this file")
	stats := fs.Bool("statsview", false, "Serve runtime statistics on "+statsAddress)
	debugOnCrash := fs.Bool("debug-on-crash", false, "Open the debugger prompt when emulation crashes")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := log.NewWithLevel(*verbosity, stderr)

	if *romFile == "" {
		logger.Errorf("no rom given, use -rom")
		return 2
	}

	cfg := gameboy.DefaultConfig()
	cfg.Verbosity = *verbosity
	cfg.Renderer = *renderer
	cfg.TraceInstructions = *trace
	cfg.Speed = utils.Clamp(0, *speed, maxSpeed)
	if *bootDisable != "" {
		reg, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(*bootDisable), "0x"), 16, 16)
		if err != nil {
			logger.Errorf("invalid boot disable register %q: %v", *bootDisable, err)
			return 2
		}
		cfg.BootDisableRegister = uint16(reg)
	}

	pal, err := palette.Lookup(*paletteName)
	if err != nil {
		logger.Errorf("%v", err)
		return 2
	}

	rom, err := utils.LoadFile(*romFile)
	if err != nil {
		logger.Errorf("loading rom: %v", err)
		return 1
	}
	var boot []byte
	if *bootROM != "" {
		if boot, err = utils.LoadFile(*bootROM); err != nil {
			logger.Errorf("loading boot rom: %v", err)
			return 1
		}
	}

	recorder := perf.NewRecorder(perf.DefaultSize)
	var gb *gameboy.GameBoy
	opts := []gameboy.Opt{
		gameboy.WithConfig(cfg),
		gameboy.WithLogger(logger),
		gameboy.WithFrameHook(func(frame uint64) {
			recorder.Mark()
			if *frames > 0 && frame >= *frames {
				gb.Stop()
			}
		}),
	}
	if *state != "" {
		data, err := utils.LoadFile(*state)
		if err != nil {
			logger.Errorf("loading state: %v", err)
			return 1
		}
		opts = append(opts, gameboy.WithState(data))
	}

	gb, err = gameboy.NewGameBoy(boot, rom, opts...)
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if *stats {
		launchStats(logger)
	}
	if cfg.Renderer == gameboy.RendererWeb {
		hub := web.NewHub(web.WithLogger(logger))
		player := web.NewPlayer(hub, gb.PPU(), web.WithPalette(pal))
		go hub.Run(ctx)
		go func() {
			if err := player.Run(ctx); err != nil {
				logger.Errorf("web: %v", err)
			}
		}()
		go func() {
			if err := web.ListenAndServe(ctx, *addr, hub); err != nil {
				logger.Errorf("web: %v", err)
				cancel()
			}
		}()
	}

	status := 0
	err = gb.Run(ctx)
	cancel()

	var crash *gameboy.CrashError
	switch {
	case errors.As(err, &crash):
		status = 1
		fmt.Fprint(stderr, crash.Dump)
		if *debugOnCrash {
			if err := debugger.New(gb.CPU(), gb.Bus(), crash.Err).Interactive(); err != nil {
				logger.Errorf("%v", err)
			}
		}
	case err != nil && !errors.Is(err, context.Canceled):
		logger.Errorf("%v", err)
		status = 1
	}

	if *screenshot != "" {
		if err := writeScreenshot(gb, *screenshot, *paletteName, *scale); err != nil {
			logger.Errorf("screenshot: %v", err)
			status = 1
		}
	}
	if *plotFile != "" {
		if err := recorder.SavePlot(*plotFile); err != nil {
			logger.Errorf("plot: %v", err)
			status = 1
		}
	}
	if *saveState != "" && crash == nil {
		data, err := gb.SaveState()
		if err == nil {
			err = os.WriteFile(*saveState, data, 0644)
		}
		if err != nil {
			logger.Errorf("saving state: %v", err)
			status = 1
		}
	}

	logger.Infof("%s", recorder.Stats())
	return status
}

func writeScreenshot(gb *gameboy.GameBoy, filename, paletteName string, scale int) error {
	r, err := render.New(paletteName, scale)
	if err != nil {
		return err
	}
	snap, err := gb.PPU().Snapshot()
	if err != nil {
		return err
	}
	return render.SaveBMP(filename, r.Frame(snap))
}
