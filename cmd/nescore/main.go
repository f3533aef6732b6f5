// Package main implements the nescore NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	"nescore/internal/app"
	"nescore/internal/debug"
	"nescore/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file (optional for GUI mode)")
		configFile = flag.String("config", "", "Path to configuration file")
		debugMode  = flag.Bool("debug", false, "Enable debug mode")
		nogui      = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		frames     = flag.Int("frames", 120, "Number of frames to run in headless mode")
		trace      = flag.Bool("trace", false, "Log a nestest-style CPU trace line per instruction (headless only)")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}
	if *showVer {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	setupGracefulShutdown()

	fmt.Println("nescore - Go NES emulator starting")

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplicationWithMode(configPath, *nogui)
	if err != nil {
		glog.Exitf("failed to create application: %v", err)
	}

	if *nogui {
		config := application.GetConfig()
		config.Video.Backend = "headless"
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			glog.Errorf("application cleanup error: %v", err)
		}
	}()

	if *debugMode {
		config := application.GetConfig()
		config.UpdateDebug(true, true, true)
		application.ApplyDebugSettings()
	}

	if *romFile != "" {
		fmt.Printf("Loading ROM: %s\n", *romFile)
		if err := application.LoadROM(*romFile); err != nil {
			glog.Exitf("failed to load ROM: %v", err)
		}
		if *debugMode {
			application.ApplyDebugSettings()
		}
	}

	if *nogui {
		if *romFile == "" {
			glog.Exit("ROM file required for headless mode")
		}
		runHeadlessMode(application, *frames, *trace)
	} else {
		if err := runGUIMode(application); err != nil {
			glog.Exitf("GUI mode failed: %v", err)
		}
	}

	fmt.Println("Emulator shutting down")
}

// runGUIMode runs the full GUI application loop until the window closes.
func runGUIMode(application *app.Application) error {
	config := application.GetConfig()
	windowWidth, windowHeight := config.GetWindowResolution()
	fmt.Printf("Window: %dx%d (scale %dx)\n", windowWidth, windowHeight, config.Window.Scale)
	fmt.Printf("Video: %s, %s, vsync: %s\n",
		config.Video.Filter, config.Video.AspectRatio, enabledString(config.Video.VSync))

	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %v", err)
	}

	fmt.Printf("Session statistics: %d frames, %v uptime, %.1f avg FPS\n",
		application.GetFrameCount(), application.GetUptime(), application.GetFPS())
	return nil
}

// runHeadlessMode advances the emulator a fixed number of frames without a
// window, dumping a handful of frame buffers as PPM images for inspection.
// With traceEnabled, it instead steps instruction-by-instruction and logs a
// nestest-style trace line at each boundary.
func runHeadlessMode(application *app.Application, targetFrames int, traceEnabled bool) {
	fmt.Printf("Running headless for %d frames\n", targetFrames)

	b := application.GetBus()
	if b == nil {
		glog.Error("bus not initialized")
		return
	}

	if traceEnabled {
		tracer := debug.New(b)
		startFrame := b.GetFrameCount()
		for b.GetFrameCount()-startFrame < uint64(targetFrames) {
			glog.Info(tracer.Line())
			b.Step()
		}
		fmt.Println("Headless trace run complete")
		return
	}

	for frame := 0; frame < targetFrames; frame++ {
		b.Frame()

		if frame == targetFrames/4 || frame == targetFrames/2 || frame == targetFrames-1 {
			name := fmt.Sprintf("frame_%03d.ppm", frame+1)
			fb := b.GetFrameBuffer()
			saveFrameBufferAsPPM(fb, name)
			analyzeFrameBuffer(fb, frame+1)
		}
	}

	fmt.Println("Headless run complete")
}

// saveFrameBufferAsPPM saves the frame buffer as a PPM image file
func saveFrameBufferAsPPM(frameBuffer []uint32, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		glog.Errorf("failed to create %s: %v", filename, err)
		return
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n256 240\n255\n")
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frameBuffer[y*256+x]
			r := (pixel >> 16) & 0xFF
			g := (pixel >> 8) & 0xFF
			b := pixel & 0xFF
			fmt.Fprintf(file, "%d %d %d ", r, g, b)
		}
		fmt.Fprintf(file, "\n")
	}

	fmt.Printf("saved %s\n", filename)
}

// analyzeFrameBuffer prints a brief color-distribution summary for a frame.
func analyzeFrameBuffer(frameBuffer []uint32, frame int) {
	colorCounts := make(map[uint32]int)
	for _, pixel := range frameBuffer {
		colorCounts[pixel]++
	}

	nonBlackPixels := 0
	for color, count := range colorCounts {
		if color != 0x000000 {
			nonBlackPixels += count
		}
	}

	total := len(frameBuffer)
	fmt.Printf("frame %d: %d distinct colors, %d non-black pixels (%.1f%%)\n",
		frame, len(colorCounts), nonBlackPixels, float64(nonBlackPixels)/float64(total)*100)
}

// setupGracefulShutdown sets up signal handling for graceful shutdown
func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\ninterrupt received, shutting down")
		os.Exit(0)
	}()
}

// enabledString returns "enabled" or "disabled" based on boolean value
func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func printUsage() {
	fmt.Println("nescore - Go NES Emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nescore [options]                    # Start GUI mode without ROM")
	fmt.Println("  nescore -rom <file> [options]        # Start with ROM loaded")
	fmt.Println("  nescore -nogui -rom <file> [options] # Run headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS (default):")
	fmt.Println("  Player 1:   Arrow Keys / WASD - D-Pad")
	fmt.Println("              J                 - A Button")
	fmt.Println("              K                 - B Button")
	fmt.Println("              Enter             - Start")
	fmt.Println("              Space             - Select")
	fmt.Println()
	fmt.Println("  Special:    Escape (2x)        - Quit (double-tap within 3 seconds)")
	fmt.Println("              F1-F10             - Save states")
	fmt.Println("              Shift+F1-F10       - Load states")
	fmt.Println()
	fmt.Println("SUPPORTED MAPPERS: NROM, MMC1, UxROM, CNROM, MMC3, MMC2, FME-7")
}
