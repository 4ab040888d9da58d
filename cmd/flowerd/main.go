// Command flowerd drives the flower: petals, light, touch, power and the
// remote-control link.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/sweeney/flower-controller/internal/behavior"
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/config"
	"github.com/sweeney/flower-controller/internal/controller"
	"github.com/sweeney/flower-controller/internal/flower"
	"github.com/sweeney/flower-controller/internal/gpio"
	"github.com/sweeney/flower-controller/internal/hw"
	"github.com/sweeney/flower-controller/internal/mqtt"
	"github.com/sweeney/flower-controller/internal/power"
	"github.com/sweeney/flower-controller/internal/radio"
	"github.com/sweeney/flower-controller/internal/remote"
	"github.com/sweeney/flower-controller/internal/sleep"
	"github.com/sweeney/flower-controller/internal/status"
	"github.com/sweeney/flower-controller/internal/touch"
	"github.com/sweeney/flower-controller/internal/update"
	"github.com/sweeney/flower-controller/internal/web"
)

const defaultConfigPath = "/etc/flowerd/flowerd.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file (.yaml, .toml or .json)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	printState := flag.Bool("print-state", false, "Print power state and exit")
	httpAddr := flag.String("http", "", `HTTP status address, overrides the config ("off" disables)`)
	flag.Parse()

	logger := newLogger(os.Stdout, *debug)
	slog.SetDefault(logger)

	if err := run(*configPath, *printState, *httpAddr, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(configPath string, printState bool, httpAddr string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.HTTP.Addr = resolveHTTPAddr(httpAddr, cfg.HTTP.Addr)
	hc := cfg.Hardware

	if err := hw.Init(); err != nil {
		return err
	}

	inputs, err := gpio.NewRealReader(hc.GPIOChip, hc.USBLine, hc.ChargeLine, hc.SwitchLine)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer inputs.Close()

	battery, err := hw.OpenBattery(hc.I2CBus, hc.BatteryDivider)
	if err != nil {
		return fmt.Errorf("init battery adc: %w", err)
	}
	defer battery.Close()
	sensor := hw.NewPowerSensor(battery, inputs)

	if printState {
		facts, err := sensor.ReadPowerFacts()
		if err != nil {
			return fmt.Errorf("read power: %w", err)
		}
		fmt.Println(formatPowerState(facts))
		return nil
	}

	ring, err := hw.OpenStrip(hc.PixelsSPI, hc.RingPixels)
	if err != nil {
		return fmt.Errorf("init pixels: %w", err)
	}
	defer ring.Close()
	statusPixel, err := hw.OpenStatusPixel(hc.StatusSPI)
	if err != nil {
		return fmt.Errorf("init status pixel: %w", err)
	}
	defer statusPixel.Close()
	servo, err := hw.OpenServo(hc.ServoPin)
	if err != nil {
		return fmt.Errorf("init servo: %w", err)
	}
	defer servo.Close()
	pixelsRail, err := gpio.NewRealOutput(hc.GPIOChip, hc.PixelsRailLine, "flower-pixels")
	if err != nil {
		return fmt.Errorf("init pixels rail: %w", err)
	}
	defer pixelsRail.Close()
	motorRail, err := gpio.NewRealOutput(hc.GPIOChip, hc.MotorRailLine, "flower-motor")
	if err != nil {
		return fmt.Errorf("init motor rail: %w", err)
	}
	defer motorRail.Close()

	clk := clock.NewMonotonic()
	detector := touch.NewDetector(logger)
	pad, err := gpio.NewRealPad(hc.GPIOChip, hc.TouchLine,
		time.Duration(cfg.Touch.ThresholdMs)*time.Millisecond,
		func() { detector.Edge(clk.Now()) })
	if err != nil {
		return fmt.Errorf("init touch pad: %w", err)
	}
	defer pad.Close()

	body := flower.New(clk, flower.Hardware{
		Ring:        ring,
		Status:      statusPixel,
		Motor:       servo,
		PixelsRail:  pixelsRail,
		MotorRail:   motorRail,
		PowerSensor: sensor,
	}, detector, flower.Options{
		RingPixels:      hc.RingPixels,
		ColorBrightness: hc.ColorBrightness,
		LowPowerMode:    cfg.Device.LowPowerMode,
		Seed:            uint64(time.Now().UnixNano()),
	}, logger)

	bus, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("connect system bus: %w", err)
	}
	wokeUp, err := sleep.WokeUp(cfg.DeepSleep.WakeMarker)
	if err != nil {
		logger.Warn("wake marker unreadable", "error", err)
	}

	publisher := mqtt.NewRealPublisher(mqtt.Options{
		Broker:      cfg.MQTT.Broker,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		BufferSize:  cfg.MQTT.BufferSize,
		Logger:      logger,
	})
	defer publisher.Close()

	updater := update.NewRunner(cfg.Update.Command, time.Duration(cfg.Update.TimeoutS)*time.Second, logger)
	links := remote.New(radio.NewBluetooth(bus, cfg.Bluetooth.Adapter), radio.NewWifi(bus), publisher, updater, logger)

	store := config.NewStore(configPath, cfg, logger)
	planner := behavior.NewSleepPlanner(clk, store, body, links, sleep.NewLogind(bus, cfg.DeepSleep.WakeMarker, logger), logger)
	sup := behavior.NewSupervisor(behavior.Deps{
		Clock:    clk,
		Device:   body,
		Remote:   links,
		Settings: store,
		Planner:  planner,
		Logger:   logger,
	})
	bloom := behavior.NewBloom(sup, body, logger)
	tracker := status.NewTracker(time.Now(), controller.TrackerConfig(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var reloads <-chan *config.Config
	if watcher, err := config.Watch(ctx, configPath, logger); err != nil {
		logger.Warn("config hot reload disabled", "error", err)
	} else {
		defer watcher.Close()
		reloads = watcher.Updates()
	}

	ctl := controller.New(controller.Deps{
		Clock:     clk,
		Detector:  detector,
		Pad:       pad,
		Behavior:  bloom,
		Body:      body,
		Planner:   planner,
		Store:     store,
		Links:     links,
		Publisher: publisher,
		Reloads:   reloads,
		Tracker:   tracker,
		Logger:    logger,
	})
	sup.Setup(wokeUp)
	ctl.PublishSystem("STARTUP", "")

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
		logger.Info("http status server listening", "addr", cfg.HTTP.Addr)
	}

	logger.Info("started",
		"name", cfg.Device.Name,
		"broker", cfg.MQTT.Broker,
		"woke_up", wokeUp,
		"deep_sleep", cfg.DeepSleep.Enabled)

	ticker := time.NewTicker(controller.TickInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	runLoop(ctl, ticker.C, sigCh, logger)
	return nil
}

// runLoop ticks the controller until a signal arrives, then publishes the
// shutdown event.
func runLoop(ctl *controller.Controller, tick <-chan time.Time, sig <-chan os.Signal, logger *slog.Logger) {
	for {
		select {
		case s := <-sig:
			logger.Info("shutting down", "signal", s.String())
			ctl.PublishSystem("SHUTDOWN", signalName(s))
			return
		case <-tick:
			ctl.Tick()
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// resolveHTTPAddr applies the -http flag: empty keeps the configured
// address, "off" disables the server.
func resolveHTTPAddr(flagValue, configured string) string {
	switch flagValue {
	case "":
		return configured
	case "off":
		return ""
	}
	return flagValue
}

func formatPowerState(f power.Facts) string {
	return fmt.Sprintf("battery: %.2f V (%d%%), usb: %t, charging: %t, switched on: %t",
		f.BatteryVoltage, f.BatteryLevel, f.USBPowered, f.Charging, f.SwitchedOn)
}
