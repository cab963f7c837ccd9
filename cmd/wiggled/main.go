// Command wiggled runs a detector with the monitor webserver and a
// synthetic drag-and-wiggle feed, so the HTTP surface and threshold tuning
// can be exercised without a real host application. Optionally records the
// generated motion into a trace database for later replay.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/wiggle/internal/config"
	"github.com/banshee-data/wiggle/internal/gesture"
	"github.com/banshee-data/wiggle/internal/monitor"
	"github.com/banshee-data/wiggle/internal/monitoring"
	"github.com/banshee-data/wiggle/internal/tracedb"
)

func main() {
	var (
		listenAddr = flag.String("listen", "localhost:8077", "monitor listen address")
		configPath = flag.String("config", "", "tuning config JSON (default: config/tuning.defaults.json)")
		tracePath  = flag.String("record", "", "record the synthetic feed into this trace database")
		frameRate  = flag.Float64("fps", 50, "synthetic feed frame rate")
	)
	flag.Parse()

	var tuning *config.TuningConfig
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		tuning = loaded
	} else {
		tuning = config.MustLoadDefaultConfig()
	}

	detector := gesture.NewDetector(gesture.ConfigFromTuning(tuning))
	detector.AddListener(func(ev gesture.Event) {
		monitoring.Logf("trigger: entity=%s ratio=%.2f reversals=%d forced=%v",
			ev.EntityID, ev.Metrics.WiggleRatio, ev.Metrics.Reversals, ev.Forced)
	})

	var recorder *tracedb.Recorder
	if *tracePath != "" {
		db, err := tracedb.Open(*tracePath)
		if err != nil {
			log.Fatalf("Failed to open trace database: %v", err)
		}
		defer db.Close()
		if recorder, err = tracedb.NewRecorder(db, "wiggled synthetic feed"); err != nil {
			log.Fatalf("Failed to start trace: %v", err)
		}
		recorder.Attach(detector)
		monitoring.Logf("recording to trace %s", recorder.TraceID())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws := monitor.NewWebServer(monitor.WebServerConfig{Addr: *listenAddr, Detector: detector})
	go func() {
		if err := ws.Start(); err != nil {
			log.Fatalf("Monitor server failed: %v", err)
		}
	}()

	go runSyntheticFeed(ctx, detector, recorder, *frameRate)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("monitor shutdown: %v", err)
	}
}

// runSyntheticFeed drives one entity through alternating phases: a few
// seconds of smooth dragging, then a second of hard wiggling. The wiggle
// phases should fire; the drag phases should not.
func runSyntheticFeed(ctx context.Context, d *gesture.Detector, rec *tracedb.Recorder, fps float64) {
	const entityID = "demo-node"
	d.StartTracking(entityID)

	interval := time.Duration(float64(time.Second) / fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t := now.Sub(start).Seconds()
			x, y := syntheticPosition(t)
			if rec != nil {
				rec.OnTick(d, entityID, x, y, t)
			} else {
				d.OnTick(entityID, x, y, t)
			}
		}
	}
}

// syntheticPosition traces a slow diagonal drag, overlaid with a violent
// horizontal oscillation during one second out of every four.
func syntheticPosition(t float64) (x, y float64) {
	x = 40 * t
	y = 25 * t
	if math.Mod(t, 4) > 3 {
		x += 60 * math.Sin(2*math.Pi*12*t)
	}
	return x, y
}
