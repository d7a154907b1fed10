// Command headless runs bot-only matches without a window. It records msgpack
// snapshots and serves the same metrics as the game.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"orbitfire/collision"
	"orbitfire/config"
	"orbitfire/script"
	"orbitfire/sim"
	"orbitfire/telemetry"
	"orbitfire/vmath"
)

// options are the run parameters after flags and config are merged
type options struct {
	Sim           sim.Config
	Seed          int64
	Bots          int
	BotScript     string
	BotInterval   time.Duration
	Ticks         int
	Step          time.Duration // world time per tick
	SnapshotEvery int           // ticks between snapshots; 0 records only the last
}

// summary is what a finished run reports
type summary struct {
	Ticks     int
	Snapshots int
	Planets   int
	Shots     int
}

func main() {
	configPath := flag.String("config", "", "Config file (yaml, toml or json)")
	ticks := flag.Int("ticks", 3600, "Number of ticks to run")
	step := flag.Duration("step", 0, "World time per tick (0 uses sim.fixed_step)")
	bots := flag.Int("bots", 2, "Number of bots")
	snapshotPath := flag.String("snapshot", "", "Write msgpack snapshots to this file")
	snapshotEvery := flag.Int("snapshot-every", 60, "Ticks between snapshots")
	metricsAddr := flag.String("metrics-addr", "", "Serve prometheus metrics on this address")
	logLevel := flag.String("log-level", "", "Log level override")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *logLevel != "" {
		settings.Log.Level = *logLevel
	}
	if *metricsAddr != "" {
		settings.Metrics.Addr = *metricsAddr
	}
	logger := telemetry.NewLogger(os.Stdout, settings.Log.Level)

	simCfg, err := settings.SimConfig()
	if err != nil {
		level.Error(logger).Log("msg", "invalid config", "err", err)
		os.Exit(1)
	}
	code, err := script.LoadFile(settings.Bot.Script)
	if err != nil {
		level.Error(logger).Log("msg", "invalid bot script", "err", err)
		os.Exit(1)
	}

	opts := options{
		Sim:           simCfg,
		Seed:          settings.Seed,
		Bots:          *bots,
		BotScript:     code,
		BotInterval:   settings.Bot.Interval,
		Ticks:         *ticks,
		Step:          *step,
		SnapshotEvery: *snapshotEvery,
	}

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	if settings.Metrics.Addr != "" {
		go func() {
			level.Info(logger).Log("msg", "serving metrics", "addr", settings.Metrics.Addr)
			if err := telemetry.ServeMetrics(settings.Metrics.Addr, reg); err != nil {
				level.Error(logger).Log("msg", "metrics server stopped", "err", err)
			}
		}()
	}

	var out io.Writer = io.Discard
	if *snapshotPath != "" {
		f, err := os.Create(*snapshotPath)
		if err != nil {
			level.Error(logger).Log("msg", "create snapshot file", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := run(ctx, opts, out, logger, metrics)
	if err != nil && !errors.Is(err, context.Canceled) {
		level.Error(logger).Log("msg", "run failed", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log(
		"msg", "run finished",
		"ticks", sum.Ticks,
		"snapshots", sum.Snapshots,
		"planets_left", sum.Planets,
		"shots", sum.Shots,
	)
}

// run plays opts.Ticks ticks with bots only and writes snapshots to out. It
// stops early, returning ctx's error, when ctx is cancelled.
func run(ctx context.Context, opts options, out io.Writer, logger log.Logger, metrics *telemetry.Metrics) (summary, error) {
	var sum summary
	if logger == nil {
		logger = log.NewNopLogger()
	}
	step := opts.Step
	if step <= 0 {
		step = time.Duration(opts.Sim.FixedStep * float64(time.Second))
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	w := sim.NewWorld(opts.Sim, logger)
	planets, err := w.Populate(vmath.Vec2{}, sim.DefaultSystem())
	if err != nil {
		return sum, err
	}

	runner := script.NewRunner(0)
	if err := runner.Validate(opts.BotScript); err != nil {
		return sum, fmt.Errorf("bot script: %w", err)
	}
	var bots []*script.Controller
	for i, home := range sim.AssignHomes(planets, opts.Bots, rand.New(rand.NewSource(seed))) {
		p, err := w.AddPlayer(fmt.Sprintf("bot%d", i+1), home.ID, false)
		if err != nil {
			return sum, err
		}
		bots = append(bots, script.NewController(runner, opts.BotScript, p.ID, opts.BotInterval, logger))
	}
	w.SpawnOpeningDrift()
	level.Info(logger).Log("msg", "headless run", "bots", len(bots), "ticks", opts.Ticks, "step", step)

	buf := bufio.NewWriter(out)
	defer buf.Flush()
	record := func() error {
		if err := sim.EncodeSnapshot(buf, w.Snapshot()); err != nil {
			return err
		}
		sum.Snapshots++
		return nil
	}

	detector := collision.New()
	for sum.Ticks < opts.Ticks {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		for _, bot := range bots {
			bot.Update(w)
		}

		start := time.Now()
		w.Step(step, detector)
		took := time.Since(start)

		events := w.DrainEvents()
		for _, e := range events {
			if e.Kind == sim.EventShotFired {
				sum.Shots++
			}
		}
		if metrics != nil {
			metrics.ObserveEvents(events)
			metrics.ObserveTick(took, w)
		}
		sum.Ticks++

		if opts.SnapshotEvery > 0 && sum.Ticks%opts.SnapshotEvery == 0 {
			if err := record(); err != nil {
				return sum, err
			}
		}
	}

	// Always end with the final state
	if opts.SnapshotEvery <= 0 || sum.Ticks%opts.SnapshotEvery != 0 {
		if err := record(); err != nil {
			return sum, err
		}
	}
	sum.Planets = len(w.Planets())
	if err := buf.Flush(); err != nil {
		return sum, fmt.Errorf("flush snapshots: %w", err)
	}
	return sum, nil
}
