package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"orbitfire/script"
	"orbitfire/sim"
	"orbitfire/telemetry"
)

func testOptions() options {
	return options{
		Sim:           sim.DefaultConfig(),
		Seed:          11,
		Bots:          2,
		BotScript:     script.DefaultScript,
		BotInterval:   250 * time.Millisecond,
		Ticks:         120,
		Step:          50 * time.Millisecond,
		SnapshotEvery: 50,
	}
}

func TestRunRecordsSnapshots(t *testing.T) {
	var out bytes.Buffer
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)

	sum, err := run(context.Background(), testOptions(), &out, nil, metrics)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Ticks != 120 {
		t.Fatalf("ticks = %d", sum.Ticks)
	}
	// Ticks 50 and 100, then the final state
	if sum.Snapshots != 3 {
		t.Fatalf("snapshots = %d", sum.Snapshots)
	}
	if sum.Shots == 0 {
		t.Fatal("bots never fired")
	}

	r := bytes.NewReader(out.Bytes())
	var last sim.Snapshot
	for i := 0; i < sum.Snapshots; i++ {
		snap, err := sim.DecodeSnapshot(r)
		if err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
		if snap.Tick <= last.Tick && i > 0 {
			t.Fatalf("snapshot %d tick %d after %d", i, snap.Tick, last.Tick)
		}
		last = snap
	}
	if last.Tick != 120 || len(last.Players) != 2 {
		t.Fatalf("last snapshot = tick %d, %d players", last.Tick, len(last.Players))
	}
	if r.Len() != 0 {
		t.Fatalf("%d trailing bytes", r.Len())
	}

	if n := testutil.CollectAndCount(reg, "orbitfire_tick_duration_seconds"); n != 1 {
		t.Fatalf("tick histogram series = %d", n)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	sum, err := run(ctx, testOptions(), &out, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if sum.Ticks != 0 {
		t.Fatalf("ticks = %d", sum.Ticks)
	}
}

func TestRunRejectsBadScript(t *testing.T) {
	opts := testOptions()
	opts.BotScript = "var nothing = 1;"
	if _, err := run(context.Background(), opts, &bytes.Buffer{}, nil, nil); !errors.Is(err, script.ErrNoDecide) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunOpensWithDriftShot(t *testing.T) {
	opts := testOptions()
	opts.Bots = 0
	opts.Ticks = 1
	opts.SnapshotEvery = 0

	var out bytes.Buffer
	sum, err := run(context.Background(), opts, &out, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Snapshots != 1 || sum.Shots != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	snap, err := sim.DecodeSnapshot(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Projectiles) != 1 {
		t.Fatalf("projectiles = %d", len(snap.Projectiles))
	}
}
