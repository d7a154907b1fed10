package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var (
	errCaptureCooldown = errors.New("capture on cooldown")
	errCaptureRunning  = errors.New("already profiling")
)

// Profiler captures a CPU profile and an execution trace when frames run slow
type Profiler struct {
	mu              sync.Mutex
	logger          log.Logger
	isProfiling     bool
	lastCaptureTime time.Time
	captureCooldown time.Duration
	profilesDir     string
	captureDuration time.Duration
}

// NewProfiler creates a profiler writing into dir
func NewProfiler(dir string, duration time.Duration, logger log.Logger) (*Profiler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Profiler{
		logger:          log.With(logger, "component", "profiler"),
		captureCooldown: 10 * time.Second, // Don't capture more than once every 10 seconds
		profilesDir:     dir,
		captureDuration: duration,
	}, nil
}

// CaptureProfile starts a CPU profile and a trace in the background. It
// returns at once; the files are written when the capture duration ends.
func (p *Profiler) CaptureProfile(reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.lastCaptureTime) < p.captureCooldown {
		return errCaptureCooldown
	}
	if p.isProfiling {
		return errCaptureRunning
	}
	p.isProfiling = true
	p.lastCaptureTime = time.Now()

	baseName := fmt.Sprintf("slow-frame-%s-%s", time.Now().Format("20060102-150405"), reason)

	go func() {
		defer func() {
			p.mu.Lock()
			p.isProfiling = false
			p.mu.Unlock()
		}()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := p.captureCPUProfile(baseName); err != nil {
				level.Error(p.logger).Log("msg", "cpu profile failed", "err", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := p.captureTrace(baseName); err != nil {
				level.Error(p.logger).Log("msg", "trace failed", "err", err)
			}
		}()
		wg.Wait()

		p.logSummary(baseName)
	}()
	return nil
}

func (p *Profiler) captureCPUProfile(baseName string) error {
	path := filepath.Join(p.profilesDir, baseName+".cpu.prof")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create profile file: %w", err)
	}
	defer file.Close()

	if err := pprof.StartCPUProfile(file); err != nil {
		return fmt.Errorf("start cpu profile: %w", err)
	}
	time.Sleep(p.captureDuration)
	pprof.StopCPUProfile()
	return nil
}

func (p *Profiler) captureTrace(baseName string) error {
	path := filepath.Join(p.profilesDir, baseName+".trace")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	defer file.Close()

	if err := trace.Start(file); err != nil {
		return fmt.Errorf("start trace: %w", err)
	}
	time.Sleep(p.captureDuration)
	trace.Stop()
	return nil
}

// logSummary reports where the capture went and the heap at the time
func (p *Profiler) logSummary(baseName string) {
	profilePath := filepath.Join(p.profilesDir, baseName+".cpu.prof")
	info, err := os.Stat(profilePath)
	if err != nil {
		level.Warn(p.logger).Log("msg", "profile missing", "err", err)
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	level.Info(p.logger).Log(
		"msg", "profile captured",
		"profile", profilePath,
		"trace", filepath.Join(p.profilesDir, baseName+".trace"),
		"size_kb", info.Size()/1024,
		"heap_kb", m.HeapAlloc/1024,
		"num_gc", m.NumGC,
		"view", "go tool pprof -http=:8080 "+profilePath,
	)
}

// IsProfiling returns whether a profile capture is currently in progress
func (p *Profiler) IsProfiling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isProfiling
}
