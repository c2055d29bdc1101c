package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"zapretctl/internal/config"
	"zapretctl/internal/process"
	"zapretctl/internal/strategy"
)

// fakeRunner records one-shot commands and answers probes from maps.
type fakeRunner struct {
	mu       sync.Mutex
	running  map[string]bool
	probeErr map[string]error
	present  map[string]bool
	calls    []process.Spec
	runFn    func(spec process.Spec) (string, error)
}

func (f *fakeRunner) Run(ctx context.Context, spec process.Spec) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, spec)
	fn := f.runFn
	f.mu.Unlock()
	if fn != nil {
		return fn(spec)
	}
	return "", nil
}

func (f *fakeRunner) LookPath(ctx context.Context, name string) bool {
	return f.present[name]
}

func (f *fakeRunner) IsRunning(ctx context.Context, name string) (bool, error) {
	if err := f.probeErr[name]; err != nil {
		return false, err
	}
	return f.running[name], nil
}

func (f *fakeRunner) Calls() []process.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]process.Spec(nil), f.calls...)
}

// rewritingStarter runs a stand-in for selected commands so tests never
// touch the real system.
type rewritingStarter struct {
	*process.Supervisor
	rewrite func(spec process.Spec) process.Spec
}

func (r rewritingStarter) Start(ctx context.Context, spec process.Spec) (*process.Handle, error) {
	if r.rewrite != nil {
		spec = r.rewrite(spec)
	}
	return r.Supervisor.Start(ctx, spec)
}

// recordingObserver keeps every message the controller processed.
type recordingObserver struct {
	mu   sync.Mutex
	msgs []Message
}

func (o *recordingObserver) Observe(run *Run, msg Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
}

func (o *recordingObserver) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.msgs...)
}

func (o *recordingObserver) Statuses() []StatusChanged {
	var out []StatusChanged
	for _, m := range o.Messages() {
		if s, ok := m.(StatusChanged); ok {
			out = append(out, s)
		}
	}
	return out
}

func (o *recordingObserver) LogLines() []string {
	var out []string
	for _, m := range o.Messages() {
		if l, ok := m.(LogLine); ok {
			out = append(out, l.Text)
		}
	}
	return out
}

func (o *recordingObserver) HasFinished() bool {
	for _, m := range o.Messages() {
		if _, ok := m.(Finished); ok {
			return true
		}
	}
	return false
}

// writeScript writes an executable shell script.
func writeScript(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

// testEnv returns an Env rooted in a temp dir with elevation disabled.
func testEnv(t *testing.T) (Env, *fakeRunner) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.GetDefaultConfig()
	cfg.WorkDir = filepath.Join(dir, "zapret")
	cfg.SystemDir = filepath.Join(dir, "opt", "zapret")
	cfg.SystemConfigPath = filepath.Join(dir, "opt", "zapret", "config")
	cfg.StrategyStorePath = filepath.Join(dir, "strategies.json")
	cfg.Paths = config.PathsConfig{
		InstallAnswers: filepath.Join(dir, "answers.txt"),
		WrapperScript:  filepath.Join(dir, "wrapper.sh"),
		InstallerJob:   filepath.Join(dir, "job.sh"),
		ConfigStaging:  filepath.Join(dir, "config_new"),
	}
	cfg.DNSCrypt.ConfigPath = filepath.Join(dir, "dnscrypt-proxy.toml")
	cfg.Elevation.Command = ""

	runner := &fakeRunner{running: map[string]bool{}, present: map[string]bool{}}
	env := Env{
		Config:     cfg,
		Supervisor: process.NewSupervisor(""),
		Runner:     runner,
		Store:      strategy.NewStore(cfg.StrategyStorePath),
		DistroID:   "ubuntu",
		Sleep:      func(ctx context.Context, d time.Duration) error { return ctx.Err() },
	}
	return env, runner
}

// drive runs task under a controller until it stops.
func drive(t *testing.T, env Env, kind Kind, task Task) (Result, *recordingObserver) {
	t.Helper()
	obs := &recordingObserver{}
	ctrl := Start(context.Background(), kind, env.Supervisor, task, obs)

	done := make(chan Result, 1)
	go func() { done <- ctrl.Drive(context.Background(), 5*time.Millisecond) }()
	select {
	case res := <-done:
		return res, obs
	case <-time.After(30 * time.Second):
		t.Fatal("pipeline did not finish")
		return Result{}, nil
	}
}
