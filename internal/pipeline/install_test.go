package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapretctl/internal/process"
)

// installHarness swaps the elevated job, git and make for stand-in scripts.
type installHarness struct {
	mu        sync.Mutex
	jobScript string
	stubs     map[string]string
	started   []string
}

func (h *installHarness) rewrite(t *testing.T, env Env) func(process.Spec) process.Spec {
	dir := t.TempDir()
	return func(spec process.Spec) process.Spec {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.started = append(h.started, spec.String())

		key := spec.Name
		if spec.Name == "/bin/sh" && len(spec.Args) == 1 && spec.Args[0] == env.Config.Paths.InstallerJob {
			data, err := os.ReadFile(spec.Args[0])
			require.NoError(t, err)
			h.jobScript = string(data)
			key = "job"
		}
		body, ok := h.stubs[key]
		if !ok {
			t.Errorf("unexpected command %s", spec)
			body = "exit 99\n"
		}
		path := filepath.Join(dir, key+".sh")
		writeScript(t, path, body)
		return process.Spec{Name: path, Args: spec.Args, Env: spec.Env, Elevated: spec.Elevated}
	}
}

func (h *installHarness) Started() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.started...)
}

const jobStub = `echo "STATUS:INSTALLING_DEPS"
echo "Reading package lists..."
echo "STATUS:CONFIGURING"
echo "STATUS:FINALIZING"
`

func TestInstaller_ReusesExistingWorkTree(t *testing.T) {
	env, runner := testEnv(t)
	require.NoError(t, os.MkdirAll(env.Config.WorkDir, 0755))
	runner.present = map[string]bool{"git": true, "curl": true, "ipset": true, "iptables": true, "make": true, "gcc": true, "dnscrypt-proxy": true}

	var slept []time.Duration
	env.Sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	h := &installHarness{stubs: map[string]string{"job": jobStub}}
	env.Supervisor = rewritingStarter{Supervisor: process.NewSupervisor(""), rewrite: h.rewrite(t, env)}

	res, obs := drive(t, env, KindInstall, Installer{Env: env}.Task(InstallOptions{}))
	require.Equal(t, OutcomeSucceeded, res.Outcome, "err: %v", res.Err)

	var stages []Stage
	for _, s := range obs.Statuses() {
		stages = append(stages, s.Stage)
	}
	assert.Equal(t, []Stage{
		StageCheckingPrereqs,
		StageAwaitingElevatedScript,
		StageInstallingDeps,
		StageConfiguring,
		StageFinalizing,
		StageAwaitingElevatedScript,
		StageCloningRepo,
	}, stages)
	assert.Equal(t, "Using existing folder", obs.Statuses()[6].Text)
	assert.Equal(t, []string{"Reading package lists..."}, obs.LogLines())

	assert.Equal(t, []time.Duration{env.Config.NetworkSettleDelay}, slept)
	assert.Len(t, h.Started(), 1)

	// job script: only dig is missing, libraries always requested
	assert.NotContains(t, h.jobScript, "STATUS:CLEANING")
	assert.Contains(t, h.jobScript, "echo \"STATUS:INSTALLING_DEPS\"\napt-get update\napt-get install -y dnsutils\napt-get install -y zlib1g-dev\n")
	assert.Contains(t, h.jobScript, "apt-get install -y libnetfilter-queue-dev libnfnetlink-dev\n")
	assert.Contains(t, h.jobScript, "if [ -f '"+env.Config.DNSCrypt.ConfigPath+"' ]; then")

	_, err := os.Stat(env.Config.Paths.InstallerJob)
	assert.True(t, os.IsNotExist(err), "job script should be removed after success")
}

func TestInstaller_CloneAndBuild(t *testing.T) {
	env, _ := testEnv(t)

	h := &installHarness{stubs: map[string]string{
		"job":  jobStub,
		"git":  `mkdir -p "$3" && echo "Cloning into '$3'..."` + "\n",
		"make": "echo built\n",
	}}
	env.Supervisor = rewritingStarter{Supervisor: process.NewSupervisor(""), rewrite: h.rewrite(t, env)}

	res, obs := drive(t, env, KindInstall, Installer{Env: env}.Task(InstallOptions{}))
	require.Equal(t, OutcomeSucceeded, res.Outcome, "err: %v", res.Err)

	statuses := obs.Statuses()
	assert.Equal(t, StageCloningRepo, statuses[len(statuses)-2].Stage)
	assert.Equal(t, StageBuilding, statuses[len(statuses)-1].Stage)

	started := h.Started()
	require.Len(t, started, 3)
	assert.Equal(t, "git clone "+env.Config.RepoURL+" "+env.Config.WorkDir, started[1])
	assert.Equal(t, "make -C "+env.Config.WorkDir, started[2])
	assert.DirExists(t, env.Config.WorkDir)
}

func TestInstaller_OverwriteCleansFirst(t *testing.T) {
	env, _ := testEnv(t)
	require.NoError(t, os.MkdirAll(env.Config.WorkDir, 0755))

	h := &installHarness{stubs: map[string]string{
		"job":  "echo STATUS:CLEANING\nrm -rf \"" + env.Config.WorkDir + "\"\n" + jobStub,
		"git":  `mkdir -p "$3"` + "\n",
		"make": "true\n",
	}}
	env.Supervisor = rewritingStarter{Supervisor: process.NewSupervisor(""), rewrite: h.rewrite(t, env)}

	res, obs := drive(t, env, KindInstall, Installer{Env: env}.Task(InstallOptions{Overwrite: true}))
	require.Equal(t, OutcomeSucceeded, res.Outcome, "err: %v", res.Err)

	assert.Contains(t, h.jobScript, "echo \"STATUS:CLEANING\"\nrm -rf '"+env.Config.WorkDir+"'\n")
	assert.Equal(t, StageCleaning, obs.Statuses()[2].Stage)
	assert.Len(t, h.Started(), 3)
}

func TestInstaller_JobFailureReportsLastLine(t *testing.T) {
	env, _ := testEnv(t)

	h := &installHarness{stubs: map[string]string{
		"job": "echo STATUS:INSTALLING_DEPS\necho 'E: Unable to locate package dnscrypt-proxy'\necho STATUS:CONFIGURING\nexit 100\n",
	}}
	env.Supervisor = rewritingStarter{Supervisor: process.NewSupervisor(""), rewrite: h.rewrite(t, env)}

	res, _ := drive(t, env, KindInstall, Installer{Env: env}.Task(InstallOptions{}))
	require.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, ErrorNonZeroExit, Classify(res.Err))
	assert.Contains(t, res.Err.Error(), "E: Unable to locate package dnscrypt-proxy")

	var exitErr *process.ExitError
	require.ErrorAs(t, res.Err, &exitErr)
	assert.Equal(t, 100, exitErr.Code)
	assert.FileExists(t, env.Config.Paths.InstallerJob)
}

func TestInstaller_BuildFailure(t *testing.T) {
	env, _ := testEnv(t)

	h := &installHarness{stubs: map[string]string{
		"job":  jobStub,
		"git":  `mkdir -p "$3"` + "\n",
		"make": "echo 'nfq/nfqws.c:12: fatal error: libnetfilter_queue.h: No such file'\nexit 2\n",
	}}
	env.Supervisor = rewritingStarter{Supervisor: process.NewSupervisor(""), rewrite: h.rewrite(t, env)}

	res, _ := drive(t, env, KindInstall, Installer{Env: env}.Task(InstallOptions{}))
	require.Equal(t, OutcomeFailed, res.Outcome)
	assert.True(t, strings.HasPrefix(res.Err.Error(), "build failed"))
	assert.Contains(t, res.Err.Error(), "libnetfilter_queue.h")
}

func TestInstaller_UnknownDistroSkipsDependencies(t *testing.T) {
	env, _ := testEnv(t)
	env.DistroID = "nixos"
	require.NoError(t, os.MkdirAll(env.Config.WorkDir, 0755))

	h := &installHarness{stubs: map[string]string{"job": jobStub}}
	env.Supervisor = rewritingStarter{Supervisor: process.NewSupervisor(""), rewrite: h.rewrite(t, env)}

	res, _ := drive(t, env, KindInstall, Installer{Env: env}.Task(InstallOptions{}))
	require.Equal(t, OutcomeSucceeded, res.Outcome, "err: %v", res.Err)
	assert.NotContains(t, h.jobScript, "STATUS:INSTALLING_DEPS")
	assert.Contains(t, h.jobScript, "STATUS:CONFIGURING")
}
