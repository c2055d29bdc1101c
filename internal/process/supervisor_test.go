package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	execCommandContext = mockExecCommandContext
}

// mockExecCommandContext re-executes the test binary as TestHelperProcess.
func mockExecCommandContext(ctx context.Context, command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess is a helper process for mocking exec.Command
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "No command\n")
		os.Exit(2)
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "report":
		fmt.Println("STATUS:INSTALLING_DEPS")
		fmt.Println("\x1b[32mdone\x1b[0m")
		fmt.Println("STATUS:FINALIZING")
		os.Exit(0)
	case "fail":
		fmt.Println("compiling")
		fmt.Println("make: *** [all] Error 2")
		fmt.Println("STATUS:FINALIZING")
		os.Exit(3)
	case "stderr-fail":
		fmt.Fprintln(os.Stderr, "fatal: repository not found")
		os.Exit(128)
	case "printenv":
		fmt.Println(os.Getenv(args[0]))
		os.Exit(0)
	case "cat":
		_, _ = io.Copy(os.Stdout, os.Stdin)
		os.Exit(0)
	case "longline":
		fmt.Println(strings.Repeat("x", 2*maxLineLength))
		for i := 0; i < 2000; i++ {
			fmt.Println("after the long line")
		}
		os.Exit(0)
	case "hang":
		fmt.Println("waiting")
		time.Sleep(30 * time.Second)
		os.Exit(0)
	case "pkexec":
		if len(args) > 0 && args[0] == "deny" {
			os.Exit(126)
		}
		if len(args) > 0 && args[0] == "dismiss" {
			os.Exit(127)
		}
		if len(args) == 3 && args[0] == "sh" && args[1] == "-c" && strings.HasPrefix(args[2], "kill -9 -- -") {
			os.Exit(0)
		}
		fmt.Println(strings.Join(args, " "))
		os.Exit(0)
	case "which":
		if args[0] == "git" {
			os.Exit(0)
		}
		os.Exit(1)
	case "pgrep":
		switch args[1] {
		case "nfqws":
			fmt.Println("4242")
			os.Exit(0)
		case "broken":
			os.Exit(3)
		}
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Unknown command %q\n", cmd)
	os.Exit(2)
}

func collect(h *Handle) []string {
	var out []string
	for line := range h.Lines() {
		if line.Err == nil {
			out = append(out, line.Text)
		}
	}
	return out
}

func TestSupervisor_StartStreamsLines(t *testing.T) {
	sup := NewSupervisor("pkexec")

	h, err := sup.Start(context.Background(), Spec{Name: "report"})
	require.NoError(t, err)
	assert.Greater(t, h.PID(), 0)
	assert.False(t, h.Elevated())

	got := collect(h)
	require.NoError(t, h.Wait())

	assert.Equal(t, []string{"STATUS:INSTALLING_DEPS", "\x1b[32mdone\x1b[0m", "STATUS:FINALIZING"}, got)
	assert.Equal(t, "done", h.LastLine())
}

func TestSupervisor_NonZeroExitCarriesLastLine(t *testing.T) {
	sup := NewSupervisor("pkexec")

	h, err := sup.Start(context.Background(), Spec{Name: "fail"})
	require.NoError(t, err)
	collect(h)

	err = h.Wait()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "make: *** [all] Error 2", exitErr.LastLine)
	assert.Equal(t, "fail", exitErr.Command)

	// Wait is idempotent.
	assert.Same(t, err, h.Wait())
}

func TestSupervisor_StderrFallbackForLastLine(t *testing.T) {
	sup := NewSupervisor("")

	h, err := sup.Start(context.Background(), Spec{Name: "stderr-fail"})
	require.NoError(t, err)
	collect(h)

	var exitErr *ExitError
	require.True(t, errors.As(h.Wait(), &exitErr))
	assert.Equal(t, 128, exitErr.Code)
	assert.Equal(t, "fatal: repository not found", exitErr.LastLine)
}

func TestSupervisor_EnvAndStdin(t *testing.T) {
	sup := NewSupervisor("")

	h, err := sup.Start(context.Background(), Spec{Name: "printenv", Args: []string{"SCANLEVEL"}, Env: []string{"SCANLEVEL=quick"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"quick"}, collect(h))
	require.NoError(t, h.Wait())

	h, err = sup.Start(context.Background(), Spec{Name: "cat", Stdin: strings.NewReader("Y\nN\n")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "N"}, collect(h))
	require.NoError(t, h.Wait())
}

func TestSupervisor_ElevatedArgv(t *testing.T) {
	sup := NewSupervisor("pkexec")

	h, err := sup.Start(context.Background(), Spec{
		Name:     "/opt/zapret-src/blockcheck.sh",
		Env:      []string{"BATCH=1", "REPEATS=1"},
		Elevated: true,
	})
	require.NoError(t, err)
	assert.True(t, h.Elevated())
	assert.Equal(t, []string{"env BATCH=1 REPEATS=1 /opt/zapret-src/blockcheck.sh"}, collect(h))
	require.NoError(t, h.Wait())

	h, err = sup.Start(context.Background(), Spec{Name: "/bin/sh", Args: []string{"/tmp/job.sh"}, Elevated: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"/bin/sh /tmp/job.sh"}, collect(h))
	require.NoError(t, h.Wait())
}

func TestSupervisor_ElevationRefused(t *testing.T) {
	sup := NewSupervisor("pkexec")

	for _, name := range []string{"deny", "dismiss"} {
		h, err := sup.Start(context.Background(), Spec{Name: name, Elevated: true})
		require.NoError(t, err)
		collect(h)

		err = h.Wait()
		assert.True(t, IsPermissionDenied(err), "got %v", err)
	}
}

func TestSupervisor_SpawnError(t *testing.T) {
	original := execCommandContext
	defer func() { execCommandContext = original }()
	execCommandContext = exec.CommandContext

	sup := NewSupervisor("")
	_, err := sup.Start(context.Background(), Spec{Name: "/nonexistent/zapretctl-missing-binary"})
	require.Error(t, err)
	assert.True(t, IsSpawnError(err))
}

func TestSupervisor_Kill(t *testing.T) {
	sup := NewSupervisor("")

	h, err := sup.Start(context.Background(), Spec{Name: "hang"})
	require.NoError(t, err)

	first := <-h.Lines()
	assert.Equal(t, "waiting", first.Text)

	require.NoError(t, h.Kill(context.Background()))

	done := make(chan error, 1)
	go func() { done <- h.Wait() }()
	select {
	case err := <-done:
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, -1, exitErr.Code)
	case <-time.After(10 * time.Second):
		t.Fatal("Wait did not return after Kill")
	}
}

func TestSupervisor_ContextCancelKills(t *testing.T) {
	sup := NewSupervisor("")
	ctx, cancel := context.WithCancel(context.Background())

	h, err := sup.Start(ctx, Spec{Name: "hang"})
	require.NoError(t, err)
	<-h.Lines()
	cancel()

	done := make(chan error, 1)
	go func() { done <- h.Wait() }()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Wait did not return after cancellation")
	}
}

func TestSupervisor_KillPID(t *testing.T) {
	sup := NewSupervisor("pkexec")
	assert.NoError(t, sup.KillPID(context.Background(), 0, true))
	assert.NoError(t, sup.KillPID(context.Background(), 12345, true))
}

func TestSupervisor_OversizedLineDoesNotBlockWait(t *testing.T) {
	sup := NewSupervisor("")

	h, err := sup.Start(context.Background(), Spec{Name: "longline"})
	require.NoError(t, err)

	var lineErr error
	for line := range h.Lines() {
		if line.Err != nil {
			lineErr = line.Err
		}
	}
	assert.ErrorIs(t, lineErr, bufio.ErrTooLong)

	done := make(chan error, 1)
	go func() { done <- h.Wait() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Wait did not return after the line stream ended")
	}
}

func TestElevatedKillScript(t *testing.T) {
	assert.Equal(t, "kill -9 -- -4242 2>/dev/null || kill -9 4242", elevatedKillScript(4242))
}

func TestTailWriter(t *testing.T) {
	var w tailWriter
	_, _ = w.Write([]byte("first\nsec"))
	assert.Equal(t, "sec", w.Last())
	_, _ = w.Write([]byte("ond\n\n"))
	assert.Equal(t, "second", w.Last())
}
