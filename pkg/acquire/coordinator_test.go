// file: pkg/acquire/coordinator_test.go

package acquire

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestScanLinesAnyNewline(t *testing.T) {
	input := "track 1\rtrack 2\ntrack 3\r\ndone"
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Split(scanLinesAnyNewline)

	var got []string
	for scanner.Scan() {
		got = append(got, scanner.Text())
	}
	want := []string{"track 1", "track 2", "track 3", "done"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadFailsWhenBusy(t *testing.T) {
	c := New("gw")
	c.state = StateRunning

	err := c.Read(context.Background(), Request{OutputPath: "/tmp/out.img"}, nil)
	if err == nil {
		t.Fatal("expected DeviceBusy error")
	}
	aerr, ok := err.(*Error)
	if !ok || aerr.Kind != KindDeviceBusy {
		t.Errorf("expected KindDeviceBusy, got %v", err)
	}
}

func TestInfoFailsWhenBusy(t *testing.T) {
	c := New("gw")
	c.state = StateStarting

	_, err := c.Info(context.Background(), time.Second)
	if err == nil {
		t.Fatal("expected DeviceBusy error")
	}
}

func TestCancelWithoutActiveReadReturnsFalse(t *testing.T) {
	c := New("gw")
	if c.Cancel("") {
		t.Error("expected Cancel to return false with no active read")
	}
}

// TestCancelSendsInterruptNotKill runs a stand-in "gw" that traps
// SIGINT and records having seen it before exiting. A SIGKILL, which
// exec.CommandContext would send without the cmd.Cancel override,
// cannot be trapped, so the marker file only appears if Cancel really
// delivered os.Interrupt.
func TestCancelSendsInterruptNotKill(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("SIGINT cannot be trapped on windows")
	}

	dir := t.TempDir()
	marker := filepath.Join(dir, "interrupted")
	script := filepath.Join(dir, "gw")
	body := fmt.Sprintf("#!/bin/sh\ntrap 'echo caught > %s; exit 0' INT\nsleep 5\n", marker)
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write stand-in gw: %v", err)
	}

	c := New(script)
	done := make(chan error, 1)
	go func() {
		req := Request{ID: "job-1", OutputPath: filepath.Join(dir, "out.img")}
		done <- c.Read(context.Background(), req, nil)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		running := c.state == StateRunning
		c.mu.Unlock()
		if running {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !c.Cancel("job-1") {
		t.Fatal("expected Cancel to report an active read")
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Read did not return after Cancel")
	}

	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("interrupt marker was never written, process was likely killed: %v", err)
	}
	if strings.TrimSpace(string(data)) != "caught" {
		t.Errorf("got %q", data)
	}
}
