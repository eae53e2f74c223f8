package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/wellsgz/udprtt/internal/probe"
)

// emptyConfig returns a config file path so tests never pick up a user config
func emptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func startEchoServer(t *testing.T) int {
	t.Helper()

	srv, err := probe.NewServer(probe.Config{Port: 0, MessageLength: 512})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("Serve() did not return after cancel")
		}
	})

	return srv.LocalAddr().(*net.UDPAddr).Port
}

func TestVersionFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"--version"}, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "udprtt") {
		t.Errorf("version output = %q, want it to mention udprtt", stdout.String())
	}
}

func TestClientConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"reserved strategy", []string{"--strategy", "1"}},
		{"hostname peer", []string{"--peer", "localhost"}},
		{"zero port", []string{"--port", "0"}},
		{"oversized length", []string{"--length", "70000"}},
		{"zero count", []string{"--count", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"client", "--config", emptyConfig(t)}, tt.args...)
			var stdout, stderr bytes.Buffer
			err := run(args, &stdout, &stderr)
			if !errors.Is(err, probe.ErrConfiguration) {
				t.Errorf("run(%v) error = %v, want ErrConfiguration", tt.args, err)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout = %q, want empty on error", stdout.String())
			}
		})
	}
}

func TestClientRejectsTUIWithJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"client", "--config", emptyConfig(t), "--tui", "--output", "json"}, &stdout, &stderr)
	if err == nil {
		t.Fatal("run() error = nil, want error for tui with json output")
	}
}

func TestClientAgainstEchoServer(t *testing.T) {
	port := startEchoServer(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"client",
		"--config", emptyConfig(t),
		"--port", strconv.Itoa(port),
		"--count", "25",
		"--length", "64",
		"--output", "json",
		"--log-level", "error",
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run() error = %v (stderr: %s)", err, stderr.String())
	}

	var report probe.Report
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("Unmarshal() error = %v, output %q", err, stdout.String())
	}
	if report.Count != 25 {
		t.Errorf("report.Count = %d, want 25", report.Count)
	}
	if report.MinUs > report.MeanUs || report.MeanUs > report.MaxUs {
		t.Errorf("want min <= mean <= max, got %v %v %v", report.MinUs, report.MeanUs, report.MaxUs)
	}
}

func TestClientTextSummary(t *testing.T) {
	port := startEchoServer(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"client",
		"--config", emptyConfig(t),
		"--port", strconv.Itoa(port),
		"--count", "5",
		"--strategy", "2",
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "Mean: ") {
		t.Errorf("summary = %q, want it to start with \"Mean: \"", stdout.String())
	}
	if strings.Contains(stdout.String(), "level=") {
		t.Errorf("summary contains log output: %q", stdout.String())
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "udprtt", "config.yaml")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"config", "init", "--config", path}, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "Created ") {
		t.Errorf("first init output = %q, want Created", stdout.String())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	stdout.Reset()
	if err := run([]string{"config", "init", "--config", path}, &stdout, &stderr); err != nil {
		t.Fatalf("second run() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "already exists") {
		t.Errorf("second init output = %q, want already exists", stdout.String())
	}
}
