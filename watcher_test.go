package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestScriptWatcherReruns(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.ody")
	if err := os.WriteFile(script, []byte("1"), 0644); err != nil {
		t.Fatal(err)
	}

	reruns := make(chan struct{}, 10)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	w, err := newScriptWatcher(script, 10*time.Millisecond, func() { reruns <- struct{}{} }, stdout, stderr)
	if err != nil {
		t.Fatalf("newScriptWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)

	// other files in the directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.ody"), []byte("2"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(script, []byte("3"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reruns:
	case <-time.After(3 * time.Second):
		t.Fatal("script was not re-run after a write")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}

	if w.Runs() < 1 {
		t.Errorf("Runs() = %d, want at least 1", w.Runs())
	}
	if !strings.Contains(stdout.String(), "[WATCH] watching "+w.path) {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "[WATCH] script.ody changed, re-running") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestScriptWatcherRunsFinalContent(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.ody")
	if err := os.WriteFile(script, []byte("1"), 0644); err != nil {
		t.Fatal(err)
	}

	seen := make(chan string, 10)
	rerun := func() {
		content, err := os.ReadFile(script)
		if err != nil {
			t.Errorf("reading script: %v", err)
		}
		seen <- string(content)
	}

	w, err := newScriptWatcher(script, 100*time.Millisecond, rerun, &bytes.Buffer{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newScriptWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	// a save that arrives as two writes inside the quiet period
	if err := os.WriteFile(script, []byte("x = 4"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	f, err := os.OpenFile(script, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("0\nx + 2"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	select {
	case got := <-seen:
		if got != "x = 40\nx + 2" {
			t.Errorf("re-ran %q, want the finished script", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("script was not re-run")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestScriptWatcherMissingDirectory(t *testing.T) {
	w, err := newScriptWatcher(filepath.Join(t.TempDir(), "nope", "script.ody"), time.Millisecond, func() {}, &bytes.Buffer{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newScriptWatcher: %v", err)
	}
	if err := w.Run(context.Background()); err == nil {
		t.Error("expected error watching a missing directory")
	}
}
