package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"ripmedia/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ripmedia.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

func TestLast(t *testing.T) {
	path := writeLog(t, "a\nb\r\nc\n")
	tests := []struct {
		limit int
		want  []string
	}{
		{2, []string{"b", "c"}},
		{10, []string{"a", "b", "c"}},
		{0, nil},
	}
	for _, tt := range tests {
		lines, offset, err := logs.Last(path, tt.limit)
		if err != nil {
			t.Fatalf("Last(%d): %v", tt.limit, err)
		}
		if !reflect.DeepEqual(lines, tt.want) {
			t.Fatalf("Last(%d) = %#v, want %#v", tt.limit, lines, tt.want)
		}
		if offset != 7 {
			t.Fatalf("Last(%d) offset = %d, want 7", tt.limit, offset)
		}
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestLastDirectory(t *testing.T) {
	if _, _, err := logs.Last(t.TempDir(), 5); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestFollow(t *testing.T) {
	path := writeLog(t, "start\n")
	_, offset, err := logs.Last(path, 1)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		got []string
	)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	appendLog(t, path, "later\npart")
	time.Sleep(50 * time.Millisecond)
	appendLog(t, path, "ial\n")

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !reflect.DeepEqual(got, []string{"later", "partial"}) {
		t.Fatalf("followed lines = %#v", got)
	}
}

func TestFollowRestartsAfterTruncate(t *testing.T) {
	path := writeLog(t, "one\ntwo\nthree\n")
	_, offset, err := logs.Last(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("fresh\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var got []string
	err = logs.Follow(ctx, path, offset, time.Millisecond, func(line string) {
		got = append(got, line)
		cancel()
	})
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"fresh"}) {
		t.Fatalf("lines after truncate = %#v", got)
	}
}
