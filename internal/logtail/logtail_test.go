package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_SkipsBlankLinesAndCompacts(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	var content strings.Builder
	for i := 1; i <= 50; i++ {
		fmt.Fprintf(&content, "entry %d\n\n", i)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	got, err := Read(logPath, 3)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []string{"entry 48", "entry 49", "entry 50"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read() = %v, want %v", got, want)
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v, want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	line := `{"level":"warn","ts":"2026-10-16T10:00:00.000Z","caller":"state/store.go:10","msg":"mutation rejected","instance":"abc","op":"setPage"}`
	e, ok := Parse(line)
	if !ok {
		t.Fatalf("Parse() ok = false")
	}
	if e.Level != zapcore.WarnLevel || e.Message != "mutation rejected" {
		t.Fatalf("Parse() = %+v", e)
	}
	if _, found := e.Fields["caller"]; found {
		t.Fatalf("caller should not be a field: %+v", e.Fields)
	}
	want := "2026-10-16T10:00:00.000Z WARN  mutation rejected instance=abc op=setPage"
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	if _, ok := Parse("plain text"); ok {
		t.Errorf("Parse(plain text) ok = true, want false")
	}
}

func TestParse_EpochTimestamp(t *testing.T) {
	e, ok := Parse(`{"level":"info","ts":1700000000.5,"msg":"hi","n":3}`)
	if !ok {
		t.Fatalf("Parse() ok = false")
	}
	if e.Time == "" {
		t.Fatalf("Time is empty, want formatted epoch")
	}
	if fmt.Sprint(e.Fields["n"]) != "3" {
		t.Fatalf("Fields[n] = %v, want 3", e.Fields["n"])
	}
}

func TestFormat(t *testing.T) {
	lines := []string{
		`{"level":"debug","msg":"request sent","token":1}`,
		`{"level":"info","msg":"started"}`,
		`panic: something raw`,
		`{"level":"error","msg":"request failed","token":2}`,
	}

	got := Format(lines, zapcore.InfoLevel, false)
	want := []string{
		"INFO  started",
		"panic: something raw",
		"ERROR request failed token=2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	colored := Format(lines[3:], zapcore.DebugLevel, true)
	if len(colored) != 1 || !strings.Contains(colored[0], "ERROR") || !strings.Contains(colored[0], "request failed token=2") {
		t.Errorf("Format(color) = %q", colored)
	}
}
