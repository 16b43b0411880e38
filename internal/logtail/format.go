package logtail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap/zapcore"
)

// Entry is one decoded JSON log line.
type Entry struct {
	Time    string
	Level   zapcore.Level
	Message string
	Fields  map[string]any
}

var reserved = []string{"ts", "level", "msg", "caller", "logger", "stacktrace"}

// Parse decodes a JSON log line written by the tablesync logger. Lines that
// are not JSON objects report false.
func Parse(line string) (Entry, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(line)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Entry{}, false
	}

	e := Entry{Level: zapcore.InfoLevel, Fields: make(map[string]any)}
	if lvl, ok := raw["level"].(string); ok {
		_ = e.Level.UnmarshalText([]byte(lvl))
	}
	e.Message, _ = raw["msg"].(string)
	switch ts := raw["ts"].(type) {
	case string:
		e.Time = ts
	case json.Number:
		if f, err := ts.Float64(); err == nil {
			sec := int64(f)
			e.Time = time.Unix(sec, int64((f-float64(sec))*1e9)).Format(time.RFC3339)
		}
	}
	for k, v := range raw {
		if !slices.Contains(reserved, k) {
			e.Fields[k] = v
		}
	}
	return e, true
}

// String renders the entry as "<time> <LEVEL> <msg> key=value ...", fields
// sorted by key.
func (e Entry) String() string {
	var b strings.Builder
	if e.Time != "" {
		b.WriteString(e.Time)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", e.Level.CapitalString(), e.Message)
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}

var levelStyles = map[zapcore.Level]lipgloss.Style{
	zapcore.DebugLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
	zapcore.InfoLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true),
	zapcore.WarnLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
	zapcore.ErrorLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
}

var faint = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))

// Format renders each line readable, dropping entries below minLevel. Lines that
// are not JSON pass through unchanged. With color set, the timestamp and
// level are styled.
func Format(lines []string, minLevel zapcore.Level, color bool) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		e, ok := Parse(line)
		if !ok {
			out = append(out, line)
			continue
		}
		if e.Level < minLevel {
			continue
		}
		if !color {
			out = append(out, e.String())
			continue
		}
		plain := e
		plain.Time = ""
		rest := strings.TrimPrefix(plain.String(), e.Level.CapitalString())
		level := e.Level.CapitalString()
		if style, ok := levelStyles[e.Level]; ok {
			level = style.Render(level)
		}
		ts := ""
		if e.Time != "" {
			ts = faint.Render(e.Time) + " "
		}
		out = append(out, ts+level+rest)
	}
	return out
}
