package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan   EventType = "plan"
	EventTypeSearch EventType = "search"
	EventTypeReport EventType = "report"
	EventTypeError  EventType = "error"
	EventTypeLLM    EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging. Events go to stderr so they never mix
// with the report preview on stdout; LLM traffic is mirrored to a jsonl file.
type Logger struct {
	out        io.Writer
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		out:        os.Stderr,
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Fprintf(l.out, "{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Fprintln(l.out, string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(sessionID string, steps []string) {
	l.Log(Event{
		Type:      EventTypePlan,
		SessionID: sessionID,
		Data:      map[string]any{"steps": steps},
	})
}

func (l *Logger) LogSearch(sessionID string, step int, found int) {
	l.Log(Event{
		Type:      EventTypeSearch,
		SessionID: sessionID,
		Data: map[string]any{
			"step":  step,
			"found": found,
		},
	})
}

func (l *Logger) LogReport(sessionID string, path string) {
	l.Log(Event{
		Type:      EventTypeReport,
		SessionID: sessionID,
		Data:      map[string]string{"path": path},
	})
}

func (l *Logger) LogError(sessionID string, stage string, err error) {
	l.Log(Event{
		Type:      EventTypeError,
		SessionID: sessionID,
		Stage:     stage,
		Data:      map[string]string{"error": err.Error()},
	})
}

func (l *Logger) LogLLM(stage string, prompt string, response string) {
	l.Log(Event{
		Type:  EventTypeLLM,
		Stage: stage,
		Data: map[string]string{
			"prompt":   prompt,
			"response": response,
		},
	})
}
