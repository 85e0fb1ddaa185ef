package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventFetch    EventType = "fetch"
	EventMap      EventType = "map"
	EventPlan     EventType = "plan"
	EventCopy     EventType = "copy"
	EventTag      EventType = "tag"
	EventImage    EventType = "image"
	EventNFO      EventType = "nfo"
	EventM3U      EventType = "m3u"
	EventSkip     EventType = "skip"
	EventConflict EventType = "conflict"
	EventError    EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single step of a tagging run
type Event struct {
	Timestamp    time.Time         `json:"ts"`
	Level        EventLevel        `json:"level"`
	Event        EventType         `json:"event"`
	RunID        string            `json:"run_id,omitempty"`
	ReleaseID    int               `json:"release_id,omitempty"`
	SrcPath      string            `json:"src_path,omitempty"`
	DestPath     string            `json:"dest_path,omitempty"`
	Action       string            `json:"action,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	BytesWritten int64             `json:"bytes_written,omitempty"`
	Duration     int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error        string            `json:"error,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
	runID    string
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Generate filename with timestamp
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	// Open file for writing
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	// Filter by minimum level
	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil // Skip events below minimum level
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// SetRunID stamps every following event with runID
func (l *EventLogger) SetRunID(runID string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.runID = runID
	l.mu.Unlock()
}

// LogFetch logs a release lookup
func (l *EventLogger) LogFetch(releaseID int, duration time.Duration, err error) error {
	level, errMsg := levelFor(err)
	return l.Log(&Event{
		Level:     level,
		Event:     EventFetch,
		ReleaseID: releaseID,
		Duration:  duration.Milliseconds(),
		Error:     errMsg,
	})
}

// LogMap logs the outcome of mapping a release to tracks
func (l *EventLogger) LogMap(releaseID, tracks, discs int, err error) error {
	level, errMsg := levelFor(err)
	return l.Log(&Event{
		Level:     level,
		Event:     EventMap,
		ReleaseID: releaseID,
		Error:     errMsg,
		Extra: map[string]string{
			"tracks": strconv.Itoa(tracks),
			"discs":  strconv.Itoa(discs),
		},
	})
}

// LogPlan logs a planned source to destination pairing
func (l *EventLogger) LogPlan(srcPath, destPath string, disc, track int) error {
	return l.Log(&Event{
		Level:    LevelDebug,
		Event:    EventPlan,
		SrcPath:  srcPath,
		DestPath: destPath,
		Extra: map[string]string{
			"disc":  strconv.Itoa(disc),
			"track": strconv.Itoa(track),
		},
	})
}

// LogCopy logs a file copy
func (l *EventLogger) LogCopy(srcPath, destPath string, bytesWritten int64, duration time.Duration, err error) error {
	level, errMsg := levelFor(err)
	return l.Log(&Event{
		Level:        level,
		Event:        EventCopy,
		SrcPath:      srcPath,
		DestPath:     destPath,
		Action:       "copy",
		BytesWritten: bytesWritten,
		Duration:     duration.Milliseconds(),
		Error:        errMsg,
	})
}

// LogTag logs a tag write
func (l *EventLogger) LogTag(destPath string, fields int, err error) error {
	level, errMsg := levelFor(err)
	return l.Log(&Event{
		Level:    level,
		Event:    EventTag,
		DestPath: destPath,
		Error:    errMsg,
		Extra: map[string]string{
			"fields": strconv.Itoa(fields),
		},
	})
}

// LogImage logs an image download
func (l *EventLogger) LogImage(uri, destPath string, bytesWritten int64, err error) error {
	level, errMsg := levelFor(err)
	if err != nil {
		level = LevelWarning
	}
	return l.Log(&Event{
		Level:        level,
		Event:        EventImage,
		SrcPath:      uri,
		DestPath:     destPath,
		BytesWritten: bytesWritten,
		Error:        errMsg,
	})
}

// LogWrite logs a generated file such as the nfo or the playlist
func (l *EventLogger) LogWrite(event EventType, destPath string, err error) error {
	level, errMsg := levelFor(err)
	return l.Log(&Event{
		Level:    level,
		Event:    event,
		DestPath: destPath,
		Error:    errMsg,
	})
}

// LogSkip logs an action not taken in dry-run mode
func (l *EventLogger) LogSkip(action, srcPath, destPath string) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventSkip,
		SrcPath:  srcPath,
		DestPath: destPath,
		Action:   action,
		Reason:   "dry run",
	})
}

// LogConflict logs a file conflict event
func (l *EventLogger) LogConflict(srcPath, destPath, reason string) error {
	return l.Log(&Event{
		Level:    LevelWarning,
		Event:    EventConflict,
		SrcPath:  srcPath,
		DestPath: destPath,
		Reason:   reason,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, srcPath string, err error) error {
	return l.Log(&Event{
		Level:   LevelError,
		Event:   event,
		SrcPath: srcPath,
		Error:   err.Error(),
	})
}

func levelFor(err error) (EventLevel, string) {
	if err != nil {
		return LevelError, err.Error()
	}
	return LevelInfo, ""
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
