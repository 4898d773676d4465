package filewriter

import (
	"os"
	"path/filepath"
	"seedvault/internal/providers"
	"sync"
	"time"
)

const DefaultDebounce = 10 * time.Second

// Producer returns the bytes to persist. It is invoked on the background
// task runner, so it must not touch live mutable state — capture a copy at
// schedule time.
type Producer func() []byte

// Writer persists producer-supplied bytes to a single file path with an
// all-or-nothing write (tmp file, fsync, rename). Rapid ScheduleWrite calls
// are coalesced: only the producer from the most recent call is written.
//
// Writer methods are safe for concurrent use, but the expected pattern is a
// single owning goroutine scheduling writes and the runner executing them.
type Writer struct {
	path     string
	debounce time.Duration
	runner   *TaskRunner
	logger   providers.Logger

	mu       sync.Mutex
	timer    *time.Timer
	producer Producer
	pending  bool
}

func NewWriter(path string, debounce time.Duration, runner *TaskRunner, logger providers.Logger) *Writer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Writer{
		path:     path,
		debounce: debounce,
		runner:   runner,
		logger:   logger,
	}
}

func (w *Writer) Path() string {
	return w.path
}

// ScheduleWrite registers producer for a debounced write. A later call
// before the debounce fires replaces the producer; the earlier state is
// never written.
func (w *Writer) ScheduleWrite(producer Producer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.producer = producer
	if !w.pending {
		w.pending = true
		w.timer = time.AfterFunc(w.debounce, w.onTimer)
	}
}

// HasPendingWrite reports whether a write has been scheduled but not yet
// handed to the background runner.
func (w *Writer) HasPendingWrite() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// DoScheduledWrite forces the pending write, if any, to complete before
// returning. Used at shutdown so a scheduled write is never dropped.
func (w *Writer) DoScheduledWrite() {
	producer, ok := w.take()
	if !ok {
		return
	}
	done := make(chan struct{})
	w.runner.PostTask(func() {
		w.write(producer())
		close(done)
	})
	<-done
}

// DeleteFile schedules a best-effort removal of the bound file.
func (w *Writer) DeleteFile() {
	w.runner.PostTask(func() {
		if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
			w.logger.Warnf(providers.TypeApp, "Failed to delete %s: %s", w.path, err)
		}
	})
}

func (w *Writer) onTimer() {
	producer, ok := w.take()
	if !ok {
		return
	}
	w.runner.PostTask(func() {
		w.write(producer())
	})
}

// take claims the pending producer, cancelling the debounce timer.
func (w *Writer) take() (Producer, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending {
		return nil, false
	}
	w.timer.Stop()
	producer := w.producer
	w.producer = nil
	w.pending = false
	return producer, true
}

// write lands data at w.path atomically. Runs on the background runner.
func (w *Writer) write(data []byte) {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		w.logger.Errorf(providers.TypeApp, "Failed to create dir for %s: %s", w.path, err)
		return
	}

	tmpFile := w.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		w.logger.Errorf(providers.TypeApp, "Failed to create %s: %s", tmpFile, err)
		return
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		w.logger.Errorf(providers.TypeApp, "Failed to write %s: %s", tmpFile, err)
		return
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		w.logger.Errorf(providers.TypeApp, "Failed to sync %s: %s", tmpFile, err)
		return
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		w.logger.Errorf(providers.TypeApp, "Failed to close %s: %s", tmpFile, err)
		return
	}

	if err = os.Rename(tmpFile, w.path); err != nil {
		os.Remove(tmpFile)
		w.logger.Errorf(providers.TypeApp, "Failed to rename %s: %s", tmpFile, err)
	}
}
