// Package diagnostics captures raw upstream response bodies to a local debug
// file when a resolution fails persistently. Batch refreshes run unattended,
// so the file is often the only way to see what a source actually returned.
// This is an operator side-channel: recording failures never affects the
// fetch result, and write errors are logged and dropped.
package diagnostics

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds what one capture writes; whole HTML pages are not
// useful past their head.
const maxBodyBytes = 4096

// Recorder appends failure captures to a debug file.
type Recorder struct {
	path string
	log  zerolog.Logger
	mu   sync.Mutex
}

// NewRecorder creates a recorder writing to path. An empty path disables
// capture.
func NewRecorder(path string, log zerolog.Logger) *Recorder {
	return &Recorder{
		path: path,
		log:  log.With().Str("component", "diagnostics").Logger(),
	}
}

// Record appends a truncated response body with its source and identifier.
func (r *Recorder) Record(source, identifier string, body []byte) {
	if r == nil || r.path == "" {
		return
	}

	if len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]
	}

	entry := fmt.Sprintf("=== %s source=%s identifier=%s ===\n%s\n\n",
		time.Now().UTC().Format(time.RFC3339), source, identifier, body)

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		r.log.Warn().Err(err).Str("path", r.path).Msg("cannot open debug file")
		return
	}
	defer f.Close()

	if _, err := f.WriteString(entry); err != nil {
		r.log.Warn().Err(err).Str("path", r.path).Msg("cannot write debug entry")
	}
}
