// Package logging routes the standard logger through a service-prefixed
// writer so every line reads "<RFC3339 UTC> <service> <message>".
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type prefixedWriter struct {
	service string
	out     io.Writer
	now     func() time.Time
}

func (w *prefixedWriter) Write(p []byte) (int, error) {
	timestamp := w.now().UTC().Format(time.RFC3339)
	prefix := fmt.Sprintf("%s %s ", timestamp, w.service)
	lines := bytes.Split(p, []byte{'\n'})

	var buf bytes.Buffer
	for i, line := range lines {
		if len(line) == 0 && i == len(lines)-1 {
			break
		}
		buf.WriteString(prefix)
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if buf.Len() == 0 {
		return len(p), nil
	}
	if _, err := w.out.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// NewWriter wraps out with the service prefix.
func NewWriter(service string, out io.Writer) io.Writer {
	return &prefixedWriter{service: service, out: out, now: time.Now}
}

// Setup configures the default logger to write to stdout and, when logDir
// is non-empty, to <logDir>/<service>.log. The returned file (nil without a
// log dir) should be closed on shutdown.
func Setup(serviceName, logDir string) (*os.File, error) {
	var out io.Writer = os.Stdout
	var file *os.File

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, err
		}
		logPath := filepath.Join(logDir, serviceName+".log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		file = f
		out = io.MultiWriter(os.Stdout, f)
	}

	log.SetOutput(NewWriter(serviceName, out))
	log.SetFlags(0)
	log.SetPrefix("")
	return file, nil
}

// Requests logs the method, path, status and duration of every request.
func Requests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
