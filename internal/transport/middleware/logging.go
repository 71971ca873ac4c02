package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/task-tracker/pkg/logger"
)

// maxLoggedBody caps how much of a request or response body is logged.
const maxLoggedBody = 4096

const masked = "[FILTERED]"

// secretMarkers match header and JSON field names once lowercased with
// dashes and underscores removed.
var secretMarkers = []string{
	"password",
	"token",
	"secret",
	"authorization",
	"cookie",
	"apikey",
	"credential",
	"session",
}

// LoggingMiddleware writes an access line when a request arrives and another
// when it completes. Method and path go on the context logger, so records the
// handlers write for this request carry them too.
func LoggingMiddleware(log *slog.Logger) func(next http.Handler) http.Handler {
	if _, ok := log.Handler().(*logger.ContextHandler); !ok {
		log = slog.New(logger.NewContextHandler(log.Handler()))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logger.With(r.Context(), "method", r.Method, "path", r.URL.Path)
			r = r.WithContext(ctx)

			reqBody := peekBody(r)
			log.InfoContext(ctx, "incoming request",
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", redactHeaders(r.Header),
				"body", redactBody(reqBody),
			)

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.statusCode()
			log.Log(ctx, levelFor(status), "request completed",
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.size,
				"body", redactBody(rec.body.Bytes()),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// recorder keeps the status, the byte count and the head of the response body.
type recorder struct {
	http.ResponseWriter
	status int
	size   int
	body   bytes.Buffer
}

func (rec *recorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(b []byte) (int, error) {
	if room := maxLoggedBody - rec.body.Len(); room > 0 {
		rec.body.Write(b[:min(len(b), room)])
	}
	rec.size += len(b)
	return rec.ResponseWriter.Write(b)
}

func (rec *recorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

func (rec *recorder) statusCode() int {
	if rec.status == 0 {
		return http.StatusOK
	}
	return rec.status
}

type bodyReader struct {
	io.Reader
	io.Closer
}

// peekBody reads up to maxLoggedBody bytes and puts them back in front of the
// rest of the body, so the handler still sees all of it.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
	r.Body = bodyReader{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}
	return head
}

func isSecret(name string) bool {
	n := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(name))
	for _, marker := range secretMarkers {
		if strings.Contains(n, marker) {
			return true
		}
	}
	return false
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSecret(name) {
			out[name] = masked
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody returns JSON with secret fields masked. Anything that is not
// complete JSON, including a body cut at maxLoggedBody, is summarised by size.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Sprintf("[%d bytes, not logged]", len(body))
	}

	out, err := json.Marshal(redactValue(doc))
	if err != nil {
		return fmt.Sprintf("[%d bytes, not logged]", len(body))
	}
	return string(out)
}

func redactValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for key, value := range t {
			if isSecret(key) {
				t[key] = masked
				continue
			}
			t[key] = redactValue(value)
		}
		return t
	case []interface{}:
		for i, item := range t {
			t[i] = redactValue(item)
		}
		return t
	default:
		return v
	}
}
