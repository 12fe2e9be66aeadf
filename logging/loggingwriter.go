package logging

import "net/http"

// loggingWriter records the status code and the number of bytes written.
type loggingWriter struct {
	writer http.ResponseWriter
	code   int
	bytes  int64
}

// status returns 200 when nothing was written.
func (lw *loggingWriter) status() int {
	if lw.code == 0 {
		return http.StatusOK
	}

	return lw.code
}

func (lw *loggingWriter) Header() http.Header { return lw.writer.Header() }

func (lw *loggingWriter) WriteHeader(code int) {
	if lw.code == 0 {
		lw.code = code
	}

	lw.writer.WriteHeader(code)
}

func (lw *loggingWriter) Write(data []byte) (int, error) {
	if lw.code == 0 {
		lw.code = http.StatusOK
	}

	n, err := lw.writer.Write(data)
	lw.bytes += int64(n)
	return n, err
}

func (lw *loggingWriter) Flush() {
	if f, ok := lw.writer.(http.Flusher); ok {
		f.Flush()
	}
}

func (lw *loggingWriter) Unwrap() http.ResponseWriter { return lw.writer }
