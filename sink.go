package avapi

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// FrameSink consumes frames from Drain.
// The frame and its Data must not be retained after WriteFrame returns.
type FrameSink interface {
	WriteFrame(f *Frame) error
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(f *Frame) error

// WriteFrame calls fn(f).
func (fn FrameSinkFunc) WriteFrame(f *Frame) error { return fn(f) }

type flusher interface {
	Flush() error
}

// WriterSink writes payloads verbatim to an io.Writer and flushes after
// every frame when the writer has a Flush method.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// WriteFrame appends f.Data to the writer.
func (s *WriterSink) WriteFrame(f *Frame) error {
	n, err := s.w.Write(f.Data)
	if err != nil {
		return err
	}
	if n != len(f.Data) {
		return io.ErrShortWrite
	}
	if fl, ok := s.w.(flusher); ok {
		return fl.Flush()
	}
	return nil
}

// FileSink is a WriterSink backed by a file.
type FileSink struct {
	*WriterSink
	f  *os.File
	bw *bufio.Writer
}

// OpenFileSink opens path for writing, creating it if needed.
// Existing content is not truncated.
func OpenFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sink: %w", err)
	}
	bw := bufio.NewWriterSize(f, 256*1024)
	return &FileSink{
		WriterSink: NewWriterSink(bw),
		f:          f,
		bw:         bw,
	}, nil
}

// Name returns the file path.
func (s *FileSink) Name() string { return s.f.Name() }

// Close flushes pending data and closes the file.
func (s *FileSink) Close() error {
	flushErr := s.bw.Flush()
	if err := s.f.Close(); err != nil {
		return err
	}
	return flushErr
}
