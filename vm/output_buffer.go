package vm

import (
	"bytes"
	"io"
	"sync"

	"github.com/leocavalcante/vhp/values"
)

// OutputBuffer represents a single output buffer in the stack
type OutputBuffer struct {
	buffer    *bytes.Buffer
	name      string
	flags     int
	chunkSize int
	handler   string // Handler function name (empty for default)
	level     int
}

// OutputBufferStack manages nested output buffers, mirroring PHP's
// ob_start()/ob_get_clean() family (spec.md's ambient output layer).
type OutputBufferStack struct {
	mu            sync.Mutex
	buffers       []*OutputBuffer
	baseWriter    io.Writer // Original output writer (stdout)
	implicitFlush bool
}

// NewOutputBufferStack creates a new output buffer stack
func NewOutputBufferStack(baseWriter io.Writer) *OutputBufferStack {
	return &OutputBufferStack{
		buffers:       make([]*OutputBuffer, 0),
		baseWriter:    baseWriter,
		implicitFlush: false,
	}
}

// Start creates and pushes a new buffer onto the stack
func (obs *OutputBufferStack) Start(handler string, chunkSize int, flags int) bool {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	level := len(obs.buffers)
	buffer := &OutputBuffer{
		buffer:    &bytes.Buffer{},
		name:      "default output handler",
		flags:     flags,
		chunkSize: chunkSize,
		handler:   handler,
		level:     level,
	}

	obs.buffers = append(obs.buffers, buffer)
	return true
}

// GetContents returns the contents of the active buffer without removing it
func (obs *OutputBufferStack) GetContents() string {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.buffers) == 0 {
		return ""
	}

	return obs.buffers[len(obs.buffers)-1].buffer.String()
}

// GetLength returns the length of the active buffer
func (obs *OutputBufferStack) GetLength() int {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.buffers) == 0 {
		return 0
	}

	return obs.buffers[len(obs.buffers)-1].buffer.Len()
}

// GetLevel returns the nesting level of output buffering
func (obs *OutputBufferStack) GetLevel() int {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	return len(obs.buffers)
}

// Clean erases the contents of the active buffer
func (obs *OutputBufferStack) Clean() bool {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.buffers) == 0 {
		return false
	}

	obs.buffers[len(obs.buffers)-1].buffer.Reset()
	return true
}

// EndClean erases and removes the active buffer
func (obs *OutputBufferStack) EndClean() bool {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.buffers) == 0 {
		return false
	}

	obs.buffers = obs.buffers[:len(obs.buffers)-1]
	return true
}

// Flush sends the active buffer contents to the output
func (obs *OutputBufferStack) Flush() bool {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.buffers) == 0 {
		return false
	}

	activeBuffer := obs.buffers[len(obs.buffers)-1]
	content := activeBuffer.buffer.Bytes()

	if len(obs.buffers) > 1 {
		obs.buffers[len(obs.buffers)-2].buffer.Write(content)
	} else {
		obs.baseWriter.Write(content)
	}

	activeBuffer.buffer.Reset()
	return true
}

// EndFlush flushes and removes the active buffer
func (obs *OutputBufferStack) EndFlush() bool {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.buffers) == 0 {
		return false
	}

	activeBuffer := obs.buffers[len(obs.buffers)-1]
	content := activeBuffer.buffer.Bytes()

	obs.buffers = obs.buffers[:len(obs.buffers)-1]

	if len(obs.buffers) > 0 {
		obs.buffers[len(obs.buffers)-1].buffer.Write(content)
	} else {
		obs.baseWriter.Write(content)
	}

	return true
}

// GetClean returns contents and removes the active buffer
func (obs *OutputBufferStack) GetClean() (string, bool) {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.buffers) == 0 {
		return "", false
	}

	content := obs.buffers[len(obs.buffers)-1].buffer.String()
	obs.buffers = obs.buffers[:len(obs.buffers)-1]
	return content, true
}

// GetFlush returns contents, flushes, and removes the active buffer
func (obs *OutputBufferStack) GetFlush() (string, bool) {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.buffers) == 0 {
		return "", false
	}

	activeBuffer := obs.buffers[len(obs.buffers)-1]
	content := activeBuffer.buffer.String()

	obs.buffers = obs.buffers[:len(obs.buffers)-1]

	if len(obs.buffers) > 0 {
		obs.buffers[len(obs.buffers)-1].buffer.Write([]byte(content))
	} else {
		obs.baseWriter.Write([]byte(content))
	}

	return content, true
}

func bufferStatus(b *OutputBuffer) *values.Value {
	status := values.NewArrayValue(values.NewArray())
	arr := status.AsArray()
	arr.Set(values.StringKey("name"), values.NewString(b.name))
	arr.Set(values.StringKey("type"), values.NewInt(0)) // 0 for internal handler
	arr.Set(values.StringKey("flags"), values.NewInt(int64(b.flags)))
	arr.Set(values.StringKey("level"), values.NewInt(int64(b.level)))
	arr.Set(values.StringKey("chunk_size"), values.NewInt(int64(b.chunkSize)))
	arr.Set(values.StringKey("buffer_size"), values.NewInt(int64(b.buffer.Len())))
	arr.Set(values.StringKey("buffer_used"), values.NewInt(int64(b.buffer.Len())))
	return status
}

// GetStatus returns status information for the active buffer
func (obs *OutputBufferStack) GetStatus() *values.Value {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.buffers) == 0 {
		return values.NewArrayValue(values.NewArray())
	}
	return bufferStatus(obs.buffers[len(obs.buffers)-1])
}

// GetStatusFull returns status information for all buffers
func (obs *OutputBufferStack) GetStatusFull() *values.Value {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	result := values.NewArrayValue(values.NewArray())
	arr := result.AsArray()
	for _, buffer := range obs.buffers {
		arr.Append(bufferStatus(buffer))
	}
	return result
}

// ListHandlers returns a list of active output handler names
func (obs *OutputBufferStack) ListHandlers() []string {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	handlers := make([]string, 0, len(obs.buffers))
	for _, buffer := range obs.buffers {
		if buffer.handler != "" {
			handlers = append(handlers, buffer.handler)
		} else {
			handlers = append(handlers, "default output handler")
		}
	}
	return handlers
}

// SetImplicitFlush sets the implicit flush mode
func (obs *OutputBufferStack) SetImplicitFlush(on bool) {
	obs.mu.Lock()
	defer obs.mu.Unlock()
	obs.implicitFlush = on
}

// Write implements io.Writer, intercepting echo/print output into the
// topmost active buffer (or the base writer when no buffer is open).
func (obs *OutputBufferStack) Write(p []byte) (n int, err error) {
	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.buffers) > 0 {
		return obs.buffers[len(obs.buffers)-1].buffer.Write(p)
	}
	return obs.baseWriter.Write(p)
}

// FlushSystem flushes the underlying writer, when it supports it.
func (obs *OutputBufferStack) FlushSystem() {
	if flusher, ok := obs.baseWriter.(interface{ Flush() }); ok {
		flusher.Flush()
	}
}
