// Package script runs Lua scripts against gap buffers.
//
// Scripts see a global "gap" module:
//
//	local b = gap.new({"a", "b", "c"})
//	b:set_position(1)
//	print(b:remove())  -- b
//	b:insert("x")
//	print(b)           -- [ a, x, Gap[2, 4), c, ]
//
// Indexes are 0-based, matching the Go API.
package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/amin-mir/gap-buffer/internal/engine/gapbuffer"
	"github.com/amin-mir/gap-buffer/internal/logging"
)

// DefaultTimeout bounds a single DoString or DoFile call.
const DefaultTimeout = 5 * time.Second

// State is a sandboxed Lua state with the gap module installed.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes calls from
// Go, and a State must not be shared with code that uses the LState directly.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	gapSize int
	out     io.Writer
	logger  *logging.Logger
	buffers int
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout bounds each execution. Zero disables the bound.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithGapSize sets the gap size used by gap.new when the script gives none.
func WithGapSize(n int) StateOption {
	return func(s *State) {
		s.gapSize = n
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) StateOption {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout: DefaultTimeout,
		gapSize: gapbuffer.DefaultGapSize,
		out:     os.Stdout,
		logger:  logging.Null(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("script")

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.L.SetGlobal("print", s.L.NewFunction(s.print))
	s.openGapModule()
	return s
}

// openSafeLibraries opens base, table, string and math, then removes the
// base functions that reach the file system or load code.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module", "collectgarbage"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (s *State) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(s.out, strings.Join(parts, "\t"))
	return 0
}

// DoString executes code.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.do(ctx, func() error {
		return s.L.DoString(code)
	})
}

// DoFile executes the file at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	s.logger.WithField("path", path).Debug("running script")
	return s.do(ctx, func() error {
		return s.L.DoFile(path)
	})
}

func (s *State) do(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	err := doWithRecovery(fn)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
	return err
}

// doWithRecovery executes fn, turning a panic into an error.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// Buffers returns the number of buffers scripts have created.
func (s *State) Buffers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffers
}

// IsClosed reports whether Close has been called.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. Later calls return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
