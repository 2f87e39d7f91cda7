package runtime

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox is the embedded execution environment the adapter analyzes with.
// It mirrors the three capabilities the adapter needs: installing a named
// package into the environment, running source text for a value, and setting
// a global used to pass arguments without re-serializing them into source.
//
// Implementations must be safe for use from a single goroutine at a time;
// LuaSandbox additionally guards itself with a mutex.
type Sandbox interface {
	// LoadPackage installs the named package into the environment.
	// Installing an already-loaded package is a no-op.
	LoadPackage(name string) error

	// Run executes source text and returns its first return value converted
	// to a Go value (bool, int64, float64, string, []any, map[string]any or
	// nil).
	Run(code string) (any, error)

	// SetGlobal binds a global variable in the environment.
	SetGlobal(name string, value any) error

	// Close releases the environment. Further calls fail with
	// ErrSandboxClosed.
	Close() error
}

// LuaSandbox is the production Sandbox backed by gopher-lua.
type LuaSandbox struct {
	mu     sync.Mutex
	L      *lua.LState
	loaded map[string]bool
	closed bool
}

// NewLuaSandbox creates a Lua state with only the safe standard libraries
// opened (base, table, string, math). io, os, debug and package stay closed;
// analysis code has no business touching the host.
func NewLuaSandbox() *LuaSandbox {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	return &LuaSandbox{
		L:      L,
		loaded: make(map[string]bool),
	}
}

// LoadPackage installs one of the embedded Lua libraries. Loading is
// idempotent per package name.
func (s *LuaSandbox) LoadPackage(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSandboxClosed
	}
	if s.loaded[name] {
		return nil
	}

	src, ok := packageSources[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPackage, name)
	}

	err := s.protect(func() error {
		return s.L.DoString(src)
	})
	if err != nil {
		return fmt.Errorf("load package %q: %w", name, err)
	}

	s.loaded[name] = true
	return nil
}

// Run executes code and returns its first return value as a Go value.
func (s *LuaSandbox) Run(code string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSandboxClosed
	}

	var result any
	err := s.protect(func() error {
		fn, err := s.L.LoadString(code)
		if err != nil {
			return err
		}
		s.L.Push(fn)
		if err := s.L.PCall(0, 1, nil); err != nil {
			return err
		}
		ret := s.L.Get(-1)
		s.L.Pop(1)
		result = toGoValue(ret, make(map[*lua.LTable]bool))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	return result, nil
}

// SetGlobal binds a global in the Lua state.
func (s *LuaSandbox) SetGlobal(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSandboxClosed
	}

	lv, err := toLuaValue(value)
	if err != nil {
		return fmt.Errorf("set global %q: %w", name, err)
	}
	s.L.SetGlobal(name, lv)
	return nil
}

// Close releases the Lua state.
func (s *LuaSandbox) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.L.Close()
	return nil
}

// protect runs fn with panic recovery. gopher-lua panics on some internal
// errors; those must surface as errors, never cross the sandbox boundary.
func (s *LuaSandbox) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			case string:
				err = errors.New(v)
			default:
				err = fmt.Errorf("lua panic: %v", v)
			}
		}
	}()
	return fn()
}

// toGoValue converts a Lua value to a Go value. Tables with contiguous
// 1..n integer keys become []any, everything else becomes map[string]any.
// Cycles are broken to nil.
func toGoValue(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	isArray := true
	maxN := 0
	count := 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		kn, ok := k.(lua.LNumber)
		if !ok {
			isArray = false
			return
		}
		n := int(kn)
		if float64(n) != float64(kn) || n <= 0 {
			isArray = false
			return
		}
		if n > maxN {
			maxN = n
		}
	})

	if isArray && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = toGoValue(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGoValue(v, visited)
	})
	return m
}

// toLuaValue converts the argument types the adapter passes into Lua.
func toLuaValue(v any) (lua.LValue, error) {
	switch val := v.(type) {
	case nil:
		return lua.LNil, nil
	case bool:
		return lua.LBool(val), nil
	case int:
		return lua.LNumber(val), nil
	case int64:
		return lua.LNumber(val), nil
	case float64:
		return lua.LNumber(val), nil
	case string:
		return lua.LString(val), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}
