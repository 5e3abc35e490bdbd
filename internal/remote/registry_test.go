package remote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRemote is a minimal backend for registry tests
type stubRemote struct {
	name   string
	closed bool
}

func (s *stubRemote) Name() string                                    { return s.name }
func (s *stubRemote) SendCommand(context.Context, string, string) bool { return true }
func (s *stubRemote) Validate(context.Context) bool                   { return true }
func (s *stubRemote) Close() error                                    { s.closed = true; return nil }

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register(&stubRemote{name: "smartthings"})
	require.NoError(t, err)

	// Duplicate registration fails
	err = registry.Register(&stubRemote{name: "smartthings"})
	assert.ErrorIs(t, err, ErrBackendAlreadyExists)
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	stub := &stubRemote{name: "tizen"}
	require.NoError(t, registry.Register(stub))

	backend, err := registry.Get("tizen")
	require.NoError(t, err)
	assert.Equal(t, "tizen", backend.Name())

	_, err = registry.Get("unknown")
	assert.ErrorIs(t, err, ErrBackendNotFound)
}

func TestRegistry_List(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubRemote{name: "tizen"}))
	require.NoError(t, registry.Register(&stubRemote{name: "smartthings"}))

	assert.Equal(t, []string{"smartthings", "tizen"}, registry.List())
}

func TestRegistry_CloseAll(t *testing.T) {
	registry := NewRegistry()
	first := &stubRemote{name: "smartthings"}
	second := &stubRemote{name: "tizen"}
	require.NoError(t, registry.Register(first))
	require.NoError(t, registry.Register(second))

	require.NoError(t, registry.CloseAll())
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}
