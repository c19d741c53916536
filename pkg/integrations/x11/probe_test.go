package x11

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog/worklog/pkg/window"
)

func TestProbesImplementContracts(t *testing.T) {
	var _ window.WindowProbe = (*WindowProbe)(nil)
	var _ window.IdleProbe = (*IdleProbe)(nil)
}

func TestConnectWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")

	err := NewWindowProbe("").Connect()
	require.Error(t, err)
	assert.True(t, window.IsConnectionError(err))

	err = NewIdleProbe("").Connect()
	require.Error(t, err)
	assert.True(t, window.IsConnectionError(err))
}

func TestQueriesBeforeConnect(t *testing.T) {
	title, program, err := NewWindowProbe(":0").TopLevelWindowInfo()
	assert.Nil(t, title)
	assert.Empty(t, program)
	assert.True(t, window.IsConnectionError(err))

	_, err = NewIdleProbe(":0").IdleSeconds()
	assert.ErrorIs(t, err, window.ErrNotConnected)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	p := NewWindowProbe(":0")
	assert.NoError(t, p.Disconnect())
	assert.NoError(t, p.Disconnect())

	i := NewIdleProbe(":0")
	assert.NoError(t, i.Disconnect())
	assert.NoError(t, i.Disconnect())
}

func TestLiveDisplay(t *testing.T) {
	if os.Getenv("DISPLAY") == "" {
		t.Skip("no X display available")
	}

	p := NewWindowProbe("")
	if err := p.Connect(); err != nil {
		t.Skipf("cannot connect to X display: %v", err)
	}
	defer p.Disconnect()

	title, program, err := p.TopLevelWindowInfo()
	require.NoError(t, err)
	if title != nil {
		t.Logf("title: %s", *title)
	}
	t.Logf("program: %s", program)

	require.NoError(t, p.Reset())
	_, _, err = p.TopLevelWindowInfo()
	require.NoError(t, err)

	idle := NewIdleProbe("")
	if err := idle.Connect(); err != nil {
		t.Skipf("MIT-SCREEN-SAVER unavailable: %v", err)
	}
	defer idle.Disconnect()

	secs, err := idle.IdleSeconds()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, secs, 0.0)

	require.NoError(t, idle.Reset())
	secs, err = idle.IdleSeconds()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, secs, 0.0)
}
