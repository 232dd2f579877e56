package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesTriggers(t *testing.T) {
	var calls int32
	d := NewDebouncer(30*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebouncer_Stop(t *testing.T) {
	var calls int32
	d := NewDebouncer(20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	d.Trigger()
	d.Stop()
	d.Trigger()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "pods.yaml")
	require.NoError(t, os.WriteFile(target, []byte("pods: []\n"), 0o644))

	var calls int32
	fw, err := NewFileWatcher(target, 20*time.Millisecond, nil, func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))

	require.NoError(t, os.WriteFile(target, []byte("pods:\n  - name: geom\n"), 0o644))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestFileWatcher_RenameIntoPlace(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "pods.yaml")
	require.NoError(t, os.WriteFile(target, []byte("pods: []\n"), 0o644))

	var calls int32
	fw, err := NewFileWatcher(target, 20*time.Millisecond, nil, func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	tmp := filepath.Join(dir, ".pods.yaml.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("pods:\n  - name: text\n"), 0o644))
	require.NoError(t, os.Rename(tmp, target))

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestFileWatcher_StopTwice(t *testing.T) {
	fw, err := NewFileWatcher(filepath.Join(t.TempDir(), "pods.yaml"), 0, nil, func() error { return nil })
	require.NoError(t, err)
	require.NoError(t, fw.Start())

	assert.NoError(t, fw.Stop())
	assert.NoError(t, fw.Stop())
}
