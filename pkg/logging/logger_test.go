package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDir points the package at a temporary log directory and resets global state
func setupTestDir(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir := logDir
	origInitErr := initErr
	origSessionID := sessionID

	logDir = tempDir
	initErr = nil
	initOnce = sync.Once{}
	sessionID = ""
	sessionIDOnce = sync.Once{}
	SetVerbose(false)

	t.Cleanup(func() {
		logDir = origLogDir
		initErr = origInitErr
		initOnce = sync.Once{}
		sessionID = origSessionID
		sessionIDOnce = sync.Once{}
		SetVerbose(false)
	})
}

// readEntries decodes the JSON lines of a log file
func readEntries(t *testing.T, path string) []map[string]interface{} {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "line: %s", scanner.Text())
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test-component")
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, "test-component", logger.component)
	assert.NotEmpty(t, logger.sessionID)
	assert.NotEmpty(t, logger.LogPath())

	_, err = os.Stat(logger.LogPath())
	assert.NoError(t, err, "log file should exist")
}

func TestLoggerLevels(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)

	logger.Debugf("hidden debug")
	logger.Infof("Info message %d", 123)
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	SetVerbose(true)
	logger.Debugf("Debug message")

	require.NoError(t, logger.Close())

	entries := readEntries(t, logger.LogPath())
	require.Len(t, entries, 4)

	want := []struct{ level, msg string }{
		{"INFO", "Info message 123"},
		{"WARN", "Warning message"},
		{"ERROR", "Error message"},
		{"DEBUG", "Debug message"},
	}
	for i, w := range want {
		assert.Equal(t, w.level, entries[i]["level"])
		assert.Equal(t, w.msg, entries[i]["msg"])
		assert.Equal(t, "test", entries[i]["component"])
		assert.Equal(t, logger.SessionID(), entries[i]["session"])
	}
}

func TestMultipleComponents(t *testing.T) {
	setupTestDir(t)

	logger1, err := NewLogger("component1")
	require.NoError(t, err)
	logger2, err := NewLogger("component2")
	require.NoError(t, err)

	// They should share the same session ID and log file
	assert.Equal(t, logger1.sessionID, logger2.sessionID)
	assert.Equal(t, logger1.LogPath(), logger2.LogPath())

	logger1.Infof("Message from component1")
	logger2.Infof("Message from component2")
	require.NoError(t, logger1.Close())
	require.NoError(t, logger2.Close())

	components := map[interface{}]bool{}
	for _, entry := range readEntries(t, logger1.LogPath()) {
		components[entry["component"]] = true
	}
	assert.True(t, components["component1"])
	assert.True(t, components["component2"])
}

func TestWith(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("client")
	require.NoError(t, err)

	logger.With("path", "/api/docs/workspaces").Infof("request")
	require.NoError(t, logger.Close())

	entries := readEntries(t, logger.LogPath())
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/docs/workspaces", entries[0]["path"])
}

func TestGetSessionID(t *testing.T) {
	setupTestDir(t)

	id1 := GetSessionID()
	id2 := GetSessionID()

	assert.Equal(t, id1, id2)
	assert.NotEmpty(t, id1)
}

func TestGetLogDirectory(t *testing.T) {
	setupTestDir(t)

	dir, err := GetLogDirectory()
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoggerClose(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)

	assert.NoError(t, logger.Close())
	// Close again should be safe
	assert.NoError(t, logger.Close())
}

func TestLogPathFormat(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)
	defer logger.Close()

	fileName := filepath.Base(logger.LogPath())
	assert.True(t, strings.HasSuffix(fileName, ".log"), "got %q", fileName)

	// <session-id>.log where the session id is a UUID
	sessionPart := strings.TrimSuffix(fileName, ".log")
	assert.Equal(t, logger.SessionID(), sessionPart)
	assert.Len(t, strings.Split(sessionPart, "-"), 5)
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Infof("dropped %s", "message")
	logger.With("k", "v").Errorf("dropped")
	assert.NoError(t, logger.Close())
}

func TestNewLogger_FallbackWhenDirectoryUnwritable(t *testing.T) {
	setupTestDir(t)

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	logDir = filepath.Join(blocker, "logs")

	logger, err := NewLogger("test")
	require.Error(t, err)
	require.NotNil(t, logger, "a stderr logger is returned alongside the error")

	assert.Empty(t, logger.LogPath())
	assert.Equal(t, GetSessionID(), logger.SessionID())
	logger.Infof("still usable")
}
