package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/affine-tools/pkg/affine/affinetest"
	"github.com/entrhq/affine-tools/pkg/config"
	"github.com/entrhq/affine-tools/pkg/logging"
)

var envKeys = []string{config.EnvAffineURL, config.EnvAffineEmail, config.EnvAffinePassword}

func TestMain(m *testing.M) {
	home, err := os.MkdirTemp("", "affine-tools-home")
	if err != nil {
		panic(err)
	}
	os.Setenv("HOME", home)

	code := m.Run()
	os.RemoveAll(home)
	os.Exit(code)
}

// clearEnv unsets the AFFiNE variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		if prev, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, prev) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func pointAt(t *testing.T, srv *affinetest.Server) {
	t.Helper()
	t.Setenv(config.EnvAffineURL, srv.URL)
	t.Setenv(config.EnvAffineEmail, affinetest.Email)
	t.Setenv(config.EnvAffinePassword, affinetest.Password)
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))

	full := append([]string{"--config", filepath.Join(t.TempDir(), "config.json"), "--env-file", ""}, args...)
	cmd.SetArgs(full)

	err := cmd.Execute()
	return out.String(), err
}

func TestToolsCommand(t *testing.T) {
	clearEnv(t)

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "", "tools", "--json")
		require.NoError(t, err)

		var infos []toolInfo
		require.NoError(t, json.Unmarshal([]byte(out), &infos))
		require.Len(t, infos, 5)
		assert.Equal(t, "affine_create_doc", infos[0].Name)
		assert.Equal(t, "AFFiNE: Create Doc", infos[0].Label)
	})

	t.Run("styled listing works without credentials", func(t *testing.T) {
		out, err := run(t, "", "tools")
		require.NoError(t, err)
		assert.Contains(t, out, "affine_read_doc")
		assert.Contains(t, out, "docId*")
	})
}

func TestCallCommand(t *testing.T) {
	srv := affinetest.NewServer()
	defer srv.Close()
	pointAt(t, srv)
	srv.AddDoc("ws-1", "doc-a", "Plan", "# Plan")

	t.Run("read doc", func(t *testing.T) {
		out, err := run(t, "", "call", "affine_read_doc", "--arg", "workspaceId=ws-1", "--arg", "docId=doc-a")
		require.NoError(t, err)
		assert.Contains(t, out, `"title": "Plan"`)
	})

	t.Run("markdown from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "body.md")
		require.NoError(t, os.WriteFile(path, []byte("from a file & more"), 0600))

		_, err := run(t, "", "call", "affine_update_doc",
			"--arg", "workspaceId=ws-1", "--arg", "docId=doc-a", "--arg", "markdown=@"+path)
		require.NoError(t, err)

		doc, ok := srv.Doc("ws-1", "doc-a")
		require.True(t, ok)
		assert.Equal(t, "from a file & more", doc.Markdown)
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := run(t, "", "call", "affine_delete_doc")
		assert.ErrorContains(t, err, "unknown tool")
	})

	t.Run("bad argument syntax", func(t *testing.T) {
		_, err := run(t, "", "call", "affine_list_docs", "--arg", "workspaceId")
		assert.ErrorContains(t, err, "want key=value")
	})
}

func TestCallCommand_MissingCredentials(t *testing.T) {
	clearEnv(t)

	_, err := run(t, "", "call", "affine_list_workspaces")
	assert.ErrorContains(t, err, "requires email and password")
}

func TestServeCommand(t *testing.T) {
	srv := affinetest.NewServer()
	defer srv.Close()
	pointAt(t, srv)
	srv.AddDoc("ws-1", "doc-a", "Plan", "a < b")

	stdin := `thinking out loud
<tool>
<tool_name>affine_read_doc</tool_name>
<arguments>
  <workspaceId>ws-1</workspaceId>
  <docId>doc-a</docId>
</arguments>
</tool>
<tool><tool_name>affine_read_doc</tool_name><arguments><workspaceId>ws-1</workspaceId></arguments></tool>
`
	out, err := run(t, stdin, "serve")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "<tool_result>"))
	assert.Contains(t, out, "<status>success</status>")
	assert.Contains(t, out, `a &lt; b`)
	assert.Contains(t, out, "<status>error</status>")
	assert.Contains(t, out, "docId is required")
	assert.Equal(t, 1, srv.SignIns())
}

func TestEnvFile(t *testing.T) {
	clearEnv(t)
	srv := affinetest.NewServer()
	defer srv.Close()

	envPath := filepath.Join(t.TempDir(), "affine.env")
	contents := "AFFINE_URL=" + srv.URL + "\nAFFINE_EMAIL=" + affinetest.Email + "\nAFFINE_PASSWORD=" + affinetest.Password + "\n"
	require.NoError(t, os.WriteFile(envPath, []byte(contents), 0600))

	out, err := run(t, "", "--env-file", envPath, "call", "affine_list_workspaces")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "ws-1"`)

	_, err = run(t, "", "--env-file", filepath.Join(t.TempDir(), "missing.env"), "tools")
	assert.ErrorContains(t, err, "load env file")
}

func TestReadCommand(t *testing.T) {
	srv := affinetest.NewServer()
	defer srv.Close()
	pointAt(t, srv)
	srv.AddDoc("ws-1", "doc-a", "Plan", "- one\n- two")

	out, err := run(t, "", "read", "ws-1", "doc-a")
	require.NoError(t, err)
	assert.Equal(t, "- one\n- two\n", out)

	out, err = run(t, "", "read", "ws-1", "doc-a", "--render", "--width", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan")
	assert.Contains(t, out, "one")
}

func TestParamSummary(t *testing.T) {
	schema := map[string]interface{}{
		"properties": map[string]interface{}{"docId": nil, "workspaceId": nil, "extra": nil},
		"required":   []string{"docId", "workspaceId"},
	}
	assert.Equal(t, "params: docId*, extra, workspaceId*", paramSummary(schema))
	assert.Empty(t, paramSummary(map[string]interface{}{}))
}

func TestLoggerFallbackDoesNotAbort(t *testing.T) {
	clearEnv(t)

	orig := newLogger
	t.Cleanup(func() { newLogger = orig })
	newLogger = func(component string) (*logging.Logger, error) {
		return logging.Nop(), errors.New("failed to create log directory: read-only file system")
	}

	out, err := run(t, "", "tools", "--json")
	require.NoError(t, err)

	var infos []toolInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Len(t, infos, 5)
}

func TestServeCommand_MalformedCallDoesNotDropLaterCalls(t *testing.T) {
	srv := affinetest.NewServer()
	defer srv.Close()
	pointAt(t, srv)
	srv.AddDoc("ws-1", "doc-a", "Plan", "body")

	stdin := `<tool><tool_name></tool_name></tool><tool><tool_name>affine_read_doc</tool_name>` +
		`<arguments><workspaceId>ws-1</workspaceId><docId>doc-a</docId></arguments></tool>
`
	out, err := run(t, stdin, "serve")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "<tool_result>"))
	assert.Contains(t, out, "tool_name is required")
	assert.Contains(t, out, "<tool_name>affine_read_doc</tool_name>\n<status>success</status>")
	assert.Len(t, srv.Requests(), 1)
}

func TestServeCommand_CDATAContainingClosingTag(t *testing.T) {
	srv := affinetest.NewServer()
	defer srv.Close()
	pointAt(t, srv)
	srv.AddDoc("ws-1", "doc-a", "Plan", "old")

	stdin := `<tool>
<tool_name>affine_update_doc</tool_name>
<arguments>
<workspaceId>ws-1</workspaceId>
<docId>doc-a</docId>
<markdown><![CDATA[Example:
</tool>
done]]></markdown>
</arguments>
</tool>
`
	out, err := run(t, stdin, "serve")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "<tool_result>"))
	assert.Contains(t, out, "<status>success</status>")

	doc, ok := srv.Doc("ws-1", "doc-a")
	require.True(t, ok)
	assert.Equal(t, "Example:\n</tool>\ndone", doc.Markdown)
}
