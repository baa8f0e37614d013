package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printKeys(&buf, "org-1", "ev-1"))

	out := buf.String()
	assert.Contains(t, out, "[dashboard,org-1,ev-1]")
	assert.Contains(t, out, "tasks/org-1")
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		assert.Len(t, strings.Fields(line), 2, line)
	}
}

func TestKeysRequiresOrg(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"keys"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Error(t, rootCmd.Execute())
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "eventops version "+Version)
}

func TestInvalidateCommand(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Keys []string `json:"keys"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = body.Keys

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"success":true,"data":{"keys":["[tasks,org-1]"]}}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"invalidate", "--server", srv.URL, "tasks/org-1"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, []string{"tasks/org-1"}, got)
	assert.Equal(t, "[tasks,org-1]\n", buf.String())
}
