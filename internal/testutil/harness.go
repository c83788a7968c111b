// Package testutil provides the harness used by app-level tests: it writes
// form definitions to a temporary directory, runs the App against them and
// captures both the printed results and the log output.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/formcalc/internal/app"
	"github.com/vk/formcalc/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of one harness run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// WriteFiles writes files, keyed by relative path, under a fresh temporary
// directory and returns that directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// RunApp loads files with the HCL loader, applies interactions and runs the
// App. Startup panics are returned as errors.
func RunApp(t *testing.T, files map[string]string, interactions ...string) *HarnessResult {
	t.Helper()
	dir := WriteFiles(t, files)

	var parsed []app.Interaction
	for _, s := range interactions {
		in, err := app.ParseInteraction(s)
		require.NoError(t, err)
		parsed = append(parsed, in)
	}

	cfg, err := app.NewConfig(app.Config{
		FormPaths:    []string{dir},
		Interactions: parsed,
		LogLevel:     "debug",
		LogFormat:    "text",
	})
	require.NoError(t, err)

	out, logs := &SafeBuffer{}, &SafeBuffer{}
	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(out, logs, cfg, hcl.NewLoader())
	}()
	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logs.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(context.Background())
	if os.Getenv("FORMCALC_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}
	return &HarnessResult{
		Output:    out.String(),
		LogOutput: logs.String(),
		Err:       runErr,
		App:       testApp,
	}
}
