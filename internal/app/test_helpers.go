package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/contractexplorer/internal/hcl_adapter"
	"github.com/specialistvlad/contractexplorer/internal/registry"
	"github.com/specialistvlad/contractexplorer/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. The app is
// closed when the test ends.
func SetupAppTest(t *testing.T, appConfig *Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	appConfig.LogLevel = "debug"
	testApp := NewApp(logBuffer, appConfig, hcl_adapter.NewLoader(), modules...)

	t.Cleanup(func() {
		if err := testApp.Close(); err != nil {
			t.Errorf("failed to close app: %v", err)
		}
		if os.Getenv("EXPLORER_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
