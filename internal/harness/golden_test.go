package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScenarios_Golden runs every checked-in scenario and compares its trace
// against the matching golden file. Regenerate with:
//
//	go test ./internal/harness -update
func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			require.Equal(t, strings.TrimSuffix(filepath.Base(path), ".yaml"), s.Name,
				"scenario name must match its file name")
			require.NoError(t, RunWithGolden(t, s))
		})
	}
}
