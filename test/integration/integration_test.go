package integration

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/require"
)

// TestFeatures runs the flex attribute features against a PostgreSQL
// container. FLEX_FEATURE_TAGS narrows the run to matching scenarios.
func TestFeatures(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("set INTEGRATION_TEST=1 to run the PostgreSQL feature suite")
	}

	ctx := context.Background()
	tc, err := NewTestContext(ctx)
	require.NoError(t, err, "start postgres")
	t.Cleanup(func() { tc.Close(ctx) })

	status := godog.TestSuite{
		Name: "flex",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			NewStepsContext(tc).RegisterSteps(sc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Tags:     os.Getenv("FLEX_FEATURE_TAGS"),
			Strict:   true,
			TestingT: t,
		},
	}.Run()
	require.Zero(t, status, "feature suite failed")
}
