package integration

import (
	"context"
	"os"
	"testing"

	"github.com/dimitrije/teamsync/internal/config"
	"github.com/dimitrije/teamsync/internal/github"
	"github.com/dimitrije/teamsync/tests/testutil"
)

const testOrg = "class-org"

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// setupTest creates a test database and returns cleanup function
func setupTest(t *testing.T) *testutil.TestDB {
	t.Helper()
	return testutil.SetupTestDB(t)
}

// setupOrganization starts a fake organization and a client talking to it
func setupOrganization(t *testing.T) (*testutil.FakeOrganization, *github.Client) {
	t.Helper()
	fake := testutil.NewFakeOrganization(t, testOrg)
	client := github.NewClient(context.Background(), config.GitHubConfig{
		Token:        "test-token",
		Organization: testOrg,
		APIURL:       fake.URL(),
	})
	return fake, client
}
