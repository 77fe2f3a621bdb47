package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/chainchart"
	"github.com/meikuraledutech/chainchart/internal/storetest"
)

// The suite needs a disposable database; it drops and recreates the tables.
func TestStore(t *testing.T) {
	url := os.Getenv("CHAINCHART_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CHAINCHART_TEST_DATABASE_URL is not set")
	}

	storetest.Run(t, func(t *testing.T) chainchart.Store {
		ctx := context.Background()
		s, err := Open(ctx, url)
		require.NoError(t, err)
		require.NoError(t, s.DropSchema(ctx))
		require.NoError(t, s.CreateSchema(ctx))
		t.Cleanup(s.Close)
		return s
	})
}
