package intern_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/letterdesk/pkg/mongo"
	"github.com/dmitrymomot/letterdesk/svc/intern"
)

// TestMongoStore runs against a live server when MONGODB_TEST_URL is set.
func TestMongoStore(t *testing.T) {
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}

	runStoreSuite(t, func(t *testing.T, now func() time.Time) intern.Store {
		ctx := context.Background()
		database, err := mongo.NewWithDatabase(ctx, mongo.Config{
			ConnectionURL: url,
			Database:      "letterdesk_test_" + uuid.NewString()[:8],
			RetryAttempts: 1,
		})
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = database.Drop(context.Background())
			_ = database.Client().Disconnect(context.Background())
		})

		s := intern.NewMongoStore(database, intern.WithClock(now))
		require.NoError(t, s.EnsureIndexes(ctx))
		return s
	})
}
