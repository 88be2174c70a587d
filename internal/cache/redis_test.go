package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JonnyWalker81/fittrack/backend/internal/models"
)

func TestNop_AlwaysMisses(t *testing.T) {
	var c SummaryCache = Nop{}
	ctx := context.Background()
	day := models.MustParseDate("2024-06-01")

	if err := c.SetSummary(ctx, "u1", day, &models.StatsSummary{TotalWorkouts: 3}); err != nil {
		t.Fatalf("SetSummary() error = %v", err)
	}
	got, ok, err := c.GetSummary(ctx, "u1", day)
	if err != nil || ok || got != nil {
		t.Errorf("GetSummary() = %v, %v, %v; want miss", got, ok, err)
	}
}

func TestKeys(t *testing.T) {
	if got := summaryKey("u1"); got != "fittrack:summary:u1" {
		t.Errorf("summaryKey() = %q", got)
	}
	if got := idempotencyKey("k", "POST /api/v1/habits/:id/complete", "u1"); got != "fittrack:idem:u1:POST /api/v1/habits/:id/complete:k" {
		t.Errorf("idempotencyKey() = %q", got)
	}
}

// The remaining tests need a live server: FITTRACK_TEST_REDIS_URL=redis://localhost:6379/15
func testRedisURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("FITTRACK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("FITTRACK_TEST_REDIS_URL not set")
	}
	return url
}

func TestRedis_SummaryRoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	client, err := Connect(ctx, testRedisURL(t))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedis(client, time.Minute)
	user := "test-" + uuid.NewString()
	day := models.MustParseDate("2024-06-02")

	if _, ok, err := c.GetSummary(ctx, user, day); err != nil || ok {
		t.Fatalf("GetSummary() on empty cache = %v, %v", ok, err)
	}

	want := &models.StatsSummary{TotalWorkouts: 7, CurrentStreak: 2, LongestStreak: 5}
	if err := c.SetSummary(ctx, user, day, want); err != nil {
		t.Fatalf("SetSummary() error = %v", err)
	}

	got, ok, err := c.GetSummary(ctx, user, day)
	if err != nil || !ok {
		t.Fatalf("GetSummary() = %v, %v; want hit", ok, err)
	}
	if got.TotalWorkouts != 7 || got.LongestStreak != 5 {
		t.Errorf("GetSummary() = %+v", got)
	}

	if err := c.Invalidate(ctx, user); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, ok, _ := c.GetSummary(ctx, user, day); ok {
		t.Error("GetSummary() hit after Invalidate()")
	}
}

func TestIdempotencyStore_FirstWriteWins(t *testing.T) {
	ctx := context.Background()
	client, err := Connect(ctx, testRedisURL(t))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	s := NewIdempotencyStore(client, time.Minute)
	key := uuid.NewString()

	if err := s.Store(ctx, key, "POST /x", "u1", []byte(`{"n":1}`), 201); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := s.Store(ctx, key, "POST /x", "u1", []byte(`{"n":2}`), 200); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	rec, err := s.Get(ctx, key, "POST /x", "u1")
	if err != nil || rec == nil {
		t.Fatalf("Get() = %v, %v", rec, err)
	}
	if rec.StatusCode != 201 || string(rec.ResponseBody) != `{"n":1}` {
		t.Errorf("Get() = %+v, want first response", rec)
	}
}
