package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/akolanti/DocChatAPI/internal/data/redisStore"
)

func testCache(t *testing.T) (*QueryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	retrieval := redisStore.NewTestStore(redis.NewClient(&redis.Options{Addr: mr.Addr(), DB: 0}))
	answers := redisStore.NewTestStore(redis.NewClient(&redis.Options{Addr: mr.Addr(), DB: 1}))

	return TestQueryCache(retrieval, answers), mr
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"  What IS   the Revenue? ", "what is the revenue?"},
		{"already normal", "already normal"},
		{"\tTabs\nand newlines\t", "tabs and newlines"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.expected {
			t.Errorf("Normalize(%q) = %q; want %q", tt.in, got, tt.expected)
		}
		// idempotence: normalizing twice changes nothing
		if got := Normalize(Normalize(tt.in)); got != tt.expected {
			t.Errorf("Normalize not idempotent for %q: %q", tt.in, got)
		}
	}
}

func TestAnswerCache_Lifecycle(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()
	sessionId := "session_cache_a"
	normQuery := Normalize("what is the total revenue")

	t.Run("Cold lookup is a miss", func(t *testing.T) {
		if result := c.GetAnswer(ctx, sessionId, 1, normQuery); result.State != Miss {
			t.Errorf("expected Miss, got %s", result.State)
		}
	})

	t.Run("Put then Get is a hit", func(t *testing.T) {
		c.PutAnswer(ctx, sessionId, 1, normQuery, "the revenue was 4.2M")

		result := c.GetAnswer(ctx, sessionId, 1, normQuery)
		if result.State != Hit {
			t.Fatalf("expected Hit, got %s", result.State)
		}
		if result.Answer != "the revenue was 4.2M" {
			t.Errorf("wrong cached answer: %q", result.Answer)
		}
	})

	t.Run("New generation misses old answers", func(t *testing.T) {
		if result := c.GetAnswer(ctx, sessionId, 2, normQuery); result.State != Miss {
			t.Errorf("post-ingestion generation must not see stale answers, got %s", result.State)
		}
	})

	t.Run("Other sessions are isolated", func(t *testing.T) {
		if result := c.GetAnswer(ctx, "session_cache_other", 1, normQuery); result.State != Miss {
			t.Errorf("answer leaked across sessions, got %s", result.State)
		}
	})
}

func TestRetrievalCache_Lifecycle(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()
	sessionId := "session_cache_b"
	normQuery := Normalize("Which customers churned?")
	ids := []string{"id-1", "id-2", "id-3"}

	if result := c.GetRetrieval(ctx, sessionId, normQuery); result.State != Miss {
		t.Fatalf("expected cold Miss, got %s", result.State)
	}

	c.PutRetrieval(ctx, sessionId, normQuery, ids)

	result := c.GetRetrieval(ctx, sessionId, normQuery)
	if result.State != Hit {
		t.Fatalf("expected Hit, got %s", result.State)
	}
	if len(result.Ids) != 3 || result.Ids[0] != "id-1" || result.Ids[2] != "id-3" {
		t.Errorf("ranked id order not preserved: %v", result.Ids)
	}
}

func TestRetrievalCache_EmptyResultIsCached(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()
	sessionId := "session_cache_empty"
	normQuery := Normalize("anything in this empty session?")

	c.PutRetrieval(ctx, sessionId, normQuery, nil)

	result := c.GetRetrieval(ctx, sessionId, normQuery)
	if result.State != Hit {
		t.Fatalf("an empty search result must still cache, got %s", result.State)
	}
	if len(result.Ids) != 0 {
		t.Errorf("expected an empty id list, got %v", result.Ids)
	}
}

func TestQueryCache_NilStoresAreUnavailable(t *testing.T) {
	c := TestQueryCache(nil, nil)
	ctx := context.Background()

	if result := c.GetAnswer(ctx, "s", 1, "q"); result.State != Unavailable {
		t.Errorf("nil answer store should be Unavailable, got %s", result.State)
	}
	if result := c.GetRetrieval(ctx, "s", "q"); result.State != Unavailable {
		t.Errorf("nil retrieval store should be Unavailable, got %s", result.State)
	}

	// writes must be silent no-ops
	c.PutAnswer(ctx, "s", 1, "q", "answer")
	c.PutRetrieval(ctx, "s", "q", []string{"id"})
}

func TestQueryCache_OutageIsUnavailableNotError(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	c.PutAnswer(ctx, "s", 1, "q", "answer")
	mr.Close()

	if result := c.GetAnswer(ctx, "s", 1, "q"); result.State != Unavailable {
		t.Errorf("redis outage should degrade to Unavailable, got %s", result.State)
	}
	if result := c.GetRetrieval(ctx, "s", "q"); result.State != Unavailable {
		t.Errorf("redis outage should degrade to Unavailable, got %s", result.State)
	}
}

func TestRetrievalCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	mr.Set(retrievalKey("s", "q"), "{not json")

	if result := c.GetRetrieval(ctx, "s", "q"); result.State != Miss {
		t.Errorf("corrupt entry should read as Miss, got %s", result.State)
	}
}
