package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/praxis-labs/praxis/internal/domain"
)

const goodReply = `[{"book":"Deep Work","excerpt":"Schedule every minute","action":"Plan tomorrow each evening","tags":["focus"],"frequency":"daily"}]`

func TestParseItems(t *testing.T) {
	items, err := ParseItems(goodReply)
	if err != nil {
		t.Fatalf("ParseItems() error: %v", err)
	}
	if len(items) != 1 || items[0].Action != "Plan tomorrow each evening" {
		t.Fatalf("wrong items: %+v", items)
	}
}

func TestParseItems_Fenced(t *testing.T) {
	replies := []string{
		"```json\n" + goodReply + "\n```",
		"```\n" + goodReply + "\n```",
		"```" + goodReply + "```",
	}
	for _, r := range replies {
		items, err := ParseItems(r)
		if err != nil {
			t.Errorf("ParseItems(%.20q...) error: %v", r, err)
			continue
		}
		if len(items) != 1 {
			t.Errorf("want 1 item, got %d", len(items))
		}
	}
}

func TestParseItems_DefaultsBadFrequency(t *testing.T) {
	items, err := ParseItems(`[{"action":"Do the thing","frequency":"hourly"}]`)
	if err != nil {
		t.Fatalf("ParseItems() error: %v", err)
	}
	if items[0].Frequency != "daily" {
		t.Errorf("frequency = %q, want daily", items[0].Frequency)
	}
	if items[0].Tags == nil {
		t.Error("tags should default to empty slice")
	}
}

func TestParseItems_SkipsEmptyActions(t *testing.T) {
	items, err := ParseItems(`[{"action":"  "},{"action":"Keep this"}]`)
	if err != nil {
		t.Fatalf("ParseItems() error: %v", err)
	}
	if len(items) != 1 || items[0].Action != "Keep this" {
		t.Fatalf("want only the non-empty action, got %+v", items)
	}
}

func TestParseItems_Invalid(t *testing.T) {
	for _, bad := range []string{"not json", `{"action":"obj not array"}`} {
		if _, err := ParseItems(bad); !errors.Is(err, domain.ErrExtractInvalid) {
			t.Errorf("ParseItems(%q): want ErrExtractInvalid, got %v", bad, err)
		}
	}
}

func TestParseItems_EmptyArrayMeansNoActions(t *testing.T) {
	items, err := ParseItems("[]")
	if err != nil {
		t.Fatalf("empty array should be valid: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("want no items, got %+v", items)
	}
}

func chatServer(t *testing.T, reply func(attempt int64) (int, string)) *httptest.Server {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("bad auth header %q", got)
		}
		status, content := reply(calls.Add(1))
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChatClientExtract(t *testing.T) {
	srv := chatServer(t, func(int64) (int, string) {
		return http.StatusOK, "```json\n" + goodReply + "\n```"
	})

	c := NewChatClient(srv.URL, "test-key", "deepseek-chat")
	items, err := c.Extract(context.Background(), "some notes")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(items) != 1 || items[0].Book != "Deep Work" {
		t.Fatalf("wrong items: %+v", items)
	}
}

func TestChatClientExtract_RetriesThenSucceeds(t *testing.T) {
	srv := chatServer(t, func(attempt int64) (int, string) {
		if attempt == 1 {
			return http.StatusOK, "sorry, I cannot do that"
		}
		return http.StatusOK, goodReply
	})

	c := NewChatClient(srv.URL, "test-key", "deepseek-chat")
	items, err := c.Extract(context.Background(), "some notes")
	if err != nil {
		t.Fatalf("Extract() should succeed on retry: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 item, got %d", len(items))
	}
}

func TestChatClientExtract_GivesUp(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewChatClient(srv.URL, "test-key", "deepseek-chat")
	_, err := c.Extract(context.Background(), "some notes")
	if !errors.Is(err, domain.ErrExtractFailed) {
		t.Fatalf("want ErrExtractFailed, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("want 3 attempts, got %d", calls.Load())
	}
}
