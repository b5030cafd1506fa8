// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

func init() {
	// Tiny backoff so retry tests run fast.
	backoffBase = time.Millisecond
}

// mockBackend returns canned responses, or errors, in sequence.
type mockBackend struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (m *mockBackend) Complete(_ context.Context, prompt string) (string, error) {
	i := m.calls
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", errors.New("no more responses")
}

func testClient(backend Backend) *Client {
	return NewClient(backend, types.LLMConfig{MaxRetries: 3}, zap.NewNop())
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json untouched", `{"a":1}`, `{"a":1}`},
		{"plain fences", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json-tagged fences", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
		{"no closing fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"plain prose untouched", "not json at all", "not json at all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestParseObject(t *testing.T) {
	logger := zap.NewNop()

	t.Run("strict json", func(t *testing.T) {
		var out map[string]int
		require.NoError(t, ParseObject(&out, `{"a":1}`, "test", logger))
		assert.Equal(t, 1, out["a"])
	})

	t.Run("fenced json", func(t *testing.T) {
		var out map[string]int
		require.NoError(t, ParseObject(&out, "```json\n{\"a\":2}\n```", "test", logger))
		assert.Equal(t, 2, out["a"])
	})

	t.Run("degraded extraction from prose", func(t *testing.T) {
		var out map[string]int
		raw := "Here is the result you asked for: {\"a\":3} hope that helps!"
		require.NoError(t, ParseObject(&out, raw, "test", logger))
		assert.Equal(t, 3, out["a"])
	})

	t.Run("unparseable output errors with stage and sample", func(t *testing.T) {
		var out map[string]int
		err := ParseObject(&out, "total nonsense", "realize", logger)
		require.Error(t, err)

		var moe *types.ModelOutputError
		require.ErrorAs(t, err, &moe)
		assert.Equal(t, "realize", moe.Stage)
		assert.Contains(t, moe.Raw, "total nonsense")
	})
}

func TestClaudeBackend_Complete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"hello"}]}`)
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	backend := &ClaudeBackend{APIKey: "test-key", Model: "claude-sonnet-4-5-20250929", Client: ts.Client()}
	text, err := backend.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestClaudeBackend_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	backend := &ClaudeBackend{APIKey: "k", Model: "m", Client: ts.Client()}
	_, err := backend.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestCompleteWithRetry_RecoversAfterFailure(t *testing.T) {
	backend := &mockBackend{
		responses: []string{"", "ok"},
		errs:      []error{errors.New("transient"), nil},
	}

	text, err := completeWithRetry(context.Background(), backend, "p", 3)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, backend.calls)
}

func TestCompleteWithRetry_Exhausts(t *testing.T) {
	transient := errors.New("transient")
	backend := &mockBackend{errs: []error{transient, transient, transient, transient}}

	_, err := completeWithRetry(context.Background(), backend, "p", 3)
	require.Error(t, err)
	assert.Equal(t, 4, backend.calls)
}

func TestRealize(t *testing.T) {
	t.Run("parses realized triple", func(t *testing.T) {
		backend := &mockBackend{responses: []string{
			`{"headline":"Goal progress","explanation":"You are 42% there.","personal_relevance":"Based on your retirement goal."}`,
		}}
		client := testClient(backend)

		got, err := client.Realize(context.Background(), RealizePayload{
			Facts: []string{"Retirement goal progress is 42%."},
		})
		require.NoError(t, err)
		assert.Equal(t, "Goal progress", got.Headline)
		assert.Contains(t, backend.prompts[0], "Retirement goal progress is 42%.")
	})

	t.Run("fenced output accepted", func(t *testing.T) {
		backend := &mockBackend{responses: []string{
			"```json\n{\"headline\":\"H\",\"explanation\":\"E\",\"personal_relevance\":\"P\"}\n```",
		}}
		got, err := testClient(backend).Realize(context.Background(), RealizePayload{Facts: []string{"f"}})
		require.NoError(t, err)
		assert.Equal(t, "H", got.Headline)
	})

	t.Run("empty field is an error", func(t *testing.T) {
		backend := &mockBackend{responses: []string{
			`{"headline":"H","explanation":"","personal_relevance":"P"}`,
		}}
		_, err := testClient(backend).Realize(context.Background(), RealizePayload{Facts: []string{"f"}})
		require.Error(t, err)

		var moe *types.ModelOutputError
		assert.ErrorAs(t, err, &moe)
	})
}

func TestJudge(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantVerdict types.Verdict
		wantReason  string
	}{
		{
			name:        "pass verdict",
			raw:         `{"verdict":"PASS","reason":"educational"}`,
			wantVerdict: types.VerdictPass,
		},
		{
			name:        "block verdict",
			raw:         `{"verdict":"BLOCK","reason":"advisory tone"}`,
			wantVerdict: types.VerdictBlock,
			wantReason:  "advisory tone",
		},
		{
			name:        "empty output blocks",
			raw:         "   ",
			wantVerdict: types.VerdictBlock,
			wantReason:  "empty judge output",
		},
		{
			name:        "non-JSON output blocks without propagating text",
			raw:         "I think this looks fine overall!",
			wantVerdict: types.VerdictBlock,
		},
		{
			name:        "invalid verdict shape blocks",
			raw:         `{"verdict":"MAYBE"}`,
			wantVerdict: types.VerdictBlock,
			wantReason:  "invalid verdict shape",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockBackend{responses: []string{tt.raw}}
			got, err := testClient(backend).Judge(context.Background(), "some realized text")
			require.NoError(t, err)
			assert.Equal(t, tt.wantVerdict, got.Verdict)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, got.Reason)
			}
		})
	}
}

func TestThemes(t *testing.T) {
	backend := &mockBackend{responses: []string{
		`{"themes":["dividend income"," index funds ","","earnings season"]}`,
	}}

	themes, err := testClient(backend).Themes(context.Background(), ThemesPayload{
		Tickers: []string{"AAPL"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dividend income", "index funds", "earnings season"}, themes)
}

func TestThemes_UnparseableIsError(t *testing.T) {
	backend := &mockBackend{responses: []string{"no json here"}}
	_, err := testClient(backend).Themes(context.Background(), ThemesPayload{})
	require.Error(t, err)
}

func TestRealizePromptContainsOnlyFacts(t *testing.T) {
	backend := &mockBackend{responses: []string{
		`{"headline":"H","explanation":"E","personal_relevance":"P"}`,
	}}
	client := testClient(backend)

	_, err := client.Realize(context.Background(), RealizePayload{
		Facts:    []string{"fact one", "fact two"},
		Audience: "long-term investor",
	})
	require.NoError(t, err)

	prompt := backend.prompts[0]
	assert.Contains(t, prompt, "fact one")
	assert.Contains(t, prompt, "fact two")
	assert.Contains(t, prompt, "long-term investor")
	assert.True(t, strings.Contains(prompt, "educational") || strings.Contains(prompt, "Educational"))
}
