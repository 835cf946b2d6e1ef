package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/triz-master/internal/catalog"
)

const validReport = `{
  "introduction": "The engine trades speed for fuel.",
  "solutions": [
    {"title": "Segmented fan", "description": "Split the fan.", "principleApplied": "Segmentation", "feasibility": "High"}
  ],
  "nextSteps": ["Prototype", "Test"]
}`

// completion writes an OpenAI-shaped chat completion with the given content.
func completion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
}

func apiError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithRetryConfig(RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Millisecond,
		BackoffMultiplier: 1,
	})}, opts...)
	c, err := NewClient(Config{
		BaseURL:       srv.URL + "/v1",
		APIKey:        "test-key",
		DiagnoseModel: "fast-model",
		DraftModel:    "pro-model",
		Timeout:       5 * time.Second,
	}, opts...)
	require.NoError(t, err)
	return c
}

func diagnoseRequest() DiagnoseRequest {
	return DiagnoseRequest{
		Problem:    "Faster engine burns more fuel",
		Locale:     catalog.English,
		Parameters: catalog.Default().Parameters(),
	}
}

func TestNewClient_RequiresKeyAndModels(t *testing.T) {
	_, err := NewClient(Config{DiagnoseModel: "a", DraftModel: "b"})
	assert.Error(t, err)

	_, err = NewClient(Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestDiagnose_Success(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		completion(w, "```json\n{\"improvingParamId\": 9, \"worseningParamId\": 22, \"explanation\": \"Speed costs energy.\",}\n```")
	})

	d, err := c.Diagnose(context.Background(), diagnoseRequest())
	require.NoError(t, err)
	assert.Equal(t, 9, d.ImprovingID)
	assert.Equal(t, 22, d.WorseningID)
	assert.Equal(t, "Speed costs energy.", d.Explanation)

	assert.Equal(t, "fast-model", gotBody["model"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, "Faster engine burns more fuel")
	assert.Contains(t, user, "9: Speed")
	assert.Contains(t, user, "39: Productivity")
}

func TestDraft_UsesDraftModelAndValidates(t *testing.T) {
	var model string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		model = body.Model
		completion(w, validReport)
	})

	rep, err := c.Draft(context.Background(), DraftRequest{
		Problem:        "p",
		Locale:         catalog.English,
		PrincipleNames: []string{"Segmentation"},
		Guide:          catalog.Default().Principles(),
	})
	require.NoError(t, err)
	assert.Equal(t, "pro-model", model)
	require.Len(t, rep.Solutions, 1)
	assert.Equal(t, "Segmentation", rep.Solutions[0].PrincipleApplied)
	assert.Equal(t, []string{"Prototype", "Test"}, rep.NextSteps)
}

func TestDiagnose_InvalidPayloadIsFatal(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		completion(w, `{"improvingParamId": 0, "explanation": ""}`)
	})

	_, err := c.Diagnose(context.Background(), diagnoseRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPayload))
	assert.True(t, IsFatal(err))
	assert.Equal(t, int32(1), calls.Load(), "invalid payloads must not be retried")
}

func TestDiagnose_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			apiError(w, http.StatusServiceUnavailable)
			return
		}
		completion(w, `{"improvingParamId": 1, "worseningParamId": 10, "explanation": "x"}`)
	})

	d, err := c.Diagnose(context.Background(), diagnoseRequest())
	require.NoError(t, err)
	assert.Equal(t, 10, d.WorseningID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDiagnose_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		apiError(w, http.StatusUnauthorized)
	})

	_, err := c.Diagnose(context.Background(), diagnoseRequest())
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDiagnose_EmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		completion(w, "   ")
	})
	_, err := c.Diagnose(context.Background(), diagnoseRequest())
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestObserver_SeesEveryCall(t *testing.T) {
	var ops []string
	var errs []error
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		completion(w, "not json at all")
	}, WithObserver(func(op string, _ time.Duration, err error) {
		ops = append(ops, op)
		errs = append(errs, err)
	}))

	_, _ = c.Diagnose(context.Background(), diagnoseRequest())
	_, _ = c.Draft(context.Background(), DraftRequest{Locale: catalog.Arabic})

	assert.Equal(t, []string{OpDiagnose, OpDraft}, ops)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrInvalidPayload)
	}
}

func TestRetry_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	n, err := retry(ctx, RetryConfig{MaxAttempts: 5, BackoffBase: time.Hour}, func(context.Context) error {
		cancel()
		return NewTransientError(errors.New("flaky"))
	})
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseReport_RejectsIncompleteSolutions(t *testing.T) {
	_, err := ParseReport(`{"introduction":"i","solutions":[{"title":"t"}],"nextSteps":["s"]}`)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = ParseReport(`{"introduction":"i","solutions":[],"nextSteps":["s"]}`)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = ParseReport(`{"introduction":"i","solutions":[{"title":"t","description":"d","principleApplied":"p","feasibility":"f"}],"nextSteps":[""]}`)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	rep, err := ParseReport(validReport)
	require.NoError(t, err)
	assert.Equal(t, "The engine trades speed for fuel.", rep.Introduction)
}

func TestParseReport_KeepsCommasInsideText(t *testing.T) {
	rep, err := ParseReport(`{"introduction":"Options (a, ] b)",` +
		`"solutions":[{"title":"t","description":"Use A, } then B","principleApplied":"p","feasibility":"f"},],` +
		`"nextSteps":["s"],}`)
	require.NoError(t, err)
	assert.Equal(t, "Options (a, ] b)", rep.Introduction)
	assert.Equal(t, "Use A, } then B", rep.Solutions[0].Description)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "Here:\n```json\n{\"a\":1}\n```\nDone", `{"a":1}`},
		{"trailing comma", `{"a":[1,2,],}`, `{"a":[1,2]}`},
		{"comment outside string", "{\n\"url\": \"http://x\", // note\n\"b\": 2\n}", "{\n\"url\": \"http://x\",\n\"b\": 2\n}"},
		{"no object", "sorry", ""},
		{"valid object kept verbatim", `{"a":"x, ] y, } z"}`, `{"a":"x, ] y, } z"}`},
		{"trailing comma beside string commas", `{"a":["x, ]",],"b":"y, }",}`, `{"a":["x, ]"],"b":"y, }"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestPrompts_AreLocalized(t *testing.T) {
	ar, err := DiagnosePrompt(DiagnoseRequest{Problem: "مشكلة", Locale: catalog.Arabic, Parameters: catalog.Default().Parameters()})
	require.NoError(t, err)
	assert.Contains(t, ar, "بصفتك خبيراً")
	assert.Contains(t, ar, "9: السرعة")
	assert.Contains(t, ar, `"improvingParamId"`)

	en, err := DraftPrompt(DraftRequest{
		Problem:        "p",
		Locale:         catalog.English,
		PrincipleNames: []string{"Segmentation", "Extraction"},
		Guide:          catalog.Default().Principles()[:1],
	})
	require.NoError(t, err)
	assert.Contains(t, en, "Principles: [Segmentation, Extraction]")
	assert.Contains(t, en, "1: Segmentation - Divide an object")
	assert.True(t, strings.HasSuffix(en, "\"nextSteps\": [\"<string>\"]}"))
}
