package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/providermatch/internal/domain/providers"
	"github.com/zatekoja/providermatch/pkg/config"
)

func newTestRecommender(t *testing.T, handler http.HandlerFunc) *Recommender {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	r, err := NewRecommender(&config.RecommenderConfig{APIKey: "test-key"},
		option.WithBaseURL(ts.URL),
		option.WithMaxRetries(0),
	)
	require.NoError(t, err)
	return r
}

func messageReply(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       defaultModel,
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 12, "output_tokens": 3},
	})
}

func TestRecommender_RecommendSpecialty(t *testing.T) {
	age := 45
	r := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/messages")
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "chest pain")
		assert.Contains(t, string(body), "Age: 45")
		messageReply(w, " Cardiology.\n")
	})

	label, err := r.RecommendSpecialty(context.Background(), providers.SpecialtyRequest{Symptoms: "chest pain", Age: &age})
	require.NoError(t, err)
	assert.Equal(t, "CARDIOLOGY", label)
}

func TestRecommender_DeclinesWithNone(t *testing.T) {
	r := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		messageReply(w, "NONE")
	})

	label, err := r.RecommendSpecialty(context.Background(), providers.SpecialtyRequest{Symptoms: "feeling off"})
	require.NoError(t, err)
	assert.Empty(t, label)
}

func TestRecommender_ServerError(t *testing.T) {
	r := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	})

	_, err := r.RecommendSpecialty(context.Background(), providers.SpecialtyRequest{Symptoms: "rash"})
	assert.Error(t, err)
}

func TestRecommender_BlankSymptomsSkipsCall(t *testing.T) {
	r := newTestRecommender(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	label, err := r.RecommendSpecialty(context.Background(), providers.SpecialtyRequest{Symptoms: "  "})
	require.NoError(t, err)
	assert.Empty(t, label)
}

func TestNewRecommender_RequiresKey(t *testing.T) {
	_, err := NewRecommender(&config.RecommenderConfig{})
	assert.Error(t, err)
}

func TestParseLabel(t *testing.T) {
	assert.Equal(t, "FAMILY PRACTICE", parseLabel("family   practice"))
	assert.Equal(t, "DERMATOLOGY", parseLabel("**Dermatology**\nBecause of the rash."))
	assert.Empty(t, parseLabel("none"))
}
