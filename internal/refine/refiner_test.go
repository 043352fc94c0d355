package refine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotmob/notebooklm-slide-refiner/internal/config"
)

func TestStubRefiner_CopiesRawToEnhanced(t *testing.T) {
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "raw.png")
	enhancedPath := filepath.Join(dir, "enhanced", "out.png")
	require.NoError(t, os.WriteFile(rawPath, []byte("png-bytes"), 0o644))

	err := NewStubRefiner().Refine(context.Background(), rawPath, enhancedPath, "prompt")
	require.NoError(t, err)

	data, err := os.ReadFile(enhancedPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestIsRetryable_Classification(t *testing.T) {
	assert.True(t, IsRetryable(&APIError{StatusCode: 429}))
	assert.True(t, IsRetryable(&APIError{StatusCode: 500}))
	assert.True(t, IsRetryable(&APIError{StatusCode: 503}))
	assert.False(t, IsRetryable(&APIError{StatusCode: 400}))
	assert.False(t, IsRetryable(&APIError{StatusCode: 404}))
	assert.False(t, IsRetryable(fmt.Errorf("refine response has no candidates")))
	assert.False(t, IsRetryable(nil))
}

func geminiResponse(imageData []byte) string {
	payload := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{
					{"text": "here is the slide"},
					{"inline_data": map[string]any{
						"mime_type": "image/png",
						"data":      base64.StdEncoding.EncodeToString(imageData),
					}},
				},
			},
		}},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestGeminiRefiner_WritesDecodedImage(t *testing.T) {
	enhanced := []byte("enhanced-image-bytes")
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.URL.Query().Get("key")
		fmt.Fprint(w, geminiResponse(enhanced))
	}))
	defer server.Close()

	dir := t.TempDir()
	rawPath := filepath.Join(dir, "raw.png")
	enhancedPath := filepath.Join(dir, "enhanced.png")
	require.NoError(t, os.WriteFile(rawPath, []byte("raw"), 0o644))

	refiner, err := NewGeminiRefiner(GeminiOptions{
		AuthToken: "secret-key",
		Endpoint:  server.URL,
	})
	require.NoError(t, err)

	require.NoError(t, refiner.Refine(context.Background(), rawPath, enhancedPath, "prompt"))

	assert.Equal(t, "secret-key", gotAuth)
	data, err := os.ReadFile(enhancedPath)
	require.NoError(t, err)
	assert.Equal(t, enhanced, data)

	// No temp files left behind by the atomic write.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGeminiRefiner_OAuthUsesBearerHeader(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Authorization")
		fmt.Fprint(w, geminiResponse([]byte("x")))
	}))
	defer server.Close()

	dir := t.TempDir()
	rawPath := filepath.Join(dir, "raw.png")
	require.NoError(t, os.WriteFile(rawPath, []byte("raw"), 0o644))

	refiner, err := NewGeminiRefiner(GeminiOptions{
		AuthToken: "token",
		Endpoint:  server.URL,
		UseOAuth:  true,
	})
	require.NoError(t, err)

	require.NoError(t, refiner.Refine(context.Background(), rawPath, filepath.Join(dir, "out.png"), "p"))
	assert.Equal(t, "Bearer token", gotHeader)
}

func TestGeminiRefiner_Non200BecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	dir := t.TempDir()
	rawPath := filepath.Join(dir, "raw.png")
	require.NoError(t, os.WriteFile(rawPath, []byte("raw"), 0o644))

	refiner, err := NewGeminiRefiner(GeminiOptions{AuthToken: "k", Endpoint: server.URL})
	require.NoError(t, err)

	err = refiner.Refine(context.Background(), rawPath, filepath.Join(dir, "out.png"), "p")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.NoFileExists(t, filepath.Join(dir, "out.png"))
}

func TestGeminiRefiner_MissingImageDataIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"no image"}]}}]}`)
	}))
	defer server.Close()

	dir := t.TempDir()
	rawPath := filepath.Join(dir, "raw.png")
	require.NoError(t, os.WriteFile(rawPath, []byte("raw"), 0o644))

	refiner, err := NewGeminiRefiner(GeminiOptions{AuthToken: "k", Endpoint: server.URL})
	require.NoError(t, err)

	err = refiner.Refine(context.Background(), rawPath, filepath.Join(dir, "out.png"), "p")
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
}

func TestLoadPrompt_SubstitutesCornerMarkBehavior(t *testing.T) {
	removed := LoadPrompt(true)
	assert.Contains(t, removed, "Remove any corner marks")
	assert.NotContains(t, removed, "{{REMOVE_CORNER_MARKS}}")

	preserved := LoadPrompt(false)
	assert.Contains(t, preserved, "Preserve any corner marks")
}

func TestFromConfig_BackendSelection(t *testing.T) {
	refiner, err := FromConfig(config.RefinerConfig{Mode: "stub"})
	require.NoError(t, err)
	assert.IsType(t, &StubRefiner{}, refiner)

	// Gemini mode without credentials falls back to the stub.
	refiner, err = FromConfig(config.RefinerConfig{Mode: "gemini"})
	require.NoError(t, err)
	assert.IsType(t, &StubRefiner{}, refiner)

	refiner, err = FromConfig(config.RefinerConfig{Mode: "gemini", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &GeminiRefiner{}, refiner)

	_, err = FromConfig(config.RefinerConfig{Mode: "watercolor"})
	assert.Error(t, err)
}
