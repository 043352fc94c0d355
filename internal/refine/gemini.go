package refine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hotmob/notebooklm-slide-refiner/internal/fsutil"
)

const (
	// DefaultEndpoint is the Gemini generative language API base URL.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is the image-editing model used when none is configured.
	DefaultModel = "nano-banana"

	requestTimeout = 120 * time.Second
)

// GeminiRefiner calls a Gemini-style generateContent endpoint to edit an
// image. Vertex-hosted endpoints authenticate with an OAuth bearer token;
// the public API uses a key query parameter.
type GeminiRefiner struct {
	authToken  string
	model      string
	endpoint   string
	useOAuth   bool
	httpClient *http.Client
}

// GeminiOptions configures a GeminiRefiner.
type GeminiOptions struct {
	AuthToken string
	Model     string
	Endpoint  string
	UseOAuth  bool
}

// NewGeminiRefiner creates a remote refiner.
func NewGeminiRefiner(opts GeminiOptions) (*GeminiRefiner, error) {
	if opts.AuthToken == "" {
		return nil, errors.New("gemini refiner requires an auth token")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	return &GeminiRefiner{
		authToken:  opts.AuthToken,
		model:      opts.Model,
		endpoint:   opts.Endpoint,
		useOAuth:   opts.UseOAuth,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Refine sends the raw PNG and prompt to the remote editor and writes the
// returned image. The enhanced file is written only after the full payload
// is decoded, so no partial file is ever observable.
func (r *GeminiRefiner) Refine(ctx context.Context, rawPath, enhancedPath, prompt string) error {
	imageBytes, err := os.ReadFile(rawPath)
	if err != nil {
		return fmt.Errorf("read raw image: %w", err)
	}

	payload := generateRequest{
		Contents: []generateContent{{
			Parts: []generatePart{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: "image/png",
					Data:     base64.StdEncoding.EncodeToString(imageBytes),
				}},
			},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal refine request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", r.endpoint, r.model)
	if !r.useOAuth {
		url += "?key=" + r.authToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build refine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.useOAuth {
		req.Header.Set("Authorization", "Bearer "+r.authToken)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send refine request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read refine response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	output, err := extractImageBytes(respBody)
	if err != nil {
		return err
	}
	return fsutil.WriteAtomic(enhancedPath, output)
}

// extractImageBytes pulls the first inline image out of a generateContent
// response. A response without one is a fatal, non-retryable failure.
func extractImageBytes(body []byte) ([]byte, error) {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse refine response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, errors.New("refine response has no candidates")
	}
	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.InlineData == nil || part.InlineData.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("decode refine image data: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("refine response missing inline image data")
}
