package refine

import (
	"fmt"
	"strings"

	"github.com/hotmob/notebooklm-slide-refiner/internal/config"
)

// FromConfig resolves the refiner backend once at startup. An unset or
// "stub" mode, or a gemini mode without credentials, selects the
// passthrough variant.
func FromConfig(cfg config.RefinerConfig) (Refiner, error) {
	switch strings.ToLower(cfg.Mode) {
	case "", "stub":
		return NewStubRefiner(), nil
	case "gemini":
		if cfg.APIKey == "" {
			return NewStubRefiner(), nil
		}
		return NewGeminiRefiner(GeminiOptions{
			AuthToken: cfg.APIKey,
			Model:     cfg.Model,
			Endpoint:  cfg.Endpoint,
			UseOAuth:  isVertexEndpoint(cfg.Endpoint),
		})
	}
	return nil, fmt.Errorf("unknown refiner mode %q", cfg.Mode)
}

// isVertexEndpoint reports whether the endpoint is Vertex-hosted, which
// requires OAuth bearer auth instead of an API-key query parameter.
func isVertexEndpoint(endpoint string) bool {
	return strings.Contains(endpoint, "aiplatform.googleapis.com")
}
