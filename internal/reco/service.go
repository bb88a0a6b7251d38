package reco

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/5ivekayri/DWv2/internal/cache"
	"github.com/5ivekayri/DWv2/internal/weather"
)

const (
	cacheTTL       = 45 * time.Minute
	rateLimitMax   = 20
	rateLimitQuota = time.Hour

	defaultModel = "openrouter/auto"
)

// ErrRateLimited is returned when the hourly request budget is spent.
var ErrRateLimited = errors.New("recommendation rate limit exceeded")

// Recommendation is a clothing suggestion for the current weather.
type Recommendation struct {
	Text    string        `json:"text"`
	Source  string        `json:"source"` // "llm" or "fallback"
	Weather weather.Point `json:"weather"`
}

// Service produces clothing recommendations from current weather via the
// OpenRouter chat-completions API. Responses are cached per coordinate slot
// and outbound LLM calls are rate limited; when the LLM is unreachable a
// rule-based fallback keeps the endpoint useful.
type Service struct {
	weather *weather.Service
	cache   *cache.Cache
	limiter *RateLimiter
	client  *resty.Client
	model   string
}

// NewService builds a Service. baseURL is the OpenRouter endpoint root and
// is overridable for tests; model falls back to the auto router.
func NewService(ws *weather.Service, c *cache.Cache, apiKey, model, baseURL string) *Service {
	if model == "" {
		model = defaultModel
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &Service{
		weather: ws,
		cache:   c,
		limiter: NewRateLimiter(c, "reco:ratelimit", rateLimitMax, rateLimitQuota),
		client:  client,
		model:   model,
	}
}

// Get returns a recommendation for the coordinates.
func (s *Service) Get(ctx context.Context, lat, lon float64) (Recommendation, error) {
	key := fmt.Sprintf("reco:%.3f:%.3f", lat, lon)
	if v, ok := s.cache.Get(key); ok {
		if rec, ok := v.(Recommendation); ok {
			return rec, nil
		}
	}

	if !s.limiter.Allow() {
		return Recommendation{}, ErrRateLimited
	}

	point, err := s.weather.GetCurrent(ctx, lat, lon)
	if err != nil {
		return Recommendation{}, err
	}

	text, err := s.complete(ctx, point)
	if err != nil {
		log.Printf("reco: llm request failed, using fallback: %v", err)
		return Recommendation{
			Text:    fallbackText(point),
			Source:  "fallback",
			Weather: point,
		}, nil
	}

	rec := Recommendation{Text: text, Source: "llm", Weather: point}
	s.cache.Set(key, rec, cacheTTL)
	return rec, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *Service) complete(ctx context.Context, point weather.Point) (string, error) {
	body := chatRequest{
		Model: s.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: buildPrompt(point),
		}},
	}

	var parsed chatResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post("/chat/completions")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("openrouter returned HTTP %d", resp.StatusCode())
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openrouter returned no completion")
	}
	return parsed.Choices[0].Message.Content, nil
}

func buildPrompt(p weather.Point) string {
	return fmt.Sprintf(
		"Suggest, in two sentences, what to wear outside right now. "+
			"Conditions: temperature %.1f C, wind %.1f m/s, pressure %.0f hPa, precipitation %.1f mm.",
		p.TemperatureC, p.WindSpeedMS, p.PressureHpa, p.PrecipitationMM,
	)
}

// fallbackText is a coarse rule-based recommendation used when the LLM is
// unavailable.
func fallbackText(p weather.Point) string {
	var text string
	switch {
	case p.TemperatureC <= 0:
		text = "It is freezing: wear a heavy winter coat, hat and gloves."
	case p.TemperatureC <= 10:
		text = "It is cold: wear a warm jacket and consider a scarf."
	case p.TemperatureC <= 18:
		text = "It is cool: a light jacket or sweater should be enough."
	default:
		text = "It is warm: light clothing is fine."
	}
	if p.PrecipitationMM > 0 {
		text += " Take an umbrella, precipitation is expected."
	}
	if p.WindSpeedMS >= 10 {
		text += " It is windy, prefer a windproof layer."
	}
	return text
}
