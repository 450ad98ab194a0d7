// Package openrouter implementa el ModelClient contra la API de chat
// completions de OpenRouter.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/monopolyarena/config"
	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

const baseRetryWait = 500 * time.Millisecond

// Client llama a OpenRouter con rate limiting y retries. Implementa
// ports.ModelClient: los fallos de la API se devuelven clasificados en el
// ModelResult y el error de Go queda reservado a la cancelación del contexto.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	limiter    *rate.Limiter
	log        *slog.Logger
}

// NewClient crea el cliente a partir de la configuración de OpenRouter.
func NewClient(cfg config.OpenRouterConfig, log *slog.Logger) *Client {
	return &Client{
		http:       &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		log:        log,
	}
}

// chatResponse es el subconjunto de la respuesta que interesa al pipeline.
type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
			// Forma legacy de la API: algunos proveedores responden con
			// function_call en vez de tool_calls.
			FunctionCall *struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			} `json:"function_call"`
		} `json:"message"`
	} `json:"choices"`
	Usage *domain.ChatUsage `json:"usage"`
}

// Complete ejecuta una chat completion con tool calling. Reintenta 429, 5xx y
// errores de red con backoff exponencial; los 4xx restantes no se reintentan.
func (c *Client) Complete(ctx context.Context, req domain.ModelRequest) (domain.ModelResult, error) {
	if c.apiKey == "" {
		return domain.ModelResult{
			ErrorType: domain.ModelNoAPIKey,
			RequestID: syntheticRequestID(),
			Err:       "OPENROUTER_API_KEY is not set",
		}, nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return domain.ModelResult{}, fmt.Errorf("openrouter.Complete: marshal request: %w", err)
	}

	var last domain.ModelResult
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return last, fmt.Errorf("openrouter.Complete: rate limiter: %w", err)
		}

		result, retryable, err := c.doOnce(ctx, body)
		if err != nil {
			return last, fmt.Errorf("openrouter.Complete: %w", err)
		}
		last = result
		if !retryable || attempt == c.maxRetries {
			return last, nil
		}

		c.log.Warn("openrouter call failed, retrying",
			"attempt", attempt+1, "error_type", result.ErrorType, "status", result.StatusCode)
		if err := c.sleep(ctx, attempt); err != nil {
			return last, fmt.Errorf("openrouter.Complete: %w", err)
		}
	}
	return last, nil
}

// doOnce hace una única llamada HTTP y clasifica el resultado. El booleano
// indica si merece reintento.
func (c *Client) doOnce(ctx context.Context, body []byte) (domain.ModelResult, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return domain.ModelResult{}, false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return domain.ModelResult{}, false, ctx.Err()
		}
		return domain.ModelResult{
			ErrorType: domain.ModelNetworkError,
			RequestID: syntheticRequestID(),
			Err:       err.Error(),
		}, true, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ModelResult{
			ErrorType: domain.ModelNetworkError,
			RequestID: requestID(resp),
			Err:       err.Error(),
		}, true, nil
	}

	result := domain.ModelResult{
		StatusCode: resp.StatusCode,
		RequestID:  requestID(resp),
		Raw:        json.RawMessage(raw),
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		result.ErrorType = domain.ModelHTTP429
		result.Err = trimmedBody(raw)
		return result, true, nil

	case resp.StatusCode >= 500:
		result.ErrorType = domain.ModelHTTP5xx
		result.Err = trimmedBody(raw)
		return result, true, nil

	case resp.StatusCode >= 400:
		result.ErrorType = domain.ModelHTTP4xx
		result.Err = trimmedBody(raw)
		return result, false, nil
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		result.ErrorType = domain.ModelInvalidJSON
		result.Err = err.Error()
		return result, false, nil
	}

	result.ErrorType = domain.ModelOK
	result.Usage = parsed.Usage
	if parsed.ID != "" {
		result.RequestID = parsed.ID
	}
	if len(parsed.Choices) > 0 {
		msg := parsed.Choices[0].Message
		switch {
		case len(msg.ToolCalls) > 0:
			fn := msg.ToolCalls[0].Function
			result.ToolCall = &domain.ToolCall{Name: fn.Name, Arguments: fn.Arguments}
		case msg.FunctionCall != nil:
			result.ToolCall = &domain.ToolCall{Name: msg.FunctionCall.Name, Arguments: msg.FunctionCall.Arguments}
		}
	}
	return result, false, nil
}

// sleep espera con backoff exponencial respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) error {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// requestID toma el id de los headers, o sintetiza uno para poder correlacionar
// los artefactos.
func requestID(resp *http.Response) string {
	for _, h := range []string{"X-Request-Id", "Cf-Ray"} {
		if id := resp.Header.Get(h); id != "" {
			return id
		}
	}
	return syntheticRequestID()
}

func syntheticRequestID() string {
	return "local-" + uuid.NewString()
}

func trimmedBody(raw []byte) string {
	const limit = 512
	if len(raw) > limit {
		raw = raw[:limit]
	}
	return string(bytes.TrimSpace(raw))
}
