// Package openrouter implementa o client HTTP do modelo de linguagem via
// OpenRouter (POST /api/v1/chat/completions). É a única saída de rede do
// caminho lento do interpretador.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/legisfy/assessor-ia-go/internal/domain"
	"github.com/legisfy/assessor-ia-go/internal/infra/observability"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("openrouter")

// Client chama a API de chat-completion. Implementa port.ChatCompleter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cb         *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient cria o client OpenRouter. baseURL sem o path /api/v1/...
func NewClient(httpClient *http.Client, baseURL, apiKey, model string, cb *gobreaker.CircuitBreaker, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		cb:         cb,
		metrics:    metrics,
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete envia o par system/user e devolve o conteúdo da primeira
// escolha. Chamada única, sem retry: quem decide degradar é o parser —
// repetir uma chamada de modelo lenta só atrasaria ainda mais a resposta
// do chat. O circuit breaker corta chamadas quando o provedor está fora.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	ctx, span := tracer.Start(ctx, "OpenRouter.Complete")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model))

	result, err := c.cb.Execute(func() (any, error) {
		body, err := json.Marshal(completionRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userMessage},
			},
			MaxTokens:   500,
			Temperature: 0.7,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal completion request: %w", err)
		}

		url := fmt.Sprintf("%s/api/v1/chat/completions", c.baseURL)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("HTTP-Referer", "https://legisfy.app.br")
		httpReq.Header.Set("X-Title", "Legisfy Assessor IA")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			c.logger.Warn("openrouter: non-200 response",
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(respBody)),
			)
			return nil, fmt.Errorf("openrouter returned status %d", resp.StatusCode)
		}

		var completion completionResponse
		if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
			return nil, fmt.Errorf("decode completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return nil, fmt.Errorf("openrouter returned no choices")
		}

		c.metrics.RecordTokens(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
		return completion.Choices[0].Message.Content, nil
	})

	if err != nil {
		c.metrics.IncrExternalError("openrouter")
		return "", &domain.ErrExternalService{Service: "openrouter", Err: err}
	}

	return result.(string), nil
}

// Ping verifica a alcançabilidade do provedor sem consumir tokens
// (GET /api/v1/models). Usado pelo endpoint de health.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("openrouter returned status %d", resp.StatusCode)
	}
	return nil
}
