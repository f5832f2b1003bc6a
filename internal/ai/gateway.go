package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Aurelien-D/ToDoList-IA/domain"
)

// Request kinds understood by the remote completion backend.
const (
	KindCategorize       = "categorizeTask"
	KindGenerateSubtasks = "generateSubtasks"
)

const (
	completionPath = "/api/openai"

	// placeholderEndpoint is the value shipped in example configuration. An
	// endpoint equal to it counts as unconfigured.
	placeholderEndpoint = "https://your-app.onrender.com"

	maxSubtasks = 5
)

// Notifier receives user-visible notices raised by the gateway.
type Notifier interface {
	Notify(n domain.Notice)
}

// Config carries the gateway settings.
type Config struct {
	Endpoint       string
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

// Gateway translates category and subtask suggestions into calls against the
// remote completion backend, with a time-bounded response cache.
type Gateway struct {
	endpoint string
	timeout  time.Duration
	client   *fasthttp.Client
	cache    *responseCache
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// New builds a gateway. The clock is injectable so cache expiry is testable
// without waiting out the TTL.
func New(cfg Config, notifier Notifier, logger *zap.Logger, now func() time.Time) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		timeout:  timeout,
		client:   &fasthttp.Client{},
		cache:    newResponseCache(cfg.CacheTTL, now),
		notifier: notifier,
		logger:   logger,
		now:      now,
	}
}

// IsConfigured reports whether the endpoint is a well-formed secure URL that
// is not the shipped placeholder. Unconfigured gateways fail fast without
// touching the network.
func (g *Gateway) IsConfigured() bool {
	return endpointConfigured(g.endpoint)
}

func endpointConfigured(endpoint string) bool {
	if endpoint == "" || endpoint == placeholderEndpoint {
		return false
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return parsed.Scheme == "https" && parsed.Host != ""
}

// Categorize asks the backend for a category suggestion. Results that do not
// exactly match one of the enumerated categories resolve to empty.
func (g *Gateway) Categorize(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", nil
	}
	content, err := g.completion(ctx, KindCategorize, title)
	if err != nil {
		return "", err
	}
	return parseCategory(content), nil
}

// GenerateSubtasks asks the backend for subtask suggestions for the title.
func (g *Gateway) GenerateSubtasks(ctx context.Context, title string) ([]string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	content, err := g.completion(ctx, KindGenerateSubtasks, title)
	if err != nil {
		return nil, err
	}
	return splitSubtasks(content), nil
}

// ClearCache drops all cached completions.
func (g *Gateway) ClearCache() {
	g.cache.clear()
}

type completionRequest struct {
	Type   string `json:"type"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

// completion guards the configuration gate before going to the network.
// Unconfigured gateways fail fast with a persistent notice.
func (g *Gateway) completion(ctx context.Context, kind, prompt string) (string, error) {
	if !g.IsConfigured() {
		g.notify(domain.SeverityError, "AI backend is not configured. AI features are unavailable.", 0)
		return "", domain.ErrGatewayUnconfigured
	}
	return g.complete(ctx, kind, prompt)
}

// complete performs one backend call. Failures are surfaced as notices and
// never cached; only successful completions enter the cache.
func (g *Gateway) complete(ctx context.Context, kind, prompt string) (string, error) {
	key := CacheKey(kind, prompt)
	if content, ok := g.cache.get(key); ok {
		return content, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := json.Marshal(completionRequest{Type: kind, Prompt: prompt})
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "failed to encode AI request", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(g.endpoint + completionPath)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := g.client.DoTimeout(req, resp, g.timeout); err != nil {
		g.logger.Error("AI backend unreachable", zap.String("kind", kind), zap.Error(err))
		g.notify(domain.SeverityError, "Cannot reach the AI backend. Check your connection or the endpoint URL.", 10*time.Second)
		return "", domain.WrapError(domain.ErrCodeGatewayRequest, "AI backend unreachable", err)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		detail := serverErrorDetail(resp.Body(), status)
		g.logger.Error("AI backend returned an error",
			zap.String("kind", kind),
			zap.Int("status", status),
			zap.String("detail", detail))
		g.notify(domain.SeverityError, fmt.Sprintf("AI backend error (%s): %s", kind, detail), 10*time.Second)
		return "", domain.NewError(domain.ErrCodeGatewayRequest, detail)
	}

	var parsed completionResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil || len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		g.logger.Error("AI backend returned a malformed body", zap.String("kind", kind), zap.Error(err))
		g.notify(domain.SeverityError, fmt.Sprintf("AI backend error (%s): malformed response", kind), 10*time.Second)
		return "", domain.NewError(domain.ErrCodeGatewayRequest, "malformed AI response")
	}

	content := parsed.Choices[0].Message.Content
	g.cache.put(key, content)
	return content, nil
}

func serverErrorDetail(body []byte, status int) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if len(parsed.Details) > 0 {
			return string(parsed.Details)
		}
	}
	return fmt.Sprintf("status %d", status)
}

func (g *Gateway) notify(severity domain.Severity, message string, duration time.Duration) {
	if g.notifier == nil {
		return
	}
	g.notifier.Notify(domain.Notice{
		Severity:  severity,
		Message:   message,
		Duration:  duration,
		CreatedAt: g.now(),
	})
}

// parseCategory accepts a suggestion only when it exactly matches one of the
// enumerated categories.
func parseCategory(content string) string {
	category := strings.TrimSpace(content)
	if domain.IsValidCategory(category) {
		return category
	}
	return ""
}

// splitSubtasks turns completion text into at most maxSubtasks labels,
// stripping leading bullet markers and dropping blank lines.
func splitSubtasks(content string) []string {
	var subtasks []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "-*•"))
		if line == "" {
			continue
		}
		subtasks = append(subtasks, line)
		if len(subtasks) == maxSubtasks {
			break
		}
	}
	return subtasks
}
