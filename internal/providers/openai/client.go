// Package openai talks to the OpenAI chat, image and vision endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/infra"
	"github.com/juliusiqbal/ai-img-gen/internal/promptsynth"
	"github.com/juliusiqbal/ai-img-gen/internal/providers/vision"
)

const serviceName = "openai"

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultTimeout     = 120 * time.Second
	defaultMaxAttempts = 2
	defaultRetryDelay  = 500 * time.Millisecond
	defaultImageSize   = "1024x1024"
	defaultQuality     = "standard"
	visionMaxTokens    = 300
	maxDownloadBytes   = 32 << 20
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = &domain.ConfigurationError{Setting: "OPENAI_API_KEY"}

// Options configures the OpenAI client.
type Options struct {
	APIKey         string
	BaseURL        string
	Organization   string
	ImageModel     string
	ChatModel      string
	VisionModel    string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	MaxAttempts    int
	// RetryDelay defaults to 500ms; a negative value retries immediately.
	RetryDelay time.Duration
	OnWarning  func(reason, detail string)
}

// Client performs HTTP calls to the OpenAI API.
type Client struct {
	apiKey       string
	baseURL      string
	organization string
	imageModel   string
	chatModel    string
	visionModel  string
	httpClient   *http.Client
	logger       *infra.Logger
	maxAttempts  int
	retryDelay   time.Duration
}

// ImageRequest captures the inputs for one image generation call.
type ImageRequest struct {
	Prompt    string
	Size      string
	Quality   string
	RequestID string
}

// ImageAsset is a downloaded generated image.
type ImageAsset struct {
	URL           string
	Data          []byte
	Format        string
	Width         int
	Height        int
	RevisedPrompt string
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL           string `json:"url"`
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// NewClient constructs a client with defaults for unset options.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	delay := opts.RetryDelay
	if delay < 0 {
		delay = 0
	} else if delay == 0 {
		delay = defaultRetryDelay
	}
	resolve := func(kind, name, fallback string) string {
		model, reason := normalizeModel(name, fallback)
		if reason != "" && opts.OnWarning != nil {
			opts.OnWarning(kind+"_model_"+reason, fmt.Sprintf("requested=%s resolved=%s", name, model))
		}
		return model
	}
	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		imageModel:   resolve("image", opts.ImageModel, defaultImageModel),
		chatModel:    resolve("chat", opts.ChatModel, defaultChatModel),
		visionModel:  resolve("vision", opts.VisionModel, defaultVisionModel),
		httpClient:   httpClient,
		logger:       logger,
		maxAttempts:  attempts,
		retryDelay:   delay,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// ImageModel returns the configured image model identifier.
func (c *Client) ImageModel() string {
	return c.imageModel
}

// Complete runs a chat completion and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, req promptsynth.Completion) (string, error) {
	payload := chatRequest{
		Model:       c.chatModel,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    []chatMessage{},
	}
	if req.System != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: req.System})
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: req.User})
	if req.JSON {
		payload.ResponseFormat = &chatFormat{Type: "json_object"}
	}
	return c.chat(ctx, payload)
}

// Describe asks the vision model for a description of img.
func (c *Client) Describe(ctx context.Context, img vision.Image, categoryHint string) (string, error) {
	if len(img.Data) == 0 {
		return "", nil
	}
	mime := strings.TrimSpace(img.MIME)
	if mime == "" {
		mime = http.DetectContentType(img.Data)
	}
	payload := chatRequest{
		Model:     c.visionModel,
		MaxTokens: visionMaxTokens,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: vision.AnalysisPrompt(categoryHint)},
				{Type: "image_url", ImageURL: &imageURL{URL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)}},
			},
		}},
	}
	return c.chat(ctx, payload)
}

var _ promptsynth.LanguageModel = (*Client)(nil)

var _ vision.Describer = (*Client)(nil)

func (c *Client) chat(ctx context.Context, payload chatRequest) (string, error) {
	raw, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		return "", err
	}
	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", c.externalErr(0, "", "decode chat response", err)
	}
	if len(out.Choices) == 0 {
		return "", c.externalErr(0, "", "no choices returned", nil)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// GenerateImage requests one image and downloads it.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageAsset, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("openai: prompt is required: %w", domain.ErrInvalidInput)
	}
	size := strings.TrimSpace(req.Size)
	if size == "" {
		size = defaultImageSize
	}
	quality := strings.TrimSpace(req.Quality)
	if quality == "" {
		quality = defaultQuality
	}
	raw, err := c.post(ctx, "/images/generations", imageGenerationRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           size,
		Quality:        quality,
		ResponseFormat: "url",
	})
	if err != nil {
		return nil, err
	}
	var decoded imageGenerationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, c.externalErr(0, "", "decode image response", err)
	}
	if len(decoded.Data) == 0 {
		return nil, c.externalErr(0, "", "no image returned", nil)
	}
	item := decoded.Data[0]
	asset := &ImageAsset{URL: strings.TrimSpace(item.URL), RevisedPrompt: item.RevisedPrompt}
	switch {
	case item.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, c.externalErr(0, "", "decode image payload", err)
		}
		asset.Data = data
		asset.Format = http.DetectContentType(data)
	case asset.URL != "":
		asset.Data, asset.Format, err = c.Download(ctx, asset.URL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, c.externalErr(0, "", "empty image url", nil)
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(asset.Data)); err == nil {
		asset.Width, asset.Height = cfg.Width, cfg.Height
	}
	c.logger.Debug().
		Str("model", c.imageModel).
		Str("request_id", req.RequestID).
		Int("width", asset.Width).
		Int("height", asset.Height).
		Msg("openai: generated image asset")
	return asset, nil
}

// Download fetches a generated image, retrying transient failures like post.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil || parsed.Scheme == "" {
		return nil, "", c.externalErr(0, "", "invalid image url "+imageURL, err)
	}
	var (
		data   []byte
		format string
	)
	err = c.retry(ctx, "download", func() error {
		var err error
		data, format, err = c.downloadOnce(ctx, parsed.String())
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return data, format, nil
}

func (c *Client) downloadOnce(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("openai: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		return nil, "", c.externalErr(0, "", "download image", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", c.externalErr(resp.StatusCode, "", fmt.Sprintf("download status %d", resp.StatusCode), nil)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, "", c.externalErr(0, "", "read image", err)
	}
	format := resp.Header.Get("Content-Type")
	if format == "" || format == "application/octet-stream" {
		format = http.DetectContentType(data)
	}
	return data, format, nil
}

// post sends payload to path, retrying transient failures.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}
	var raw []byte
	err = c.retry(ctx, path, func() error {
		var err error
		raw, err = c.postOnce(ctx, path, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// retry runs fn up to maxAttempts times. Only generic external errors with no
// status or a 5xx status are retried.
func (c *Client) retry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(c.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		var ext *domain.ExternalServiceError
		if ctx.Err() != nil || !errors.As(err, &ext) || !ext.Retryable() {
			break
		}
		c.logger.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("openai: retrying request")
	}
	return lastErr
}

func (c *Client) postOnce(ctx context.Context, path string, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", c.organization)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, c.externalErr(0, "", "http request", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.externalErr(0, "", "read response", err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		message := strings.TrimSpace(string(raw))
		code := ""
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error.Message != "" {
			message = detail.Error.Message
			if detail.Error.Code != nil {
				code = fmt.Sprint(detail.Error.Code)
			}
			if code == "" {
				code = detail.Error.Type
			}
		}
		return nil, c.externalErr(resp.StatusCode, code, message, nil)
	}
	return raw, nil
}

func (c *Client) externalErr(status int, code, message string, err error) error {
	return &domain.ExternalServiceError{
		Kind:    domain.ClassifyExternal(status, code, message),
		Service: serviceName,
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
