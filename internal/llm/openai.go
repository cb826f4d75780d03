package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Opts for the OpenAI-compatible completion client.
type Opts struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	// Optional USD prices per 1K tokens, e.g. "0.0015".
	InputPricePer1K  string
	OutputPricePer1K string
}

// OpenAIClient calls an OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	opts    *Opts
	client  *openai.Client
	logger  *zap.SugaredLogger
	pricing *pricing
}

// NewOpenAIClient instantiates a completion client. Options may carry an
// *http.Client to control transport and timeouts.
func NewOpenAIClient(opts *Opts, logger *zap.SugaredLogger, options ...any) (*OpenAIClient, error) {
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	for _, option := range options {
		switch t := option.(type) {
		case *http.Client:
			config.HTTPClient = t
		default:
			return nil, errors.Errorf("unknown option type %T", option)
		}
	}

	p, err := parsePricing(opts.InputPricePer1K, opts.OutputPricePer1K)
	if err != nil {
		return nil, errors.Wrap(err, "parsing pricing")
	}

	return &OpenAIClient{
		opts:    opts,
		client:  openai.NewClientWithConfig(config),
		logger:  logger,
		pricing: p,
	}, nil
}

// Complete sends the assembled message list and returns the first choice's
// text content. Single call, no streaming, no retries.
func (c *OpenAIClient) Complete(ctx context.Context, messages []*Message) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Messages:    toChatCompletionMessages(messages),
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	}

	response, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", errors.Wrap(err, "creating chat completion")
	}
	if len(response.Choices) == 0 {
		return "", errors.Errorf("chat completion returned no choice: %+v", response)
	}

	c.logUsage(response.Usage)
	return response.Choices[0].Message.Content, nil
}

// Reply returns the completion text, or FallbackReply when the request fails
// for any reason. The failure is logged with full detail.
func (c *OpenAIClient) Reply(ctx context.Context, messages []*Message) string {
	reply, err := c.Complete(ctx, messages)
	if err != nil {
		c.logger.Errorw("completion request failed", "model", c.opts.Model, "error", err)
		return FallbackReply
	}
	return reply
}

func (c *OpenAIClient) logUsage(usage openai.Usage) {
	if cost := c.pricing.requestCost(usage.PromptTokens, usage.CompletionTokens); cost != nil {
		c.logger.Infow("completion request served",
			"model", c.opts.Model,
			"prompt_tokens", usage.PromptTokens,
			"completion_tokens", usage.CompletionTokens,
			"cost_usd", cost.String(),
		)
		return
	}
	c.logger.Infow("completion request served",
		"model", c.opts.Model,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
	)
}

func toChatCompletionMessages(messages []*Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, message := range messages {
		if len(message.Parts) == 0 {
			converted = append(converted, openai.ChatCompletionMessage{
				Role:    message.Role,
				Content: message.Content,
			})
			continue
		}

		parts := make([]openai.ChatMessagePart, 0, len(message.Parts))
		for _, part := range message.Parts {
			switch part.Type {
			case PartTypeText:
				parts = append(parts, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: part.Text,
				})
			case PartTypeImage:
				parts = append(parts, openai.ChatMessagePart{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: part.ImageURL},
				})
			default:
				panic(fmt.Errorf("unknown part type %q", part.Type))
			}
		}
		converted = append(converted, openai.ChatCompletionMessage{
			Role:         message.Role,
			MultiContent: parts,
		})
	}
	return converted
}
