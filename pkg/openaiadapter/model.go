package openaiadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// ErrNoChoices is returned when the endpoint answers without any completion choice.
var ErrNoChoices = errors.New("no choices returned from chat model")

// Options configures a ChatModel.
type Options struct {
	// BaseURL overrides the provider endpoint. Empty keeps the SDK default.
	BaseURL     string
	APIKey      string
	ModelName   string
	Temperature float64
	Logger      *zap.Logger
}

// ChatModel implements the model.LLM interface via sashabaranov/go-openai.
// It is safe for concurrent use once constructed.
type ChatModel struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

var _ model.LLM = (*ChatModel)(nil)

// NewChatModel creates a chat-model client bound to a deployment name and temperature.
func NewChatModel(opts Options) *ChatModel {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ChatModel{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.ModelName,
		temperature: float32(opts.Temperature),
		logger:      logger.Named("chat_model"),
	}
}

// Name returns the deployment name the model sends requests to.
func (m *ChatModel) Name() string {
	return m.model
}

// Temperature returns the sampling temperature applied when a request does not set one.
func (m *ChatModel) Temperature() float64 {
	return float64(m.temperature)
}

// GenerateContent sends one non-streaming chat completion and yields the
// first choice. stream is ignored.
func (m *ChatModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		chatReq, err := m.buildRequest(req)
		if err != nil {
			yield(nil, err)
			return
		}

		m.logger.Debug("sending chat completion",
			zap.String("model", chatReq.Model),
			zap.Int("messages", len(chatReq.Messages)),
			zap.Int("tools", len(chatReq.Tools)),
		)

		resp, err := m.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			yield(nil, fmt.Errorf("chat completion: %w", err))
			return
		}

		out, err := m.toLLMResponse(resp)
		if err != nil {
			yield(nil, fmt.Errorf("convert response: %w", err))
			return
		}

		yield(out, nil)
	}
}

func (m *ChatModel) buildRequest(req *model.LLMRequest) (openai.ChatCompletionRequest, error) {
	messages, err := toChatMessages(req.Contents)
	if err != nil {
		return openai.ChatCompletionRequest{}, fmt.Errorf("convert messages: %w", err)
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: m.temperature,
	}
	if req.Model != "" {
		chatReq.Model = req.Model
	}

	if req.Config != nil {
		if req.Config.SystemInstruction != nil {
			messages = append([]openai.ChatCompletionMessage{systemMessage(req.Config.SystemInstruction)}, messages...)
		}
		if req.Config.Temperature != nil {
			chatReq.Temperature = *req.Config.Temperature
		}
	}
	// go-openai drops a zero temperature as omitempty; the smallest float32
	// survives encoding and samples the same as zero.
	if chatReq.Temperature == 0 {
		chatReq.Temperature = math.SmallestNonzeroFloat32
	}
	chatReq.Messages = messages

	if len(req.Tools) > 0 {
		chatReq.Tools = toChatTools(req.Tools)
	}
	return chatReq, nil
}

// toChatMessages flattens genai contents into chat messages. A function
// response answering a call seen earlier becomes its own tool message, so
// pending text and calls are flushed before it. Responses nothing asked for,
// like artifacts injected by the runtime, stay in the conversation as text.
func toChatMessages(contents []*genai.Content) ([]openai.ChatCompletionMessage, error) {
	var messages []openai.ChatCompletionMessage
	open := make(map[string]bool)

	for _, c := range contents {
		if c == nil {
			continue
		}
		role := chatRole(c.Role)

		var text string
		var calls []openai.ToolCall
		flush := func() {
			if text == "" && len(calls) == 0 {
				return
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:      role,
				Content:   text,
				ToolCalls: calls,
			})
			text, calls = "", nil
		}

		for _, p := range c.Parts {
			switch {
			case p == nil:
			case p.FunctionResponse != nil:
				payload, err := json.Marshal(p.FunctionResponse.Response)
				if err != nil {
					return nil, fmt.Errorf("marshal response of %s: %w", p.FunctionResponse.Name, err)
				}
				id := callID(p.FunctionResponse.ID, p.FunctionResponse.Name)
				if !open[id] {
					text += fmt.Sprintf("\n%s returned: %s\n", p.FunctionResponse.Name, payload)
					continue
				}
				delete(open, id)
				flush()
				messages = append(messages, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    string(payload),
					ToolCallID: id,
				})
			case p.FunctionCall != nil:
				args, err := json.Marshal(p.FunctionCall.Args)
				if err != nil {
					return nil, fmt.Errorf("marshal args of %s: %w", p.FunctionCall.Name, err)
				}
				id := callID(p.FunctionCall.ID, p.FunctionCall.Name)
				open[id] = true
				calls = append(calls, openai.ToolCall{
					ID:   id,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      p.FunctionCall.Name,
						Arguments: string(args),
					},
				})
			default:
				text += p.Text
				if p.InlineData != nil {
					text += inlineText(p.InlineData)
				}
			}
		}
		flush()
	}
	return messages, nil
}

// inlineText passes textual attachments through and replaces anything else
// with a placeholder, since chat content must be valid UTF-8.
func inlineText(b *genai.Blob) string {
	mime := strings.ToLower(b.MIMEType)
	textual := strings.HasPrefix(mime, "text/") || mime == "application/json"
	if textual && utf8.Valid(b.Data) {
		return string(b.Data)
	}
	if mime == "" {
		mime = "binary"
	}
	return fmt.Sprintf("[%s attachment of %d bytes omitted]", mime, len(b.Data))
}

func chatRole(role string) string {
	switch role {
	case "model":
		return openai.ChatMessageRoleAssistant
	case "":
		return openai.ChatMessageRoleUser
	default:
		return role
	}
}

// callID pairs a tool call with its response. genai leaves the ID empty for
// most providers, so the function name stands in.
func callID(id, name string) string {
	if id != "" {
		return id
	}
	return "call_" + name
}

func systemMessage(c *genai.Content) openai.ChatCompletionMessage {
	var text string
	for _, p := range c.Parts {
		text += p.Text
	}
	return openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: text,
	}
}

// Declarer is implemented by tools that provide a genai function declaration.
type Declarer interface {
	Declaration() *genai.FunctionDeclaration
}

func toChatTools(tools map[string]any) []openai.Tool {
	var out []openai.Tool
	for _, v := range tools {
		declarer, ok := v.(Declarer)
		if !ok {
			continue
		}
		decl := declarer.Declaration()
		if decl == nil || decl.Name == "" {
			continue
		}

		var params any = decl.Parameters
		if decl.ParametersJsonSchema != nil {
			params = decl.ParametersJsonSchema
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        decl.Name,
				Description: decl.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

func (m *ChatModel) toLLMResponse(resp openai.ChatCompletionResponse) (*model.LLMResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := resp.Choices[0]
	var parts []*genai.Part
	if choice.Message.Content != "" {
		parts = append(parts, genai.NewPartFromText(choice.Message.Content))
	}

	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			m.logger.Warn("dropping tool call with malformed arguments",
				zap.String("tool", tc.Function.Name),
				zap.Error(err),
			)
			continue
		}
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: args,
			},
		})
	}

	return &model.LLMResponse{
		Content: &genai.Content{Role: "model", Parts: parts},
	}, nil
}
