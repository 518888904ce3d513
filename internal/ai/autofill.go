package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You are a procurement assistant helping to fill out a " +
	"'Purchase Order Requisition' form. Always respond with valid JSON."

// Autofill generates a partial requisition from a free-text purchase
// description. Any provider failure surfaces as a single opaque error;
// the caller's record is never partially touched.
type Autofill struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewAutofill creates a new autofill provider.
func NewAutofill(apiKey, model string, temperature float32, logger *zap.Logger) *Autofill {
	return &Autofill{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

// Generate asks the model to fill the form from the user's request.
func (a *Autofill) Generate(ctx context.Context, prompt string) (*Draft, error) {
	a.logger.Debug("Generating autofill draft", zap.Int("prompt_length", len(prompt)))

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildFormPrompt(prompt),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		a.logger.Error("Autofill API call failed", zap.Error(err))
		return nil, fmt.Errorf("autofill failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("autofill failed: no response from model")
	}

	draft, err := parseDraft(resp.Choices[0].Message.Content)
	if err != nil {
		a.logger.Error("Failed to parse autofill response",
			zap.Error(err),
			zap.String("content", resp.Choices[0].Message.Content))
		return nil, fmt.Errorf("autofill failed: %w", err)
	}

	a.logger.Info("Autofill draft generated",
		zap.String("branch", draft.Branch),
		zap.String("dept", draft.Dept),
		zap.Int("line_items", len(draft.LineItems)))

	return draft, nil
}

// buildFormPrompt builds the form-filling instruction around the user's
// request.
func buildFormPrompt(request string) string {
	return fmt.Sprintf(`Based on the following user request, generate the JSON data to fill the form.
User Request: "%s"

If specific details (like names, codes) are missing, generate realistic placeholder data relevant to the request context (e.g., general office supplies for Quantum Global Solutions).
For 'vendorDetails', format it as Name \n Address.

Return a JSON object with this exact structure:
{
  "deptTrackingNo": "string",
  "branch": "string",
  "dept": "string",
  "requestorName": "string",
  "vendorCode": "string",
  "vendorDetails": "string",
  "lineItems": [{"description": "string", "quantity": number, "unitPrice": number}],
  "spoNo": "string"
}

"branch", "dept" and "lineItems" are mandatory; every line item needs description, quantity and unitPrice. Omit nothing, use empty strings for unknown optional fields.`, request)
}

// parseDraft decodes a model response, tolerating JSON wrapped in
// markdown fences, and enforces the mandatory fields.
func parseDraft(content string) (*Draft, error) {
	var draft Draft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		jsonStr := extractJSON(content)
		if jsonStr == "" {
			return nil, fmt.Errorf("response is not valid JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(jsonStr), &draft); err != nil {
			return nil, fmt.Errorf("response is not valid JSON: %w", err)
		}
	}

	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return &draft, nil
}

// extractJSON pulls the first balanced JSON object out of surrounding
// text such as markdown code fences.
func extractJSON(content string) string {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return content[start : i+1]
				}
			}
		}
	}
	return ""
}
