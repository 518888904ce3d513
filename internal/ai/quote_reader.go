package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// visionPageLimit caps how many quotation pages are sent to the model.
const visionPageLimit = 2

// QuoteReader fills the requisition form from an uploaded vendor
// quotation document. PDF pages are rasterized and read by the vision
// model; the output contract is the same Draft as free-text autofill.
type QuoteReader struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewQuoteReader creates a new quotation reader.
func NewQuoteReader(apiKey, model string, logger *zap.Logger) *QuoteReader {
	return &QuoteReader{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// ReadAndExtract reads a quotation file (PDF or image) and extracts a
// form draft from it.
func (r *QuoteReader) ReadAndExtract(ctx context.Context, path string) (*Draft, error) {
	r.logger.Info("Reading quotation for autofill", zap.String("path", path))

	images, err := r.convertToImages(path)
	if err != nil {
		r.logger.Error("Failed to convert quotation to images", zap.Error(err))
		return nil, fmt.Errorf("autofill failed: %w", err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("autofill failed: no pages extracted from %s", filepath.Base(path))
	}

	if len(images) > visionPageLimit {
		images = images[:visionPageLimit]
	}

	return r.extractWithVision(ctx, images)
}

// convertToImages rasterizes PDF pages to JPEG; image files pass through.
func (r *QuoteReader) convertToImages(path string) ([][]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		return [][]byte{data}, nil
	}
	if ext != ".pdf" {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var images [][]byte
	for page := 0; page < doc.NumPage(); page++ {
		img, err := doc.Image(page)
		if err != nil {
			r.logger.Warn("Failed to rasterize page", zap.Int("page", page), zap.Error(err))
			continue
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			r.logger.Warn("Failed to encode page", zap.Int("page", page), zap.Error(err))
			continue
		}
		images = append(images, buf.Bytes())
	}

	return images, nil
}

// extractWithVision sends the page images to the vision model and parses
// the same form draft the free-text path produces.
func (r *QuoteReader) extractWithVision(ctx context.Context, images [][]byte) (*Draft, error) {
	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: buildQuotePrompt(),
		},
	}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(img)),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		MaxTokens:   4096,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		r.logger.Error("Vision API call failed", zap.Error(err))
		return nil, fmt.Errorf("autofill failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("autofill failed: no response from model")
	}

	draft, err := parseDraft(resp.Choices[0].Message.Content)
	if err != nil {
		r.logger.Error("Failed to parse vision response", zap.Error(err))
		return nil, fmt.Errorf("autofill failed: %w", err)
	}

	r.logger.Info("Quotation extracted",
		zap.Int("pages", len(images)),
		zap.Int("line_items", len(draft.LineItems)))

	return draft, nil
}

// buildQuotePrompt builds the vision extraction instruction.
func buildQuotePrompt() string {
	return `Examine this vendor quotation document and extract the data needed to fill a Purchase Order Requisition form.

Extract:
- the vendor's name and address into "vendorDetails", formatted as Name \n Address
- a vendor code if one is printed, into "vendorCode"
- every quoted item into "lineItems" with description, quantity and unitPrice
- branch/dept of the requesting party if stated; otherwise use realistic placeholders

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

Extract exactly what you see; do not invent prices. Use empty string or 0 for fields that are not visible.`
}
