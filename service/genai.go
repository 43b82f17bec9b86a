package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"
)

var (
	ErrGenerationFailed = errors.New("failed to generate content")
	ErrEmbeddingFailed  = errors.New("failed to generate embedding")
)

// AnalysisModel is the generative model behind analysis and direct queries.
const AnalysisModel = "gemini-3-pro-preview"

const (
	defaultEmbeddingAPI  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"
	defaultBatchAPI      = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:batchEmbedContents"
	defaultGenerationAPI = "https://generativelanguage.googleapis.com/v1beta/models/" + AnalysisModel + ":generateContent"
	maxRetries           = 3
	initialBackoff       = time.Second
	embeddingDims        = 768
	embeddingBatchSize   = 100
	maxPromptChars       = 30000
)

// EmbeddingRequest represents an embedding API request
type EmbeddingRequest struct {
	Model                string       `json:"model"`
	Content              ContentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

// ContentInput represents content for embedding
type ContentInput struct {
	Parts []PartInput `json:"parts"`
}

// PartInput represents a part of content
type PartInput struct {
	Text string `json:"text"`
}

// EmbeddingResponse represents an embedding API response
type EmbeddingResponse struct {
	Embedding EmbeddingData `json:"embedding"`
}

// EmbeddingData contains the embedding values
type EmbeddingData struct {
	Values []float64 `json:"values"`
}

// BatchEmbeddingRequest represents a batch embedding API request
type BatchEmbeddingRequest struct {
	Requests []EmbeddingRequest `json:"requests"`
}

// BatchEmbeddingItem is the structure returned by the batch API (no nested "embedding" key)
type BatchEmbeddingItem struct {
	Values []float64 `json:"values"`
}

// BatchEmbeddingResponse represents a batch embedding API response
type BatchEmbeddingResponse struct {
	Embeddings []BatchEmbeddingItem `json:"embeddings"`
}

// TextGenerator is the generative surface the pipeline consumes.
// GenAIClient implements it.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, temperature float64) (string, error)
	EmbedText(ctx context.Context, text, taskType string) ([]float64, error)
}

// GenAIClient calls the Gemini REST API directly over HTTP. Endpoints are
// overridable so tests can point the client at a local server.
type GenAIClient struct {
	apiKey        string
	embeddingURL  string
	batchURL      string
	generationURL string
	httpClient    *http.Client
}

// GenAIOption is a functional option for GenAIClient
type GenAIOption func(*GenAIClient)

// GenAIWithAPIKey sets the API key
func GenAIWithAPIKey(key string) GenAIOption {
	return func(c *GenAIClient) {
		c.apiKey = key
	}
}

// GenAIWithEndpoints overrides the embedding, batch embedding and generation endpoints
func GenAIWithEndpoints(embeddingURL, batchURL, generationURL string) GenAIOption {
	return func(c *GenAIClient) {
		c.embeddingURL = embeddingURL
		c.batchURL = batchURL
		c.generationURL = generationURL
	}
}

// GenAIWithHTTPClient overrides the HTTP client
func GenAIWithHTTPClient(client *http.Client) GenAIOption {
	return func(c *GenAIClient) {
		c.httpClient = client
	}
}

// NewGenAIClient creates a new Gemini client
func NewGenAIClient(opts ...GenAIOption) *GenAIClient {
	c := &GenAIClient{
		embeddingURL:  defaultEmbeddingAPI,
		batchURL:      defaultBatchAPI,
		generationURL: defaultGenerationAPI,
		httpClient:    &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EmbedText generates a 768-dimensional L2-normalized embedding for text.
// taskType is "RETRIEVAL_QUERY" for search queries and "RETRIEVAL_DOCUMENT"
// for corpus documents.
func (c *GenAIClient) EmbedText(ctx context.Context, text, taskType string) ([]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	reqBody := EmbeddingRequest{
		Model: "models/gemini-embedding-001",
		Content: ContentInput{
			Parts: []PartInput{{Text: text}},
		},
		TaskType:             taskType,
		OutputDimensionality: embeddingDims,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.embeddingURL, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp EmbeddingResponse
			if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
				resp.Body.Close()
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			resp.Body.Close()

			embedding := apiResp.Embedding.Values
			if len(embedding) != embeddingDims {
				return nil, fmt.Errorf("expected %d-dimensional embedding, got %d", embeddingDims, len(embedding))
			}
			normalizeEmbedding(embedding)
			return embedding, nil
		}

		resp.Body.Close()

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("API error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, ErrEmbeddingFailed
}

// EmbedBatch embeds texts in batches of up to 100 through the batch endpoint.
// Results come back in input order, each 768-dimensional and L2-normalized.
func (c *GenAIClient) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := texts[start:end]
		requests := make([]EmbeddingRequest, len(batch))
		for i, text := range batch {
			requests[i] = EmbeddingRequest{
				Model: "models/gemini-embedding-001",
				Content: ContentInput{
					Parts: []PartInput{{Text: text}},
				},
				TaskType:             taskType,
				OutputDimensionality: embeddingDims,
			}
		}

		jsonData, err := json.Marshal(BatchEmbeddingRequest{Requests: requests})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal batch request: %w", err)
		}

		batchResult, err := c.callBatchAPI(ctx, jsonData, len(batch))
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batchResult...)

		// Brief sleep to avoid rate limits
		if end < len(texts) {
			time.Sleep(100 * time.Millisecond)
		}
	}

	return embeddings, nil
}

// callBatchAPI sends one batch request with retries and validates the result count
func (c *GenAIClient) callBatchAPI(ctx context.Context, jsonData []byte, want int) ([][]float64, error) {
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.batchURL, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
				return nil, fmt.Errorf("API error: %d", resp.StatusCode)
			}
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
			}
			continue
		}

		var apiResp BatchEmbeddingResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
			resp.Body.Close()
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to decode response: %w", err)
			}
			continue
		}
		resp.Body.Close()

		if len(apiResp.Embeddings) != want {
			return nil, fmt.Errorf("mismatch: got %d embeddings for %d texts", len(apiResp.Embeddings), want)
		}

		result := make([][]float64, len(apiResp.Embeddings))
		for i, item := range apiResp.Embeddings {
			if len(item.Values) != embeddingDims {
				return nil, fmt.Errorf("expected %d-dimensional embedding, got %d", embeddingDims, len(item.Values))
			}
			normalizeEmbedding(item.Values)
			result[i] = item.Values
		}
		return result, nil
	}

	return nil, ErrEmbeddingFailed
}

// normalizeEmbedding scales v to unit length in place
func normalizeEmbedding(v []float64) {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
}

// GenerateText runs one generation call with retries and doubling backoff.
// Prompts beyond maxPromptChars are cut with a logged warning; callers are
// expected to stay under the context token budget so this rarely fires.
func (c *GenAIClient) GenerateText(ctx context.Context, prompt string, temperature float64) (string, error) {
	truncated := prompt
	if len(prompt) > maxPromptChars {
		truncated = prompt[:maxPromptChars] + "\n\n[Content truncated due to length...]"
		log.Printf("Warning: Prompt too long (%d chars), truncating to %d chars", len(prompt), maxPromptChars)
	}

	var content string
	var err error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		content, err = c.callGenerationAPI(ctx, truncated, temperature)
		if err != nil {
			if attempt == maxRetries-1 {
				return "", fmt.Errorf("%w after %d attempts: %v", ErrGenerationFailed, maxRetries, err)
			}
			continue
		}

		if content != "" {
			break
		}

		if attempt == maxRetries-1 {
			return "", ErrGenerationFailed
		}
	}

	if content == "" {
		return "", ErrGenerationFailed
	}

	return content, nil
}

// callGenerationAPI performs a single generation HTTP call
func (c *GenAIClient) callGenerationAPI(ctx context.Context, prompt string, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.generationURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Printf("Gemini API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return "", fmt.Errorf("API error: %d - %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		log.Printf("Failed to decode response. Body: %s", string(bodyBytes))
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("API error: %s (code: %d)", apiResp.Error.Message, apiResp.Error.Code)
	}

	if apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("API blocked prompt: %s", apiResp.PromptFeedback.BlockReason)
	}

	if len(apiResp.Candidates) == 0 {
		log.Printf("API returned no candidates. Full response: %s", string(bodyBytes))
		return "", fmt.Errorf("API returned no candidates")
	}

	var responseText strings.Builder
	for i, candidate := range apiResp.Candidates {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			log.Printf("Warning: Candidate %d finished with reason: %s", i, candidate.FinishReason)
		}

		if len(candidate.Content.Parts) == 0 {
			log.Printf("Error: Candidate %d has no parts. Full API response (first 1000 chars): %s", i, string(bodyBytes[:min(1000, len(bodyBytes))]))
			return "", fmt.Errorf("API candidate has no parts (finish reason: %s)", candidate.FinishReason)
		}

		for j, part := range candidate.Content.Parts {
			if part.Text == "" {
				log.Printf("Warning: Candidate %d, part %d has empty text", i, j)
				continue
			}
			responseText.WriteString(part.Text)
		}
	}

	result := responseText.String()
	if result == "" {
		return "", fmt.Errorf("API returned empty content")
	}

	return result, nil
}

// min returns the minimum of two integers
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
