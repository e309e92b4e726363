package knowledge

import (
	"context"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"

	"jarvis/internal/proxy"
)

const systemPrompt = `
You are the knowledge backend of a spoken desktop assistant.
Answer the user's question in one or two short sentences suitable for
text-to-speech. Plain prose only: no markdown, no lists, no code blocks.
If you genuinely do not know, say so briefly.
`

const wikipediaSummaryURL = "https://en.wikipedia.org/api/rest_v1/page/summary/"

// Client answers free-form questions. It prefers the chat model and falls
// back to a Wikipedia page summary when no API key is configured or the
// model call fails.
type Client struct {
	llm      *openai.Client
	httpcli  *http.Client
	wikiBase string
}

// NewClient builds a knowledge client. An empty apiKey disables the model
// path; the Wikipedia fallback still works. socksAddr, when set, routes
// both backends through a SOCKS5 proxy.
func NewClient(apiKey, socksAddr string) (*Client, error) {
	httpcli := &http.Client{Timeout: 30 * time.Second}

	var opts []option.RequestOption
	if socksAddr != "" {
		socksCli, err := proxy.NewSocksClient(socksAddr)
		if err != nil {
			return nil, fmt.Errorf("socks proxy: %w", err)
		}
		httpcli = socksCli
		opts = append(opts, option.WithHTTPClient(socksCli))
	}

	c := &Client{httpcli: httpcli, wikiBase: wikipediaSummaryURL}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
		llm := openai.NewClient(opts...)
		c.llm = &llm
	} else {
		log.Info("no API key configured, question answering degrades to Wikipedia summaries")
	}
	return c, nil
}

// HasModel reports whether the chat model backend is available.
func (c *Client) HasModel() bool { return c.llm != nil }

// Answer resolves a spoken question to a short spoken answer.
func (c *Client) Answer(ctx context.Context, question string) (string, error) {
	if c.llm != nil {
		answer, err := c.ask(ctx, question)
		if err == nil {
			return answer, nil
		}
		log.Warn("chat completion failed, trying Wikipedia", "error", err)
	}
	return c.Lookup(ctx, topicOf(question))
}

func (c *Client) ask(ctx context.Context, question string) (string, error) {
	resp, err := c.llm.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(question),
		},
		Model: openai.ChatModelGPT5Nano,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty message content")
	}
	return content, nil
}

// Lookup fetches the Wikipedia summary for a topic.
func (c *Client) Lookup(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("empty topic")
	}

	endpoint := c.wikiBase + url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpcli.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("no article for %q", topic)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	extract := gjson.GetBytes(body, "extract").String()
	if extract == "" {
		return "", fmt.Errorf("article for %q has no summary", topic)
	}
	return firstSentences(extract, 2), nil
}

// topicOf strips interrogative boilerplate so the leftover phrase works as
// an article title guess.
func topicOf(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	q = strings.TrimRight(q, "?.!")
	for _, prefix := range []string{
		"what is a ", "what is an ", "what is the ", "what is ",
		"what are ", "who is the ", "who is ", "who was ",
		"tell me about ", "define ", "explain ",
	} {
		if strings.HasPrefix(q, prefix) {
			return strings.TrimSpace(q[len(prefix):])
		}
	}
	return q
}

// firstSentences keeps at most n sentences of prose.
func firstSentences(text string, n int) string {
	count := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Skip dots inside abbreviations or numbers.
		if i+1 < len(text) && text[i+1] != ' ' && text[i+1] != '\n' {
			continue
		}
		count++
		if count == n {
			return strings.TrimSpace(text[:i+1])
		}
	}
	return strings.TrimSpace(text)
}
