package wikipedia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/harunnryd/kirana/pkg/tools"
	"github.com/tidwall/gjson"
)

const defaultTimeout = 6 * time.Second

// Client reads topic summaries from the Wikipedia REST API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL: "https://en.wikipedia.org/api/rest_v1",
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) Summarize(ctx context.Context, topic string) (tools.TopicSummary, error) {
	endpoint := fmt.Sprintf("%s/page/summary/%s", c.BaseURL, url.PathEscape(topic))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return tools.TopicSummary{}, err
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return tools.TopicSummary{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return tools.TopicSummary{}, fmt.Errorf("wikipedia: unexpected status %d", resp.StatusCode)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return tools.TopicSummary{}, err
	}

	summary := gjson.GetBytes(payload, "extract").String()
	if summary == "" {
		summary = gjson.GetBytes(payload, "description").String()
	}
	title := gjson.GetBytes(payload, "title").String()
	if title == "" {
		title = topic
	}

	return tools.TopicSummary{
		Title:   title,
		Summary: summary,
		URL:     gjson.GetBytes(payload, "content_urls.desktop.page").String(),
		Source:  "wikipedia",
	}, nil
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
