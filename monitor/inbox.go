package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

// Message is one direct message as seen by the monitor. SharedPostCode is
// set when the message is a shared post rather than plain text.
type Message struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	SharedPostCode string    `json:"shared_post_code"`
	Timestamp      time.Time `json:"timestamp"`
}

// PostURLs returns every post link the message carries: links found in the
// text plus the share attachment's shortcode, if any.
func (m Message) PostURLs() []string {
	urls := ExtractPostURLs(m.Text)
	if m.SharedPostCode != "" {
		urls = append(urls, "https://www.instagram.com/p/"+m.SharedPostCode+"/")
	}
	return urls
}

// Thread is a DM conversation with its recent messages, newest first.
type Thread struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

// InboxClient reads the account's direct-message inbox. The transport lives
// outside this module; tests and deployments plug in their own client.
type InboxClient interface {
	RecentThreads(ctx context.Context, amount int) ([]Thread, error)
}

// postURLRe matches Instagram post and reel links inside message text.
var postURLRe = regexp.MustCompile(`https?://(?:www\.)?instagram\.com/(?:p|reel)/[A-Za-z0-9_-]+\S*`)

// ExtractPostURLs pulls every post or reel link out of a message body.
func ExtractPostURLs(text string) []string {
	return postURLRe.FindAllString(text, -1)
}

// HTTPInboxClient reads threads from an inbox bridge sidecar. The bridge
// owns the Instagram session and exposes GET /threads?amount=N returning a
// JSON array of threads.
type HTTPInboxClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func (c *HTTPInboxClient) RecentThreads(ctx context.Context, amount int) ([]Thread, error) {
	u := c.BaseURL + "/threads?amount=" + strconv.Itoa(amount)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inbox bridge responded with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	var threads []Thread
	if err := json.Unmarshal(body, &threads); err != nil {
		return nil, fmt.Errorf("decode inbox response: %w", err)
	}
	return threads, nil
}
