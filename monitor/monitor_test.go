package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"insta-archiver/pipeline"
)

func TestExtractPostURLs(t *testing.T) {
	text := "check this https://www.instagram.com/p/ABC123/ and https://instagram.com/reel/xYz_9/?igsh=x too"
	urls := ExtractPostURLs(text)
	assert.Len(t, urls, 2)
	assert.Contains(t, urls[0], "/p/ABC123/")
	assert.Contains(t, urls[1], "/reel/xYz_9/")

	assert.Empty(t, ExtractPostURLs("no links here"))
	assert.Empty(t, ExtractPostURLs("https://www.instagram.com/someuser/ profile link only"))
}

func TestMessagePostURLsWithShare(t *testing.T) {
	msg := Message{Text: "look at this", SharedPostCode: "ABC123"}
	assert.Equal(t, []string{"https://www.instagram.com/p/ABC123/"}, msg.PostURLs())

	msg = Message{Text: "https://www.instagram.com/p/XYZ/", SharedPostCode: "ABC123"}
	assert.Len(t, msg.PostURLs(), 2)
}

type fakeProcessor struct {
	calls []string
	err   error
}

func (f *fakeProcessor) Process(ctx context.Context, rawURL, source string) (*pipeline.Result, error) {
	f.calls = append(f.calls, rawURL+"|"+source)
	return &pipeline.Result{}, f.err
}

type fakeInbox struct {
	threads []Thread
	err     error
}

func (f *fakeInbox) RecentThreads(ctx context.Context, amount int) ([]Thread, error) {
	return f.threads, f.err
}

func newTestMonitor(t *testing.T, inbox InboxClient, proc Processor) *Monitor {
	store, err := NewProcessedStore(filepath.Join(t.TempDir(), "processed.json"))
	assert.NoError(t, err)
	return &Monitor{Inbox: inbox, Store: store, Processor: proc}
}

func TestScanProcessesNewMessagesOnce(t *testing.T) {
	inbox := &fakeInbox{threads: []Thread{
		{ID: "t1", Messages: []Message{
			{ID: "m1", Text: "look: https://www.instagram.com/p/ABC123/"},
			{ID: "m2", Text: "no link"},
		}},
	}}
	proc := &fakeProcessor{}
	m := newTestMonitor(t, inbox, proc)

	m.scan(context.Background(), 10)
	m.scan(context.Background(), 10)

	assert.Equal(t, []string{"https://www.instagram.com/p/ABC123/|dm-monitor"}, proc.calls)
	assert.True(t, m.Store.Contains("m1"))
	assert.True(t, m.Store.Contains("m2"), "messages without links are marked too")
}

func TestScanMarksFailedMessagesProcessed(t *testing.T) {
	inbox := &fakeInbox{threads: []Thread{
		{ID: "t1", Messages: []Message{{ID: "m1", Text: "https://www.instagram.com/p/BROKEN/"}}},
	}}
	proc := &fakeProcessor{err: errors.New("all providers failed")}
	m := newTestMonitor(t, inbox, proc)

	m.scan(context.Background(), 10)
	m.scan(context.Background(), 10)

	assert.Len(t, proc.calls, 1, "a failing post is not retried forever")
	assert.True(t, m.Store.Contains("m1"))
}

func TestScanInboxErrorIsNonFatal(t *testing.T) {
	inbox := &fakeInbox{err: errors.New("session expired")}
	proc := &fakeProcessor{}
	m := newTestMonitor(t, inbox, proc)

	m.scan(context.Background(), 10)
	assert.Empty(t, proc.calls)
}

func TestHTTPInboxClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/threads", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("amount"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id": "t1", "messages": [{"id": "m1", "text": "hi", "shared_post_code": "ABC"}]}]`))
	}))
	defer server.Close()

	c := &HTTPInboxClient{BaseURL: server.URL, Token: "secret", HTTPClient: server.Client()}
	threads, err := c.RecentThreads(context.Background(), 5)
	assert.NoError(t, err)
	assert.Len(t, threads, 1)
	assert.Equal(t, "m1", threads[0].Messages[0].ID)
}

func TestHTTPInboxClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := &HTTPInboxClient{BaseURL: server.URL, HTTPClient: server.Client()}
	_, err := c.RecentThreads(context.Background(), 5)
	assert.ErrorContains(t, err, "status 401")
}
