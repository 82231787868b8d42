// Package mediawiki talks to the wiki's api.php and exposes it as a page store.
package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/repository"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/metrics"
)

// Ensure Client implements repository.Store.
var _ repository.Store = (*Client)(nil)

// Client handles MediaWiki API requests.
type Client struct {
	apiURL     string
	httpClient *http.Client
	userAgent  string
	log        logger.Logger
}

// New creates a client for the given api.php endpoint. The default HTTP client
// keeps cookies so an authenticated session survives between calls.
func New(apiURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		apiURL:     strings.TrimRight(strings.TrimSpace(apiURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second, Jar: jar},
		userAgent:  "MaccabiBot/1.0",
		log:        logger.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type envelope struct {
	Error    *apiError       `json:"error"`
	Continue json.RawMessage `json:"continue"`
	Query    json.RawMessage `json:"query"`
	Edit     *struct {
		Result   string `json:"result"`
		NoChange *bool  `json:"nochange"`
	} `json:"edit"`
}

// ListReferring returns every page that transcludes Template:<template>,
// following continuation until the list is exhausted.
func (c *Client) ListReferring(ctx context.Context, template string) ([]string, error) {
	params := url.Values{
		"action":  {"query"},
		"list":    {"embeddedin"},
		"eititle": {"Template:" + template},
		"eilimit": {"max"},
	}

	var titles []string
	for {
		env, err := c.call(ctx, http.MethodGet, "embeddedin", params)
		if err != nil {
			return nil, err
		}
		var q struct {
			EmbeddedIn []struct {
				Title string `json:"title"`
			} `json:"embeddedin"`
		}
		if err := json.Unmarshal(env.Query, &q); err != nil {
			return nil, fmt.Errorf("%w: embeddedin: %w", ErrUnexpectedResponse, err)
		}
		for _, p := range q.EmbeddedIn {
			titles = append(titles, p.Title)
		}

		if len(env.Continue) == 0 {
			return titles, nil
		}
		var cont map[string]string
		if err := json.Unmarshal(env.Continue, &cont); err != nil {
			return nil, fmt.Errorf("%w: continue: %w", ErrUnexpectedResponse, err)
		}
		for k, v := range cont {
			params.Set(k, v)
		}
	}
}

// Get returns the latest revision of a page.
func (c *Client) Get(ctx context.Context, title string) (repository.Page, error) {
	env, err := c.call(ctx, http.MethodGet, "revisions", url.Values{
		"action":  {"query"},
		"prop":    {"revisions"},
		"titles":  {title},
		"rvprop":  {"content|timestamp"},
		"rvslots": {"main"},
	})
	if err != nil {
		return repository.Page{}, err
	}

	var q struct {
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Invalid   bool   `json:"invalid"`
			Revisions []struct {
				Timestamp string `json:"timestamp"`
				Slots     struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(env.Query, &q); err != nil {
		return repository.Page{}, fmt.Errorf("%w: revisions: %w", ErrUnexpectedResponse, err)
	}
	if len(q.Pages) == 0 {
		return repository.Page{}, fmt.Errorf("%w: no pages for %q", ErrUnexpectedResponse, title)
	}
	p := q.Pages[0]
	if p.Missing || p.Invalid || len(p.Revisions) == 0 {
		return repository.Page{}, fmt.Errorf("%w: %q", repository.ErrNotFound, title)
	}
	rev := p.Revisions[0]
	return repository.Page{Title: p.Title, Text: rev.Slots.Main.Content, BaseTimestamp: rev.Timestamp}, nil
}

// Save edits an existing page as a bot edit. The page is never created.
func (c *Client) Save(ctx context.Context, page repository.Page, summary string) error {
	token, err := c.csrfToken(ctx)
	if err != nil {
		return err
	}

	form := url.Values{
		"action":   {"edit"},
		"title":    {page.Title},
		"text":     {page.Text},
		"summary":  {summary},
		"bot":      {"1"},
		"nocreate": {"1"},
		"token":    {token},
	}
	if page.BaseTimestamp != "" {
		form.Set("basetimestamp", page.BaseTimestamp)
	}

	env, err := c.call(ctx, http.MethodPost, "edit", form)
	if err != nil {
		return err
	}
	if env.Edit == nil || env.Edit.Result != "Success" {
		return fmt.Errorf("%w: edit of %q not acknowledged", ErrUnexpectedResponse, page.Title)
	}
	c.log.Debug(ctx, "page saved", logger.String("title", page.Title))
	return nil
}

func (c *Client) csrfToken(ctx context.Context) (string, error) {
	env, err := c.call(ctx, http.MethodGet, "tokens", url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"type":   {"csrf"},
	})
	if err != nil {
		return "", err
	}
	var q struct {
		Tokens struct {
			CSRF string `json:"csrftoken"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal(env.Query, &q); err != nil || q.Tokens.CSRF == "" {
		return "", fmt.Errorf("%w: missing csrf token", ErrUnexpectedResponse)
	}
	return q.Tokens.CSRF, nil
}

// call performs one api.php request and maps API level errors onto sentinels.
func (c *Client) call(ctx context.Context, method, action string, params url.Values) (*envelope, error) {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var (
		req *http.Request
		err error
	)
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, c.apiURL, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.apiURL+"?"+params.Encode(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordWikiRequest(action, "transport_error")
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.RecordWikiRequest(action, fmt.Sprint(resp.StatusCode))
		return nil, fmt.Errorf("%w: %s: status=%d, body=%s", ErrTransport, action, resp.StatusCode, body)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		metrics.RecordWikiRequest(action, "bad_json")
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrUnexpectedResponse, action, err)
	}
	if env.Error != nil {
		metrics.RecordWikiRequest(action, env.Error.Code)
		return nil, mapAPIError(action, env.Error)
	}
	metrics.RecordWikiRequest(action, "ok")
	return &env, nil
}

func mapAPIError(action string, e *apiError) error {
	switch e.Code {
	case "editconflict":
		return fmt.Errorf("%w: %s", repository.ErrEditConflict, e.Info)
	case "missingtitle":
		return fmt.Errorf("%w: %s", repository.ErrNotFound, e.Info)
	default:
		return fmt.Errorf("%w: %s: %s: %s", ErrAPI, action, e.Code, e.Info)
	}
}
