package searchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Fetcher performs one paginated fetch against the search endpoint. It issues
// exactly one network call per invocation and never retries: whether a
// response is still relevant is the caller's decision, not the fetcher's.
type Fetcher interface {
	FetchPage(ctx context.Context, query string, page int) (*Page, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// FetchPage requests one result page for the query. Pages are 1-based; an
// empty query is a caller bug and is rejected before any network traffic.
func (c *Client) FetchPage(ctx context.Context, query string, page int) (*Page, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	requestURL := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.WithFields(logrus.Fields{
		"query": query,
		"page":  page,
		"url":   requestURL,
	}).Debug("Fetching search page")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"query":         query,
		"page":          page,
		"response_size": len(responseBody),
	}).Debug("Search response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Body: string(responseBody)}
	}

	var result Page
	if err := json.Unmarshal(responseBody, &result); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	if result.CurrentPage < 1 || result.TotalPages < 0 || result.TotalHits < 0 {
		return nil, &MalformedResponseError{
			Err: fmt.Errorf("implausible pagination fields: current_page=%d total_pages=%d total_hits=%d",
				result.CurrentPage, result.TotalPages, result.TotalHits),
		}
	}

	return &result, nil
}
