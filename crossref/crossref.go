// Package crossref looks up bibliographic metadata by DOI using the Crossref
// REST API.
package crossref

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultBaseURL is the public Crossref API.
const DefaultBaseURL = "https://api.crossref.org"

// ErrNotFound is returned when Crossref does not know the DOI.
var ErrNotFound = errors.New("doi not found")

// Author is a work contributor.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// Reference is a cited work.
type Reference struct {
	DOI          string `json:"DOI"`
	Author       string `json:"author"`
	ArticleTitle string `json:"article-title"`
}

// Work is the subset of a Crossref work record the layout engine uses.
type Work struct {
	DOI        string
	Title      string
	Subtitle   string
	Authors    []Author
	ISSN       string
	Publisher  string
	Journal    string
	References []Reference
}

type workMessage struct {
	DOI            string      `json:"DOI"`
	Title          []string    `json:"title"`
	Subtitle       []string    `json:"subtitle"`
	Author         []Author    `json:"author"`
	ISSN           []string    `json:"ISSN"`
	Publisher      string      `json:"publisher"`
	ContainerTitle []string    `json:"container-title"`
	Reference      []Reference `json:"reference"`
}

type workResponse struct {
	Status  string      `json:"status"`
	Message workMessage `json:"message"`
}

// Client queries the Crossref works endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Mailto identifies the caller for Crossref's polite pool.
	Mailto string
}

// NewClient creates a client against the public API.
func NewClient(mailto string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		Mailto:     mailto,
	}
}

// Lookup fetches the work registered for doi.
func (c *Client) Lookup(ctx context.Context, doi string) (*Work, error) {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return nil, errors.New("empty doi")
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/works/" + url.PathEscape(doi)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build crossref request")
	}
	req.Header.Set("Accept", "application/json")
	if c.Mailto != "" {
		req.Header.Set("User-Agent", "paperlayout (mailto:"+c.Mailto+")")
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "crossref lookup for %s failed", doi)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrap(ErrNotFound, doi)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Errorf("crossref returned status %d for %s", resp.StatusCode, doi)
	}

	var body workResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "failed to decode crossref response")
	}

	msg := body.Message
	work := &Work{
		DOI:        msg.DOI,
		Title:      first(msg.Title),
		Subtitle:   first(msg.Subtitle),
		Authors:    msg.Author,
		ISSN:       first(msg.ISSN),
		Publisher:  msg.Publisher,
		Journal:    first(msg.ContainerTitle),
		References: msg.Reference,
	}
	if work.DOI == "" {
		work.DOI = doi
	}
	return work, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
