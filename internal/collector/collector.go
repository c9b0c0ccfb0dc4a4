// Package collector pulls a forum's submissions for one calendar year from
// the Pushshift search API.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/runnerr0/subplot/internal/config"
	"github.com/runnerr0/subplot/internal/record"
)

// SearchPath is the submission search endpoint, relative to the base URL.
const SearchPath = "/reddit/search/submission/"

var requestedFields = "id,created_utc,author,title,permalink"

// maxPageSize bounds how far a page grows while paging through submissions
// that share one creation second.
const maxPageSize = 1000

// ErrUpstreamQuery is returned when the archive cannot be queried or answers
// with an error status. A collection never returns partial data alongside it.
var ErrUpstreamQuery = errors.New("upstream query failed")

// Client pages through the search API.
type Client struct {
	http       *resty.Client
	siteOrigin string
	pageSize   int
}

// New builds a Client from collector settings.
func New(cfg config.CollectorConfig) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(cfg.BaseURL)
	httpClient.SetTimeout(cfg.Timeout())
	httpClient.SetHeader("User-Agent", cfg.UserAgent)
	httpClient.SetHeader("Accept", "application/json")

	// burst of 1 keeps pages evenly spaced
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &Client{
		http:       httpClient,
		siteOrigin: cfg.SiteOrigin,
		pageSize:   cfg.PageSize,
	}
}

type submission struct {
	ID         *string  `json:"id"`
	CreatedUTC *float64 `json:"created_utc"`
	Author     *string  `json:"author"`
	Title      *string  `json:"title"`
	Permalink  *string  `json:"permalink"`
}

type searchResponse struct {
	Data []submission `json:"data"`
}

// Collect returns every submission created in the target year, newest first.
// It blocks until the archive runs out of results for the window.
func (c *Client) Collect(ctx context.Context, target config.Target) (record.RowSet, error) {
	start, end := target.Window()
	after := start.Unix() - 1

	log := slog.With("forum", target.Forum, "year", target.Year)
	log.Info("collecting submissions")

	// The archive only pages by creation second, so the cursor is inclusive of
	// edge and submissions already taken at edge are skipped by key.
	edge := end.Unix()
	seen := map[string]struct{}{}
	size := c.pageSize

	var rs record.RowSet
	pages := 0
	for {
		page, err := c.fetchPage(ctx, target.Forum, after, edge+1, size)
		if err != nil {
			return record.RowSet{}, err
		}
		pages++
		if len(page) == 0 {
			break
		}

		added, repeated := 0, 0
		oldest := edge
		prev := seen
		for _, item := range page {
			if item.CreatedUTC == nil {
				log.Warn("skipping submission without created_utc", "page", pages)
				continue
			}
			created := int64(math.Floor(*item.CreatedUTC))
			if created > edge || created <= after {
				log.Debug("skipping submission outside the window", "created_utc", created)
				continue
			}
			key := submissionKey(created, item)
			if created == edge {
				if _, dup := prev[key]; dup {
					repeated++
					continue
				}
			}
			if created < oldest {
				oldest = created
				seen = map[string]struct{}{}
			}
			if created == oldest {
				seen[key] = struct{}{}
			}
			rs.Append(c.normalize(created, item))
			added++
		}

		log.Debug("fetched page", "page", pages, "items", len(page), "added", added, "total", rs.Len())

		if added > 0 {
			edge = oldest
			size = c.pageSize
			continue
		}
		// A short page holds everything left in the window.
		if len(page) < size || repeated < len(page) {
			break
		}
		if size < maxPageSize {
			size = min(size*2, maxPageSize)
			continue
		}
		log.Warn("more submissions share one second than a page holds", "created_utc", edge, "collected", len(seen))
		edge--
		seen = map[string]struct{}{}
		size = c.pageSize
	}

	log.Info("collection finished", "pages", pages, "records", rs.Len())
	return rs, nil
}

// CollectToFile collects the target year and writes it to the row-set file
// in dir, replacing any previous file for the same target.
func (c *Client) CollectToFile(ctx context.Context, target config.Target, dir string) (string, record.RowSet, error) {
	rs, err := c.Collect(ctx, target)
	if err != nil {
		return "", record.RowSet{}, err
	}

	path := record.Path(dir, target.Forum, target.Year)
	if err := record.WriteFile(path, rs); err != nil {
		return "", record.RowSet{}, err
	}
	slog.Info("wrote row set", "path", path, "records", rs.Len())
	return path, rs, nil
}

func (c *Client) fetchPage(ctx context.Context, forum string, after, before int64, size int) ([]submission, error) {
	var result searchResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"subreddit": forum,
			"after":     strconv.FormatInt(after, 10),
			"before":    strconv.FormatInt(before, 10),
			"size":      strconv.Itoa(size),
			"sort":      "desc",
			"sort_type": "created_utc",
			"fields":    requestedFields,
		}).
		SetResult(&result).
		Get(SearchPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamQuery, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s returned %s", ErrUpstreamQuery, SearchPath, res.Status())
	}
	return result.Data, nil
}

func (c *Client) normalize(created int64, item submission) record.Record {
	r := record.Record{
		Timestamp: time.Unix(created, 0).UTC(),
		Author:    deref(item.Author),
		Title:     deref(item.Title),
		Permalink: deref(item.Permalink),
	}
	if r.Permalink != "" {
		r.Permalink = c.siteOrigin + r.Permalink
	}
	return r
}

// submissionKey identifies a submission within its creation second. Items
// without an id fall back to their content.
func submissionKey(created int64, item submission) string {
	if id := deref(item.ID); id != "" {
		return id
	}
	return strconv.FormatInt(created, 10) + "\x00" + deref(item.Author) + "\x00" + deref(item.Title) + "\x00" + deref(item.Permalink)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
