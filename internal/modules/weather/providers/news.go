package providers

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
)

const (
	maxNewsItems       = 6
	maxDescriptionRune = 120
)

type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

type News struct {
	FeedTitle string     `json:"feedTitle"`
	Items     []NewsItem `json:"items"`
}

// FeedURL picks the RSS feed for a country code.
func FeedURL(countryCode string) string {
	switch strings.ToUpper(countryCode) {
	case "RS":
		return "https://www.rts.rs/page/stories/sr/rss.html"
	case "DE":
		return "https://www.tagesschau.de/infoservices/alle-meldungen-100~rss2.xml"
	default:
		return "http://feeds.bbci.co.uk/news/world/rss.xml"
	}
}

var tagPattern = regexp.MustCompile(`<[^>]*>?`)

// summarize strips markup from a feed description and cuts it to a teaser.
func summarize(description string) string {
	text := strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(description, "")))
	if r := []rune(text); len(r) > maxDescriptionRune {
		text = string(r[:maxDescriptionRune])
	}
	return text + "..."
}

func trimItems(items []NewsItem) []NewsItem {
	if len(items) > maxNewsItems {
		items = items[:maxNewsItems]
	}
	for i := range items {
		items[i].Description = summarize(items[i].Description)
	}
	return items
}

// ProxyNews fetches feeds through the rss2json proxy.
type ProxyNews struct {
	client   *resty.Client
	proxyURL string
	feedURL  func(countryCode string) string
}

func NewProxyNews(client *resty.Client, proxyURL string) *ProxyNews {
	return &ProxyNews{client: client, proxyURL: proxyURL, feedURL: FeedURL}
}

type rss2jsonResponse struct {
	Status string `json:"status"`
	Feed   struct {
		Title string `json:"title"`
	} `json:"feed"`
	Items []NewsItem `json:"items"`
}

func (p *ProxyNews) Headlines(ctx context.Context, countryCode string) (News, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("rss_url", p.feedURL(countryCode)).
		Get(p.proxyURL)
	if err != nil {
		return News{}, fmt.Errorf("%w: news proxy: %v", ErrUpstream, err)
	}
	var out rss2jsonResponse
	if err := decode(resp, &out); err != nil {
		return News{}, err
	}
	if out.Status != "ok" {
		return News{}, fmt.Errorf("%w: %q", ErrNewsStatus, out.Status)
	}
	return News{FeedTitle: out.Feed.Title, Items: trimItems(out.Items)}, nil
}

// DirectNews downloads the feed itself and parses it with gofeed.
type DirectNews struct {
	client  *resty.Client
	parser  *gofeed.Parser
	feedURL func(countryCode string) string
}

func NewDirectNews(client *resty.Client) *DirectNews {
	return &DirectNews{client: client, parser: gofeed.NewParser(), feedURL: FeedURL}
}

func (d *DirectNews) Headlines(ctx context.Context, countryCode string) (News, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rss+xml, application/xml, text/xml").
		Get(d.feedURL(countryCode))
	if err != nil {
		return News{}, fmt.Errorf("%w: news feed: %v", ErrUpstream, err)
	}
	if !resp.IsSuccess() {
		return News{}, fmt.Errorf("%w: %s", ErrNewsStatus, resp.Status())
	}
	feed, err := d.parser.Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return News{}, fmt.Errorf("%w: parse feed: %v", ErrNewsStatus, err)
	}
	items := make([]NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		items = append(items, NewsItem{Title: it.Title, Description: it.Description, Link: it.Link})
	}
	return News{FeedTitle: feed.Title, Items: trimItems(items)}, nil
}
