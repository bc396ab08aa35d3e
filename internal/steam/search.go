package steam

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"reviewdigest/internal/domain"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"mvdan.cc/xurls/v2"
)

const (
	searchResultSelector      = "a.search_result_row"
	searchResultTitleSelector = ".title"
	minPartsForAppIDMatch     = 2
)

var appPathRe = regexp.MustCompile(`/app/(\d+)(?:/|$)`)

// Resolve maps a game name, or a message containing a store link, to a Steam
// application. The second result is false when nothing matches.
func (c *Client) Resolve(ctx context.Context, name string) (domain.App, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.App{}, false, nil
	}

	if appID, ok, err := appIDFromStoreLink(name); err != nil {
		return domain.App{}, false, fmt.Errorf("find store link: %w", err)
	} else if ok {
		c.log.DebugContext(ctx, "Store link is found in query",
			"appID", appID,
			"query", name)

		return domain.App{ID: appID, Title: appID, URL: c.AppURL(appID)}, true, nil
	}

	var app domain.App
	var found bool

	err := c.get(
		ctx,
		"Resolve",
		c.endpoint("search/"),
		url.Values{"term": {name}},
		func(body io.Reader) error {
			var parseErr error
			app, found, parseErr = parseSearchResults(body)
			return parseErr
		},
	)
	if err != nil {
		return domain.App{}, false, fmt.Errorf("search (term = %s): %w", name, err)
	}

	if !found {
		c.log.InfoContext(ctx, "Game is not found",
			"query", name)

		return domain.App{}, false, nil
	}

	if app.Title == "" {
		app.Title = name
	}
	app.URL = c.AppURL(app.ID)

	return app, true, nil
}

func parseSearchResults(body io.Reader) (domain.App, bool, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return domain.App{}, false, fmt.Errorf("create document from reader: %w", err)
	}

	var app domain.App
	var found bool

	doc.Find(searchResultSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		appID := appIDFromPath(s.AttrOr("href", ""))
		if appID == "" {
			return true
		}

		app = domain.App{
			ID:    appID,
			Title: strings.TrimSpace(s.Find(searchResultTitleSelector).First().Text()),
		}
		found = true

		return false
	})

	return app, found, nil
}

func appIDFromStoreLink(text string) (string, bool, error) {
	httpsURLRe, err := xurls.StrictMatchingScheme("https?://")
	if err != nil {
		return "", false, fmt.Errorf("create regexp: %w", err)
	}

	for _, raw := range httpsURLRe.FindAllString(text, -1) {
		u, parseErr := url.Parse(strings.TrimSpace(raw))
		if parseErr != nil || !isStoreHost(u.Host) {
			continue
		}

		if appID := appIDFromPath(u.Path); appID != "" {
			return appID, true, nil
		}
	}

	return "", false, nil
}

func appIDFromPath(path string) string {
	m := appPathRe.FindStringSubmatch(path)
	if len(m) < minPartsForAppIDMatch {
		return ""
	}

	return m[1]
}

func isStoreHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))

	return host == "store.steampowered.com" || host == "steamcommunity.com"
}
