package steam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reviewdigest/internal/domain"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	reviewsPerPage = 100
	reviewLanguage = "english"
)

// FetchPage requests one page of an application's reviews at cursor. A body
// without reviews and without a cursor decodes to an empty page.
func (c *Client) FetchPage(ctx context.Context, appID string, cursor string) (domain.Page, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return domain.Page{}, errors.New("app ID is empty")
	}

	query := url.Values{
		"json":          {"1"},
		"cursor":        {cursor},
		"language":      {reviewLanguage},
		"review_type":   {"all"},
		"purchase_type": {"all"},
		"num_per_page":  {strconv.Itoa(reviewsPerPage)},
	}

	var page domain.Page

	err := c.get(
		ctx,
		"FetchPage",
		c.endpoint("appreviews/"+url.PathEscape(appID)),
		query,
		func(body io.Reader) error {
			raw, readErr := io.ReadAll(body)
			if readErr != nil {
				return fmt.Errorf("read body: %w", readErr)
			}

			page = decodePage(raw)
			return nil
		},
	)
	if err != nil {
		return domain.Page{}, fmt.Errorf("fetch reviews (appID = %s): %w", appID, err)
	}

	c.log.DebugContext(ctx, "Review page is fetched",
		"appID", appID,
		"cursor", cursor,
		"nextCursor", page.Cursor,
		"reviewCount", len(page.Reviews))

	return page, nil
}

func decodePage(raw []byte) domain.Page {
	if !gjson.ValidBytes(raw) {
		return domain.Page{}
	}

	var page domain.Page

	if cursor := gjson.GetBytes(raw, "cursor"); cursor.Exists() && cursor.Type == gjson.String {
		page.Cursor = cursor.String()
		page.HasCursor = true
	}

	reviews := gjson.GetBytes(raw, "reviews")
	if !reviews.IsArray() {
		return page
	}

	reviews.ForEach(func(_, value gjson.Result) bool {
		page.Reviews = append(page.Reviews, domain.Review{
			ID:        value.Get("recommendationid").String(),
			Text:      value.Get("review").String(),
			Language:  value.Get("language").String(),
			VotedUp:   value.Get("voted_up").Bool(),
			CreatedAt: value.Get("timestamp_created").Int(),
		})
		return true
	})

	return page
}
