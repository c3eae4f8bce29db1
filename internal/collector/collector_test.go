package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"sjsage522/taglikeworker/internal"
	"sjsage522/taglikeworker/internal/browser/browsertest"
	"sjsage522/taglikeworker/logger"
	apperrors "sjsage522/taglikeworker/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteURL = "https://www.instagram.com/"

func listingHTML(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><main>")
	for _, href := range hrefs {
		fmt.Fprintf(&b, `<div><a href="%s"><img src="x.jpg"></a></div>`, href)
	}
	b.WriteString(`<a href="/explore/">Explore</a></main></body></html>`)
	return b.String()
}

func TestExtractContentIDs(t *testing.T) {
	page := siteURL + "explore/tags/travel/"
	doc := listingHTML(
		"/p/ABC123/",
		"https://www.instagram.com/p/DEF456/?taken-by=someone",
		"/p/ABC123/",
		"/p/",           // missing id segment
		"/someuser/p/X", // id not at the fixed position
		"/accounts/login/?next=/p/GHI789/",
	)

	ids, err := ExtractContentIDs(doc, page)
	require.NoError(t, err)
	assert.Equal(t, []internal.ContentID{"ABC123", "DEF456"}, ids)
}

func TestExtractContentIDsEmptyPage(t *testing.T) {
	ids, err := ExtractContentIDs("<html><body>nothing here</body></html>", siteURL)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestContentIDFromLink(t *testing.T) {
	base, err := url.Parse(siteURL)
	require.NoError(t, err)

	id, ok := contentIDFromLink(base, "https://www.instagram.com/p/ABC123/")
	assert.True(t, ok)
	assert.Equal(t, internal.ContentID("ABC123"), id)

	_, ok = contentIDFromLink(base, "https://www.instagram.com/p")
	assert.False(t, ok)

	id, ok = contentIDFromLink(base, "/p/ABC123/#comments")
	assert.True(t, ok)
	assert.Equal(t, internal.ContentID("ABC123"), id)

	_, ok = contentIDFromLink(base, "%zz")
	assert.False(t, ok)

	// escaped ids come back decoded so callers can escape them once
	id, ok = contentIDFromLink(base, "/p/caf%C3%A9/")
	assert.True(t, ok)
	assert.Equal(t, internal.ContentID("café"), id)
}

// scrollingPage serves a listing that grows by one batch per scroll
func scrollingPage(batches [][]string) (*browsertest.FakeDriver, *int) {
	rendered := 0
	driver := &browsertest.FakeDriver{}
	driver.Eval = func(url, script string) (any, error) {
		if script != ListingScript {
			return nil, fmt.Errorf("unexpected script %q", script)
		}
		var hrefs []string
		for i := 0; i <= rendered && i < len(batches); i++ {
			hrefs = append(hrefs, batches[i]...)
		}
		return listingHTML(hrefs...), nil
	}
	return driver, &rendered
}

type scrollCountingDriver struct {
	*browsertest.FakeDriver
	rendered *int
}

func (d scrollCountingDriver) ScrollToBottom(ctx context.Context) error {
	*d.rendered++
	return d.FakeDriver.ScrollToBottom(ctx)
}

func TestCollect(t *testing.T) {
	fake, rendered := scrollingPage([][]string{
		{"/p/A/", "/p/B/"},
		{"/p/B/", "/p/C/"},
		{"/p/D/"},
	})
	driver := scrollCountingDriver{FakeDriver: fake, rendered: rendered}

	c := New(driver, siteURL, 1500*time.Millisecond, logger.Nop())
	ids, err := c.Collect(context.Background(), CollectRequest{Tag: "travel", ScrollCount: 3})
	require.NoError(t, err)

	assert.ElementsMatch(t, []internal.ContentID{"A", "B", "C", "D"}, ids)
	assert.Equal(t, []string{siteURL + "explore/tags/travel/"}, fake.Navigations)
	assert.Equal(t, 3, fake.Scrolls)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond, 1500 * time.Millisecond, 1500 * time.Millisecond}, fake.Sleeps)
	// one scrape before scrolling plus one per scroll
	assert.Len(t, fake.Scripts, 4)
}

func TestCollectIsIdempotentOnStaticPage(t *testing.T) {
	page := listingHTML("/p/A/", "/p/B/", "/p/A/")
	driver := &browsertest.FakeDriver{
		Eval: func(url, script string) (any, error) { return page, nil },
	}
	c := New(driver, siteURL, time.Second, logger.Nop())

	once, err := c.Collect(context.Background(), CollectRequest{Tag: "food", ScrollCount: 0})
	require.NoError(t, err)
	twice, err := c.Collect(context.Background(), CollectRequest{Tag: "food", ScrollCount: 1})
	require.NoError(t, err)

	assert.ElementsMatch(t, once, twice)
	assert.Len(t, once, 2)
}

func TestCollectNavigationFailure(t *testing.T) {
	driver := &browsertest.FakeDriver{
		NavigateErr: func(url string) error { return errors.New("net::ERR_NAME_NOT_RESOLVED") },
	}
	c := New(driver, siteURL, time.Second, logger.Nop())

	_, err := c.Collect(context.Background(), CollectRequest{Tag: "food", ScrollCount: 2})
	require.Error(t, err)
	assert.True(t, apperrors.IsNavigation(err))
	assert.Zero(t, driver.Scrolls)
}

func TestCollectEvaluationFailure(t *testing.T) {
	driver := &browsertest.FakeDriver{
		Eval: func(url, script string) (any, error) { return nil, errors.New("document is not defined") },
	}
	c := New(driver, siteURL, time.Second, logger.Nop())

	_, err := c.Collect(context.Background(), CollectRequest{Tag: "food", ScrollCount: 2})
	require.Error(t, err)
	assert.True(t, apperrors.IsEvaluation(err))
}

func TestListingURL(t *testing.T) {
	c := New(&browsertest.FakeDriver{}, siteURL, time.Second, logger.Nop())
	assert.Equal(t, "https://www.instagram.com/explore/tags/everydaylife/", c.ListingURL("everydaylife"))
	assert.Equal(t, "https://www.instagram.com/explore/tags/a%2Fb/", c.ListingURL("a/b"))
}

func TestCollectedIDsRoundTripToItemURL(t *testing.T) {
	fake, _ := scrollingPage([][]string{{"/p/caf%C3%A9/"}})
	c := New(fake, siteURL, time.Millisecond, logger.Nop())

	ids, err := c.Collect(context.Background(), CollectRequest{Tag: "travel"})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, siteURL+"p/caf%C3%A9/", siteURL+"p/"+url.PathEscape(string(ids[0]))+"/")
}
