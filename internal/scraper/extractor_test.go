package scraper_test

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/scraper"
	"github.com/stretchr/testify/require"
)

const testArticleURL = "https://www.prothomalo.com/politics/example-story"

// fullArticleHTML carries every node the extractor looks for.
const fullArticleHTML = `<!DOCTYPE html>
<html>
<body>
  <h1 class="IiRps">সংসদে নতুন বিল পাস</h1>
  <span class="contributor-name _8TSJC">নিজস্ব প্রতিবেদক</span>
  <span class="author-location _8-umj">Location: ঢাকা</span>
  <div class="time-social-share-wrapper">
    <span>প্রকাশ: ১৫ মার্চ ২০২৪, ১০:৩০</span>
    <span>share buttons</span>
  </div>
  <div class="story-content">
    <p>প্রথম অনুচ্ছেদ এখানে।</p>
    <p>  দ্বিতীয় অনুচ্ছেদ এখানে।  </p>
    <p></p>
  </div>
</body>
</html>`

// bareHTML has none of the target nodes.
const bareHTML = `<!DOCTYPE html>
<html><body><div>unrelated markup</div></body></html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtract_FullDocument(t *testing.T) {
	doc := parseDoc(t, fullArticleHTML)

	article := scraper.Extract(doc, testArticleURL, domain.CategoryPolitics)

	require.Equal(t, testArticleURL, article.URL)
	require.Equal(t, "সংসদে নতুন বিল পাস", article.Headline)
	require.Equal(t, "নিজস্ব প্রতিবেদক", article.Author)
	require.Equal(t, "ঢাকা", article.Location)
	require.Equal(t, "2024-03-15 10:30", article.PublishedAt)
	require.Equal(t, "প্রথম অনুচ্ছেদ এখানে।\nদ্বিতীয় অনুচ্ছেদ এখানে।", article.Content)
	require.Equal(t, domain.CountWords(article.Content), article.WordCount)
	require.Equal(t, "politics", article.Category)
	require.WithinDuration(t, time.Now().UTC(), article.ScrapedAt, time.Minute)
}

func TestExtract_MissingNodesFallBackToSentinels(t *testing.T) {
	doc := parseDoc(t, bareHTML)

	article := scraper.Extract(doc, testArticleURL, domain.CategoryWorld)

	require.Equal(t, testArticleURL, article.URL)
	require.Equal(t, domain.HeadlineNotFound, article.Headline)
	require.Equal(t, domain.AuthorNotFound, article.Author)
	require.Equal(t, domain.LocationNotFound, article.Location)
	require.Empty(t, article.PublishedAt)
	require.Empty(t, article.Content)
	require.Zero(t, article.WordCount)
	require.False(t, article.ScrapedAt.IsZero())
}

func TestExtract_WordCountMatchesTokenCount(t *testing.T) {
	html := `<html><body><div class="story-content">
	  <p>one two three</p>
	  <p>four five</p>
	</div></body></html>`
	doc := parseDoc(t, html)

	article := scraper.Extract(doc, testArticleURL, domain.CategoryBusiness)

	require.Equal(t, "one two three\nfour five", article.Content)
	require.Equal(t, 5, article.WordCount)
}

func TestExtract_UnparseableDateLeavesPublishedAtAbsent(t *testing.T) {
	html := `<html><body>
	  <div class="time-social-share-wrapper"><span>প্রকাশ: yesterday afternoon</span></div>
	</body></html>`
	doc := parseDoc(t, html)

	article := scraper.Extract(doc, testArticleURL, domain.CategoryPolitics)

	require.Empty(t, article.PublishedAt)
}
