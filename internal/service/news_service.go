package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/smartcity/calo/internal/domain"
	"github.com/smartcity/calo/pkg/utils"
)

const maxHeadlines = 3

var (
	newsKeywords = []string{
		"protest", "rain", "flood", "health", "hospital",
		"corporation", "sanitation", "dengue", "traffic",
	}
	negativeWords = []string{
		"protest", "flood", "crisis", "death", "accident",
		"pollution", "dengue", "disease", "corruption",
	}
	positiveWords = []string{
		"inaugurate", "improve", "success", "award", "growth",
		"development", "clean", "green",
	}
)

// NewsService reads city-relevant headlines from an RSS feed
type NewsService struct {
	feedURL string
	useReal bool
	parser  *gofeed.Parser
}

// NewNewsService creates a new news service
func NewNewsService(feedURL string, useReal bool, timeout time.Duration) *NewsService {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &NewsService{feedURL: feedURL, useReal: useReal, parser: parser}
}

// GetHeadlines returns up to three keyword-relevant headlines with sentiment
func (s *NewsService) GetHeadlines(ctx context.Context) ([]domain.Headline, error) {
	if !s.useReal {
		return MockHeadlines(), nil
	}

	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("news: failed to parse feed: %w", err)
	}

	headlines := make([]domain.Headline, 0, maxHeadlines)
	for _, item := range feed.Items {
		if len(headlines) == maxHeadlines {
			break
		}
		if !containsAny(strings.ToLower(item.Title), newsKeywords) {
			continue
		}
		headlines = append(headlines, domain.Headline{
			Title:     item.Title,
			Sentiment: utils.RoundTo(HeadlineSentiment(item.Title), 2),
			Published: item.Published,
		})
	}
	return headlines, nil
}

// MockHeadlines are served when live news is off or the feed fails
func MockHeadlines() []domain.Headline {
	return []domain.Headline{
		{Title: "Heavy rainfall expected in Udaipur", Sentiment: -0.3},
		{Title: "New hospital inaugurated in Rajasthan", Sentiment: 0.5},
		{Title: "Traffic congestion worsens", Sentiment: -0.4},
	}
}

// HeadlineSentiment scores text in [-1, 1] by counting positive and
// negative keywords.
func HeadlineSentiment(text string) float64 {
	text = strings.ToLower(text)
	var pos, neg int
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
