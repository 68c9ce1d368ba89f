package fetch

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsLens/internal/domain"
)

const excerptRuneLimit = 280

// Normalizer converts raw feed items into canonical article drafts.
type Normalizer struct{}

// NewNormalizer builds the stateless normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize assigns a deterministic identity and taxonomy to one raw
// item. Re-fetching the same item always yields the same id, making
// ingestion idempotent. An unparseable published timestamp is a
// ParseError: the item is dropped, never given a fabricated date.
func (n *Normalizer) Normalize(src domain.Source, item domain.RawItem, now time.Time) (domain.Article, error) {
	guid := item.GUID
	if guid == "" {
		guid = item.Link
	}

	if item.Published.IsZero() {
		return domain.Article{}, &domain.ParseError{
			SourceID: src.ID,
			GUID:     guid,
			Field:    "publishedAt",
			Err:      errors.New("missing or unparseable timestamp"),
		}
	}
	if strings.TrimSpace(item.Title) == "" {
		return domain.Article{}, &domain.ParseError{
			SourceID: src.ID,
			GUID:     guid,
			Field:    "title",
			Err:      errors.New("empty title"),
		}
	}

	category := src.Category
	for _, c := range item.Categories {
		if mapped, ok := domain.ParseCategory(strings.ToLower(strings.TrimSpace(c))); ok {
			category = mapped
			break
		}
	}

	tags := make([]string, 0, len(item.Categories))
	for _, c := range item.Categories {
		if t := strings.ToLower(strings.TrimSpace(c)); t != "" {
			tags = append(tags, t)
		}
	}

	return domain.Article{
		ID:           articleID(src.ID, guid),
		SourceID:     src.ID,
		SourceName:   src.Name,
		CanonicalURL: item.Link,
		ImageURL:     extractImageURL(item),
		Title:        strings.TrimSpace(item.Title),
		Excerpt:      excerpt(item),
		Tags:         tags,
		Category:     category,
		Status:       domain.StatusPublished,
		PublishedAt:  item.Published,
		ImportedAt:   now,
	}, nil
}

// articleID derives the stable identity from source id and item guid.
func articleID(sourceID, guid string) string {
	h := sha1.New()
	h.Write([]byte(sourceID + "|" + guid))
	return hex.EncodeToString(h.Sum(nil))
}

// extractImageURL returns the feed-declared image when present,
// otherwise the first <img> found in the item HTML. Best effort: empty
// string when nothing is found, never an error.
func extractImageURL(item domain.RawItem) string {
	if item.ImageURL != "" {
		return item.ImageURL
	}

	for _, html := range []string{item.Content, item.Description} {
		if html == "" {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}
		if src, ok := doc.Find("img").First().Attr("src"); ok && src != "" {
			return src
		}
	}
	return ""
}

// excerpt strips markup from the description and truncates by rune
// count so multi-byte text never splits mid-character.
func excerpt(item domain.RawItem) string {
	text := item.Description
	if text == "" {
		text = item.Content
	}
	if text == "" {
		return ""
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > excerptRuneLimit {
		return string(runes[:excerptRuneLimit]) + "…"
	}
	return text
}
