package normalize

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/DalintonC/lomigg-news/internal/model"
)

const (
	DefaultGallerySize = 3
	descriptionLimit   = 300
)

var (
	imgSrc       = regexp.MustCompile(`<img[^>]+src="([^">]+)"`)
	htmlTag      = regexp.MustCompile(`<[^>]*>`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

	// Applied in order, so "&amp;lt;" decodes all the way to "<".
	entities = [][2]string{
		{"&nbsp;", " "},
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", `"`},
		{"&#39;", "'"},
	}

	galleryStopWords = []string{"icon", "banner", "logo", "avatar"}
)

// Identity derives the article id from its canonical link.
func Identity(link string) string {
	sum := md5.Sum([]byte(link))
	return hex.EncodeToString(sum[:])
}

// PrimaryImage picks the lead image of an item, or "" when there is none.
func PrimaryImage(item model.Item) string {
	if item.Enclosure != "" {
		return item.Enclosure
	}
	if item.MediaURL != "" {
		return item.MediaURL
	}

	for _, html := range []string{item.EncodedContent, item.Description, item.Content} {
		if src := firstImage(html); src != "" {
			return src
		}
	}

	return ""
}

func firstImage(html string) string {
	m := imgSrc.FindStringSubmatch(html)
	if m == nil {
		return ""
	}

	return m[1]
}

// GalleryImages returns up to limit absolute image URLs in document order,
// skipping decorative ones.
func GalleryImages(html string, limit int) []string {
	if limit < 0 {
		limit = 0
	}

	images := make([]string, 0, limit)
	if html == "" || limit == 0 {
		return images
	}

	for _, m := range imgSrc.FindAllStringSubmatch(html, -1) {
		if len(images) >= limit {
			break
		}

		src := m[1]
		if !strings.HasPrefix(src, "http") {
			continue
		}
		if lo.SomeBy(galleryStopWords, func(w string) bool { return strings.Contains(src, w) }) {
			continue
		}

		images = append(images, src)
	}

	return images
}

// CleanText turns an HTML fragment into a single line of plain text capped at 300 characters.
func CleanText(html string) string {
	if html == "" {
		return ""
	}

	text := htmlTag.ReplaceAllString(html, " ")
	for _, e := range entities {
		text = strings.ReplaceAll(text, e[0], e[1])
	}
	text = strings.Join(strings.Fields(text), " ")

	if utf8.RuneCountInString(text) > descriptionLimit {
		text = string([]rune(text)[:descriptionLimit-3]) + "..."
	}

	return text
}

// Slug builds a lowercase, accent-free, hyphen separated form of title.
func Slug(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	s, _, err := transform.String(t, strings.ToLower(title))
	if err != nil {
		s = strings.ToLower(title)
	}

	return strings.Trim(nonSlugChars.ReplaceAllString(s, "-"), "-")
}

type Normalizer struct {
	gallerySize int
}

func New(gallerySize int) *Normalizer {
	if gallerySize <= 0 {
		gallerySize = DefaultGallerySize
	}

	return &Normalizer{gallerySize: gallerySize}
}

// Article maps a raw item of src into the canonical shape with source-language display fields.
func (n *Normalizer) Article(src model.Source, item model.Item, now time.Time) model.Article {
	body := firstNonEmpty(item.EncodedContent, item.Content, item.Description)
	description := CleanText(firstNonEmpty(item.Description, item.EncodedContent, item.Content))

	article := model.Article{
		ID:                  Identity(item.Link),
		Title:               item.Title,
		TitleOriginal:       item.Title,
		Slug:                Slug(item.Title),
		Description:         description,
		DescriptionOriginal: description,
		ContentRaw:          body,
		Link:                item.Link,
		ImageGallery:        GalleryImages(body, n.gallerySize),
		Category:            src.Category,
		SourceName:          src.Name,
		SourceID:            src.ID,
		Priority:            src.Priority,
		IngestedAt:          now.UTC(),
	}

	if image := PrimaryImage(item); image != "" {
		article.Image = &image
	}
	if item.Published != nil {
		published := item.Published.UTC()
		article.PublishTime = &published
	}

	return article
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
