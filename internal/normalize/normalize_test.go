package normalize_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DalintonC/lomigg-news/internal/model"
	"github.com/DalintonC/lomigg-news/internal/normalize"
)

func TestIdentity(t *testing.T) {
	link := "https://www.leagueoflegends.com/news/patch-14-1"

	require.Equal(t, normalize.Identity(link), normalize.Identity(link))
	require.Len(t, normalize.Identity(link), 32)
	require.NotEqual(t, normalize.Identity(link), normalize.Identity(link+"/"))
	// md5("") is fixed across processes.
	require.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", normalize.Identity(""))
}

func TestPrimaryImage(t *testing.T) {
	tests := []struct {
		name string
		item model.Item
		want string
	}{
		{
			name: "enclosure wins",
			item: model.Item{
				Enclosure:      "http://x/enclosure.jpg",
				MediaURL:       "http://x/media.jpg",
				EncodedContent: `<img src="http://x/encoded.jpg">`,
			},
			want: "http://x/enclosure.jpg",
		},
		{
			name: "media content",
			item: model.Item{MediaURL: "http://x/media.jpg", Description: `<img src="http://x/desc.jpg">`},
			want: "http://x/media.jpg",
		},
		{
			name: "encoded before description",
			item: model.Item{
				EncodedContent: `<p>text</p><img class="a" src="http://x/encoded.jpg" />`,
				Description:    `<img src="http://x/desc.jpg">`,
			},
			want: "http://x/encoded.jpg",
		},
		{
			name: "description before content",
			item: model.Item{Description: `<img src="http://x/desc.jpg">`, Content: `<img src="http://x/content.jpg">`},
			want: "http://x/desc.jpg",
		},
		{
			name: "plain content",
			item: model.Item{Content: `<img alt="" src="http://x/content.jpg">`},
			want: "http://x/content.jpg",
		},
		{
			name: "nothing",
			item: model.Item{Description: "no pictures here"},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, normalize.PrimaryImage(tc.item))
		})
	}
}

func TestGalleryImages(t *testing.T) {
	html := `<img src="http://x/banner.png"><img src="http://x/photo1.jpg">` +
		`<img src="notahttpurl/x.jpg"><img src="http://x/photo2.jpg">`

	require.Equal(t, []string{"http://x/photo1.jpg", "http://x/photo2.jpg"}, normalize.GalleryImages(html, 3))
}

func TestGalleryImagesLimitAndDuplicates(t *testing.T) {
	html := `<img src="https://cdn/a.jpg"><img src="https://cdn/a.jpg"><img src="https://cdn/user-avatar.jpg">` +
		`<img src="https://cdn/b.jpg"><img src="https://cdn/c.jpg">`

	require.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/a.jpg", "https://cdn/b.jpg"}, normalize.GalleryImages(html, 3))
	require.Empty(t, normalize.GalleryImages(html, 0))
	require.Empty(t, normalize.GalleryImages("", 3))
}

func TestGalleryImagesCaseSensitive(t *testing.T) {
	html := `<img src="http://x/LOGO.png"><img src="http://x/site-logo.png">`

	require.Equal(t, []string{"http://x/LOGO.png"}, normalize.GalleryImages(html, 3))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"tags and whitespace", "<p>Hello</p>\n\n<b>world</b>  ", "Hello world"},
		{"entities", "Tom &amp; Jerry&nbsp;&lt;3 &quot;quoted&quot; it&#39;s &gt;", `Tom & Jerry <3 "quoted" it's >`},
		{"nested entity", "&amp;lt;", "<"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, normalize.CleanText(tc.in))
		})
	}
}

func TestCleanTextTruncates(t *testing.T) {
	long := strings.Repeat("a", 310)
	got := normalize.CleanText(long)

	require.Len(t, got, 300)
	require.True(t, strings.HasSuffix(got, "..."))
	require.Equal(t, strings.Repeat("a", 297), strings.TrimSuffix(got, "..."))

	exact := strings.Repeat("b", 300)
	require.Equal(t, exact, normalize.CleanText(exact))

	accents := strings.Repeat("é", 301)
	require.Equal(t, strings.Repeat("é", 297)+"...", normalize.CleanText(accents))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Patch 14.1 Notes", "patch-14-1-notes"},
		{"¡Campeón Nuevo: Aurora!", "campeon-nuevo-aurora"},
		{"  --Worlds 2024-- ", "worlds-2024"},
		{"Ñandú & Pingüino", "nandu-pinguino"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, normalize.Slug(tc.in))
		})
	}
}

func TestNormalizerArticle(t *testing.T) {
	published := time.Date(2024, 5, 3, 15, 4, 5, 0, time.FixedZone("CEST", 2*3600))
	src := model.Source{ID: "dot-esports", Name: "Dot Esports - LoL", Category: "esports", Priority: 1}
	item := model.Item{
		Title:          "Faker wins MSI",
		Link:           "https://dotesports.com/lol/faker",
		EncodedContent: `<p>Big <b>day</b></p><img src="https://cdn/1.jpg"><img src="https://cdn/2.jpg">`,
		Description:    "<p>Short &amp; sweet</p>",
		Published:      &published,
	}
	now := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)

	a := normalize.New(0).Article(src, item, now)

	require.Equal(t, normalize.Identity(item.Link), a.ID)
	require.Equal(t, "Faker wins MSI", a.Title)
	require.Equal(t, a.Title, a.TitleOriginal)
	require.Equal(t, "faker-wins-msi", a.Slug)
	require.Equal(t, "Short & sweet", a.Description)
	require.Equal(t, a.Description, a.DescriptionOriginal)
	require.Nil(t, a.SummaryLong)
	require.Equal(t, item.EncodedContent, a.ContentRaw)
	require.NotNil(t, a.Image)
	require.Equal(t, "https://cdn/1.jpg", *a.Image)
	require.Equal(t, []string{"https://cdn/1.jpg", "https://cdn/2.jpg"}, a.ImageGallery)
	require.NotNil(t, a.PublishTime)
	require.True(t, published.Equal(*a.PublishTime))
	require.Equal(t, time.UTC, a.PublishTime.Location())
	require.Equal(t, "esports", a.Category)
	require.Equal(t, "Dot Esports - LoL", a.SourceName)
	require.Equal(t, "dot-esports", a.SourceID)
	require.Equal(t, 1, a.Priority)
	require.Equal(t, now, a.IngestedAt)
}

func TestNormalizerArticleWithoutOptionalFields(t *testing.T) {
	a := normalize.New(3).Article(model.Source{ID: "s"}, model.Item{Title: "T", Link: "https://x/t"}, time.Now())

	require.Nil(t, a.Image)
	require.Nil(t, a.PublishTime)
	require.Empty(t, a.ImageGallery)
	require.Empty(t, a.Description)
}
