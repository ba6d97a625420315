package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOpenGraph(t *testing.T) {
	html := `<html><head>
		<meta property="og:title" content="Karaoke with Kelly" />
		<meta property="og:description" content="Thursdays 9pm-1am at The Venue" />
		<meta property="og:image" content="https://cdn.example.com/flyer.jpg" />
		<meta property="og:url" content="https://facebook.com/karaokewithkelly" />
	</head><body></body></html>`

	og, err := ExtractOpenGraph(html)
	require.NoError(t, err)
	assert.Equal(t, "Karaoke with Kelly", og.Title)
	assert.Equal(t, "Thursdays 9pm-1am at The Venue", og.Description)
	assert.Equal(t, "https://cdn.example.com/flyer.jpg", og.Image)
	assert.False(t, og.Empty())
	assert.Contains(t, og.Text(), "Thursdays 9pm-1am")
}

func TestExtractOpenGraphEmpty(t *testing.T) {
	og, err := ExtractOpenGraph(`<html><head></head><body></body></html>`)
	require.NoError(t, err)
	assert.True(t, og.Empty())
}

func TestExtractPhotoLinks(t *testing.T) {
	html := `<html><body>
		<a href="/photo/?fbid=111">one</a>
		<a href="/photo/?fbid=222">two</a>
		<a href="/photo/?fbid=111">duplicate</a>
		<a href="https://www.facebook.com/photo.php?fbid=333#comments">three</a>
		<a href="/about">not a photo</a>
	</body></html>`

	links, err := ExtractPhotoLinks(html, "https://www.facebook.com/somevenue", SurfaceFacebook)
	require.NoError(t, err)
	require.Len(t, links, 3)
	// First-seen order preserved, fragment stripped.
	assert.Equal(t, "https://www.facebook.com/photo/?fbid=111", links[0])
	assert.Equal(t, "https://www.facebook.com/photo/?fbid=222", links[1])
	assert.Equal(t, "https://www.facebook.com/photo.php?fbid=333", links[2])
}

func TestExtractPhotoLinksInvalidBase(t *testing.T) {
	_, err := ExtractPhotoLinks("<html></html>", "not a url", SurfaceFacebook)
	assert.Error(t, err)
}
