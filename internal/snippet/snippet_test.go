package snippet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Options{ThemeColor: "#1E40AF"}))

	expected := `<link rel="icon" href="/favicon.ico" sizes="any"/>
<link rel="apple-touch-icon" href="/apple-touch-icon.png"/>
<link rel="manifest" href="/site.webmanifest"/>
<meta name="msapplication-config" content="/browserconfig.xml"/>
<meta name="theme-color" content="#1E40AF"/>
`
	assert.Equal(t, expected, buf.String())
}

func TestTags_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		expected string
	}{
		{"default root", "", `<link rel="icon" href="/favicon.ico" sizes="any"/>`},
		{"sub path", "/static/icons", `<link rel="icon" href="/static/icons/favicon.ico" sizes="any"/>`},
		{"trailing slash", "/assets/", `<link rel="icon" href="/assets/favicon.ico" sizes="any"/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := Tags(Options{BaseURL: tt.base})
			assert.Equal(t, tt.expected, tags[0].String())
		})
	}
}

func TestTags_NoThemeColor(t *testing.T) {
	assert.Len(t, Tags(Options{}), 4)
	assert.Len(t, Tags(Options{ThemeColor: "#fff"}), 5)
}

func TestTag_EscapesAttributes(t *testing.T) {
	tags := Tags(Options{ThemeColor: `"><script>`})
	assert.Equal(t, `<meta name="theme-color" content="&#34;&gt;&lt;script&gt;"/>`, tags[4].String())
}

func TestMissing(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head>
  <title>Nethra</title>
  <link rel="icon" href="/favicon.ico">
  <link rel="Manifest" href="/site.webmanifest">
  <meta name="theme-color" content="#000000">
</head>
<body></body>
</html>`

	missing, err := Missing(strings.NewReader(page), Options{ThemeColor: "#1E40AF"})
	require.NoError(t, err)

	var got []string
	for _, tag := range missing {
		got = append(got, tag.key())
	}
	assert.Equal(t, []string{"link:apple-touch-icon", "meta:msapplication-config"}, got)
}

func TestMissing_CompletePage(t *testing.T) {
	var head bytes.Buffer
	require.NoError(t, Render(&head, Options{ThemeColor: "#1E40AF"}))

	page := "<html><head>" + head.String() + "</head><body></body></html>"
	missing, err := Missing(strings.NewReader(page), Options{ThemeColor: "#1E40AF"})
	require.NoError(t, err)
	assert.Empty(t, missing)
}
