package favicon

import (
	"encoding/json"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const expectedManifest = `{
  "name": "Nethra Vigil",
  "short_name": "Nethra",
  "icons": [
    {
      "src": "/android-chrome-192x192.png",
      "sizes": "192x192",
      "type": "image/png"
    },
    {
      "src": "/android-chrome-512x512.png",
      "sizes": "512x512",
      "type": "image/png"
    }
  ],
  "theme_color": "#1E40AF",
  "background_color": "#ffffff",
  "display": "standalone"
}`

const expectedBrowserConfig = `<?xml version="1.0" encoding="utf-8"?>
<browserconfig>
  <msapplication>
    <tile>
      <square150x150logo src="/mstile-150x150.png"/>
      <TileColor>#1E40AF</TileColor>
    </tile>
  </msapplication>
</browserconfig>`

func TestRenderManifest_Default(t *testing.T) {
	out, err := RenderManifest(DefaultOptions().Manifest)
	require.NoError(t, err)
	assert.Equal(t, expectedManifest, string(out))
}

func TestRenderManifest_DoesNotEscapeHTML(t *testing.T) {
	opts := DefaultOptions().Manifest
	opts.Name = "Tom & Jerry <Live>"

	out, err := RenderManifest(opts)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"name": "Tom & Jerry <Live>"`)

	var decoded Manifest
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, opts.Name, decoded.Name)
	assert.Len(t, decoded.Icons, 2)
}

func TestRenderBrowserConfig(t *testing.T) {
	out, err := RenderBrowserConfig("#1E40AF")
	require.NoError(t, err)
	assert.Equal(t, expectedBrowserConfig, string(out))

	var doc struct {
		Tile struct {
			Logo struct {
				Src string `xml:"src,attr"`
			} `xml:"square150x150logo"`
			Color string `xml:"TileColor"`
		} `xml:"msapplication>tile"`
	}
	require.NoError(t, xml.Unmarshal(out, &doc))
	assert.Equal(t, "/mstile-150x150.png", doc.Tile.Logo.Src)
	assert.Equal(t, "#1E40AF", doc.Tile.Color)
}

func TestRasterName(t *testing.T) {
	assert.Equal(t, "favicon-16.png", RasterName(16))
	assert.Equal(t, "favicon-512.png", RasterName(512))
}
