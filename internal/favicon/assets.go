package favicon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"
)

// Final artifact file names.
const (
	FaviconICO        = "favicon.ico"
	AppleTouchIcon    = "apple-touch-icon.png"
	AndroidChrome192  = "android-chrome-192x192.png"
	AndroidChrome512  = "android-chrome-512x512.png"
	MSTile150         = "mstile-150x150.png"
	WebManifest       = "site.webmanifest"
	BrowserConfigFile = "browserconfig.xml"
)

// Artifacts lists every file a successful run leaves in the output directory.
var Artifacts = []string{
	FaviconICO,
	AppleTouchIcon,
	AndroidChrome192,
	AndroidChrome512,
	MSTile150,
	WebManifest,
	BrowserConfigFile,
}

// RasterName is the intermediate file name for one rasterized size.
func RasterName(size int) string {
	return fmt.Sprintf("favicon-%d.png", size)
}

// ManifestIcon is one entry of the web manifest "icons" array.
type ManifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// Manifest is the site.webmanifest document. Field order is the output order.
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Icons           []ManifestIcon `json:"icons"`
	ThemeColor      string         `json:"theme_color"`
	BackgroundColor string         `json:"background_color"`
	Display         string         `json:"display"`
}

// NewManifest builds the manifest describing the two Android Chrome icons.
func NewManifest(opts ManifestOptions) Manifest {
	return Manifest{
		Name:      opts.Name,
		ShortName: opts.ShortName,
		Icons: []ManifestIcon{
			{Src: "/" + AndroidChrome192, Sizes: "192x192", Type: "image/png"},
			{Src: "/" + AndroidChrome512, Sizes: "512x512", Type: "image/png"},
		},
		ThemeColor:      opts.ThemeColor,
		BackgroundColor: opts.BackgroundColor,
		Display:         opts.Display,
	}
}

// RenderManifest returns the manifest as two-space indented JSON without a
// trailing newline.
func RenderManifest(opts ManifestOptions) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewManifest(opts)); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var browserConfigTemplate = template.Must(template.New("browserconfig").Parse(`<?xml version="1.0" encoding="utf-8"?>
<browserconfig>
  <msapplication>
    <tile>
      <square150x150logo src="/{{.Tile}}"/>
      <TileColor>{{.Color}}</TileColor>
    </tile>
  </msapplication>
</browserconfig>`))

// RenderBrowserConfig returns browserconfig.xml referencing the 150×150 tile.
func RenderBrowserConfig(tileColor string) ([]byte, error) {
	var buf bytes.Buffer
	data := struct{ Tile, Color string }{Tile: MSTile150, Color: tileColor}
	if err := browserConfigTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render browserconfig: %w", err)
	}
	return buf.Bytes(), nil
}
