package render

import (
	_ "embed"
	"html/template"
	"strings"
)

var (
	//go:embed chrome/dark.css
	darkChrome string
	//go:embed chrome/light.css
	lightChrome string
)

var shellTmpl = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8" />
<meta name="color-scheme" content="{{.Scheme}}" />
<style>
{{.Chrome}}
{{.Stylesheet}}
</style>
</head>
<body>
<div class="markdown-root">
{{.Body}}</div>
</body>
</html>
`))

// wrapDocument places body inside the full HTML document for cfg.
func wrapDocument(cfg ThemeConfig, body string) (string, error) {
	var buf strings.Builder
	err := shellTmpl.Execute(&buf, struct {
		Scheme     string
		Chrome     template.CSS
		Stylesheet template.CSS
		Body       template.HTML
	}{
		Scheme:     string(cfg.Theme),
		Chrome:     template.CSS(cfg.Chrome),
		Stylesheet: template.CSS(cfg.Stylesheet),
		Body:       template.HTML(body),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
