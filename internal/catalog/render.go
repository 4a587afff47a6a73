package catalog

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/brixies/brix-cli/internal/util"
)

// Formats accepted by Render.
const (
	FormatJSON     = "json"
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

// Render renders idx in the requested format.
func Render(idx *Index, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return JSON(idx)
	case FormatMarkdown, "markdown":
		return Markdown(idx), nil
	case FormatHTML:
		return HTML(idx)
	default:
		return "", fmt.Errorf("unsupported index format %q (expected json, md or html)", format)
	}
}

// JSON renders the index document.
func JSON(idx *Index) (string, error) {
	buf, err := util.MarshalJSON(idx)
	if err != nil {
		return "", err
	}
	return string(buf) + "\n", nil
}

// CategoryCounts returns the number of sections per category.
func CategoryCounts(entries []Entry) map[string]int {
	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Category]++
	}
	return counts
}

// Markdown renders the catalog as a Markdown table.
func Markdown(idx *Index) string {
	entries := idx.Entries()

	var b strings.Builder
	b.WriteString("# Sections Index\n\n")
	if idx.LastUpdated != "" {
		b.WriteString(fmt.Sprintf("> Auto-generated on %s - Do not edit manually\n\n", idx.LastUpdated))
	}
	b.WriteString("| Framework | Category | Section | Default class | Location |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, e := range entries {
		location := e.RemoteURL
		if location == "" {
			location = e.RelativePath
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | `%s` | %s |\n",
			fallback(e.Framework, "-"),
			e.Category,
			e.Name,
			e.DefaultClass,
			location,
		))
	}

	b.WriteString("\n## Summary\n\n")
	counts := CategoryCounts(entries)
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		b.WriteString(fmt.Sprintf("- **%s**: %d\n", category, counts[category]))
	}
	b.WriteString(fmt.Sprintf("\n**Total**: %d sections\n", len(entries)))
	return b.String()
}

const htmlTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<title>Sections Index</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.5rem; text-align: left; }
th { background: #f5f5f5; }
</style>
</head>
<body>
<table>
<caption>Sections Index{{ if .Updated }} (generated {{ .Updated }}){{ end }}</caption>
<thead><tr><th>Framework</th><th>Category</th><th>Section</th><th>Default class</th><th>Location</th></tr></thead>
<tbody>
{{ range .Entries }}<tr><td>{{ .Framework }}</td><td>{{ .Category }}</td><td>{{ .Name }}</td><td><code>{{ .DefaultClass }}</code></td><td>{{ location . }}</td></tr>
{{ end }}</tbody>
</table>
<p><strong>Total:</strong> {{ len .Entries }} sections</p>
</body>
</html>
`

// HTML renders the catalog as a simple HTML table.
func HTML(idx *Index) (string, error) {
	funcs := template.FuncMap{
		"location": func(e Entry) string {
			if e.RemoteURL != "" {
				return e.RemoteURL
			}
			return e.RelativePath
		},
	}
	t, err := template.New("index").Funcs(funcs).Parse(htmlTemplate)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = t.Execute(&buf, struct {
		Updated string
		Entries []Entry
	}{Updated: idx.LastUpdated, Entries: idx.Entries()})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}
