package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/HendryAvila/triz-master/internal/catalog"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders the full report document.
func Markdown(d Document) string {
	l := labelsFor(d.Locale)
	loc := d.Locale

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", l.title)
	if !d.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "_%s: %s_\n\n", l.created, d.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Fprintf(&b, "## %s\n\n%s\n\n", l.problem, escape(d.Problem))

	if d.Improving != nil || d.Worsening != nil {
		fmt.Fprintf(&b, "## %s\n\n", l.contradict)
		fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", l.improving, l.worsening)
		fmt.Fprintf(&b, "| %s | %s |\n\n", paramCell(d.Improving, loc), paramCell(d.Worsening, loc))
		if d.Explanation != "" {
			fmt.Fprintf(&b, "%s\n\n", escape(d.Explanation))
		}
	}

	fmt.Fprintf(&b, "## %s\n\n", l.principles)
	if len(d.Principles) == 0 {
		fmt.Fprintf(&b, "%s\n\n", l.noPrinciples)
	}
	for _, p := range d.Principles {
		fmt.Fprintf(&b, "- **%d. %s**: %s\n", p.ID, p.Name.Get(loc), p.Description.Get(loc))
	}
	if len(d.Principles) > 0 {
		b.WriteString("\n")
	}

	if r := d.Report; r != nil {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", l.analysis, escape(r.Introduction))
		fmt.Fprintf(&b, "## %s\n\n", l.solutions)
		for i, s := range r.Solutions {
			fmt.Fprintf(&b, "### %d. %s\n\n%s\n\n", i+1, escape(s.Title), escape(s.Description))
			fmt.Fprintf(&b, "- %s: %s\n", l.principle, escape(s.PrincipleApplied))
			fmt.Fprintf(&b, "- %s: %s\n\n", l.feasibilityH, ClassifyFeasibility(s.Feasibility).Label(loc))
		}
		fmt.Fprintf(&b, "## %s\n\n", l.actionPlan)
		for i, step := range r.NextSteps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, escape(step))
		}
	}
	return b.String()
}

func paramCell(p *catalog.Parameter, loc catalog.Locale) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d. %s", p.ID, p.Name.Get(loc))
}

// escape neutralizes characters that would change Markdown structure in
// model-generated text.
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "|", `\|`, "#", `\#`, "<", "&lt;")
	return r.Replace(strings.TrimSpace(s))
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem;color:#0f172a;line-height:1.6}
table{border-collapse:collapse}td,th{border:1px solid #cbd5e1;padding:.4rem .8rem}
h1{border-bottom:2px solid #4f46e5}
@media print{body{margin:0}}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders the document as a standalone printable page.
func HTML(d Document) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(d)), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	dir := "ltr"
	if d.Locale == catalog.Arabic {
		dir = "rtl"
	}
	var out bytes.Buffer
	err := page.Execute(&out, map[string]any{
		"Lang":  string(d.Locale),
		"Dir":   dir,
		"Title": labelsFor(d.Locale).title,
		"Body":  template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return out.String(), nil
}
