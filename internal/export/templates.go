package export

import (
	"bytes"
	"html/template"
	"time"
)

type templateData struct {
	Kind      string
	Code      string
	Title     string
	Section   string
	Content   string
	UpdatedBy string
	UpdatedAt time.Time
}

var documentTemplate = template.Must(template.New("document").Parse(documentTemplateHTML))

func renderDocumentHTML(data templateData) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const documentTemplateHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Kind}} {{.Code}} — {{.Title}}</title>
  <style>
    body { font-family: Georgia, serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    .content { white-space: pre-wrap; }
  </style>
</head>
<body>
  <h1>{{.Kind}} {{.Code}}: {{.Title}}</h1>
  <div class="meta">
    {{if .Section}}Section {{.Section}} | {{end}}Approved | Last updated {{.UpdatedAt.Format "Jan 2, 2006"}}{{if .UpdatedBy}} by {{.UpdatedBy}}{{end}}
  </div>
  <div class="content">{{.Content}}</div>
</body>
</html>`
