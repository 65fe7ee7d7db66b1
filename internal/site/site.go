// Package site assembles the final item records into the persisted
// output artifacts: a stable JSON feed plus a rendered static page.
package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// Item is one published news record. Immutable once written.
type Item struct {
	Source            string `json:"source"`
	SourceLang        string `json:"sourceLang"`
	Title             string `json:"title"`
	TitleTranslated   string `json:"titleTranslated"`
	Link              string `json:"link"`
	PublishedAt       string `json:"publishedAt"`
	Summary           string `json:"summary"`
	SummaryTranslated string `json:"summaryTranslated"`
}

// Feed is the JSON output artifact. Always written whole, even for
// zero items.
type Feed struct {
	GeneratedAt string `json:"generatedAt"`
	Count       int    `json:"count"`
	Items       []Item `json:"items"`
}

// Writer persists the site artifacts into one directory.
type Writer struct {
	dir string
}

// NewWriter makes sure the output directory exists. This is the one
// fatal configuration path of the pipeline.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create site directory %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Write overwrites news.json and index.html wholesale.
func (w *Writer) Write(generatedAt time.Time, items []Item) error {
	if items == nil {
		items = []Item{}
	}

	feed := Feed{
		GeneratedAt: generatedAt.Format(time.RFC3339),
		Count:       len(items),
		Items:       items,
	}

	data, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, "news.json"), data, 0644); err != nil {
		return fmt.Errorf("write news.json: %w", err)
	}

	page, err := renderPage(feed)
	if err != nil {
		return fmt.Errorf("render index.html: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, "index.html"), page, 0644); err != nil {
		return fmt.Errorf("write index.html: %w", err)
	}
	return nil
}

func renderPage(feed Feed) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, feed); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var pageTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="zh-CN">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>Michael News</title>
  <style>
    body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial;
         margin:0;background:#fafafa;color:#111;}
    .wrap{max-width:980px;margin:24px auto;padding:0 16px;}
    h1{margin:0 0 8px 0;font-size:28px;}
    .sub{color:#555;margin-bottom:18px;}
    .card{background:#fff;border:1px solid #e7e7e7;border-radius:12px;
          padding:16px;margin:12px 0;box-shadow:0 1px 2px rgba(0,0,0,.03);}
    .meta{color:#666;font-size:13px;margin-bottom:10px;}
    .title{font-size:18px;font-weight:700;line-height:1.35;margin-bottom:10px;}
    .para{font-size:15px;line-height:1.7;color:#222;}
    .link{margin-top:10px;font-size:14px;}
    a{color:#0b57d0;text-decoration:none;}
    a:hover{text-decoration:underline;}
    .empty{padding:24px;background:#fff;border:1px dashed #ccc;border-radius:12px;color:#666;}
  </style>
</head>
<body>
  <div class="wrap">
    <h1>📰 Michael News</h1>
    <div class="sub">最后更新：{{.GeneratedAt}} ｜ 共 {{.Count}} 条</div>
{{- if .Items}}
{{- range .Items}}
    <div class="card">
      <div class="meta">{{.Source}} · {{.PublishedAt}}</div>
      <div class="title">{{.Title}}（{{if .TitleTranslated}}{{.TitleTranslated}}{{else}}未翻译{{end}}）</div>
      <div class="para">{{.Summary}}（{{if .SummaryTranslated}}{{.SummaryTranslated}}{{else}}未翻译{{end}}）</div>
      {{if .Link}}<div class="link"><a href="{{.Link}}" target="_blank" rel="noopener">打开原文</a></div>{{end}}
    </div>
{{- end}}
{{- else}}
    <div class="empty">今天没有抓到新闻。</div>
{{- end}}
  </div>
</body>
</html>
`))
