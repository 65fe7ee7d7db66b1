package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLead_SiteProfiles(t *testing.T) {
	tests := []struct {
		name string
		url  string
		html string
		want string
	}{
		{
			name: "nhk article body wins over page noise",
			url:  "https://www3.nhk.or.jp/news/html/20240101/k10000000000.html",
			html: `<html><body>
				<p>メニュー ホーム ニュース一覧 番組表 ライブ配信 設定 検索 言語</p>
				<div id="js-article-body">
					<p>短い</p>
					<p>東京都は1日、新しい防災計画を発表し、住民への説明会を来月から始めると明らかにしました。</p>
				</div>
			</body></html>`,
			want: "東京都は1日、新しい防災計画を発表し、住民への説明会を来月から始めると明らかにしました。",
		},
		{
			name: "bbc article container",
			url:  "https://www.bbc.co.uk/news/world-12345678",
			html: `<html><body>
				<nav><p>Home</p></nav>
				<article>
					<p>Ad</p>
					<p>World leaders gathered in Geneva on Tuesday for a new round of climate negotiations.</p>
				</article>
			</body></html>`,
			want: "World leaders gathered in Geneva on Tuesday for a new round of climate negotiations.",
		},
		{
			name: "bbc falls back to meta description when containers are empty",
			url:  "https://www.bbc.com/news/av-embeds/987",
			html: `<html><head>
				<meta name="description" content="  A summary   of the story from   metadata. ">
			</head><body><article><p>ok</p></article></body></html>`,
			want: "A summary of the story from metadata.",
		},
		{
			name: "unknown host uses generic page-wide scan",
			url:  "https://example.org/story",
			html: `<html><body>
				<p>nav</p>
				<p>This paragraph has exactly enough characters to pass.</p>
			</body></html>`,
			want: "This paragraph has exactly enough characters to pass.",
		},
		{
			name: "short paragraphs only returns first non-empty as last resort",
			url:  "https://example.org/stub",
			html: `<html><body><p>   </p><p>Brief.</p></body></html>`,
			want: "Brief.",
		},
		{
			name: "no paragraphs returns empty",
			url:  "https://example.org/empty",
			html: `<html><body><div>just a div</div></body></html>`,
			want: "",
		},
		{
			name: "empty body returns empty",
			url:  "https://example.org/none",
			html: "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lead(tt.url, tt.html))
		})
	}
}

func TestLead_StripsScriptStyleNoscript(t *testing.T) {
	html := `<html><body>
		<script><p>window.dataLayer = something very long that must never leak out;</p></script>
		<style>p { color: red; } /* padding padding padding padding */</style>
		<noscript><p>Please enable JavaScript to continue reading this article today.</p></noscript>
		<p>The actual story paragraph survives the stripping untouched.</p>
	</body></html>`

	got := Lead("https://example.org/x", html)
	assert.Equal(t, "The actual story paragraph survives the stripping untouched.", got)
}

func TestLead_NormalizesWhitespace(t *testing.T) {
	html := "<html><body><p>Spread \n\t across   many lines, this paragraph still reads as one.</p></body></html>"
	got := Lead("https://example.org/x", html)
	assert.False(t, strings.Contains(got, "\n"))
	assert.Equal(t, "Spread across many lines, this paragraph still reads as one.", got)
}

func TestProfileFor(t *testing.T) {
	assert.Equal(t, "nhk", ProfileFor("https://www3.nhk.or.jp/news/1").Name)
	assert.Equal(t, "bbc", ProfileFor("https://www.bbc.com/news/1").Name)
	assert.Nil(t, ProfileFor("https://unknown.example.com/1"))
	assert.Nil(t, ProfileFor("://bad"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  a\n b \t c "))
	assert.Equal(t, "", Normalize(" \n\t "))
}
