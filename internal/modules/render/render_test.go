package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", Markdown("   \n  "))
	})

	t.Run("headings and emphasis", func(t *testing.T) {
		html := Markdown("# Title\n\nSome *emphasis* here.")
		assert.Contains(t, html, "<h1")
		assert.Contains(t, html, "<em>emphasis</em>")
	})

	t.Run("gfm tables", func(t *testing.T) {
		html := Markdown("| a | b |\n|---|---|\n| 1 | 2 |")
		assert.Contains(t, html, "<table>")
	})

	t.Run("gfm strikethrough", func(t *testing.T) {
		html := Markdown("~~gone~~")
		assert.Contains(t, html, "<del>gone</del>")
	})

	t.Run("autolink", func(t *testing.T) {
		html := Markdown("see https://example.com for more")
		assert.Contains(t, html, `<a href="https://example.com"`)
	})
}
