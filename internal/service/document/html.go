package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// FromHTML maps an HTML fragment posted by the editing surface into an
// ordered block list. This is a plain structural mapping; readability
// extraction, sanitization and URL rewriting happen upstream.
func FromHTML(html, originalURL string) (*ParsedDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	description := ""
	doc.Find("meta[name='description']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if content, ok := s.Attr("content"); ok {
			description = strings.TrimSpace(content)
			return false
		}
		return true
	})

	var blocks []ContentBlock
	doc.Find("h1, h2, h3, h4, p, ul, ol, blockquote").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}

		block := ContentBlock{
			ID:      uuid.NewString(),
			Content: normalizeWhitespace(text),
		}

		switch goquery.NodeName(s) {
		case "h1":
			block.Type = BlockHeading
			block.Level = 1
		case "h2":
			block.Type = BlockSubheading
			block.Level = 2
		case "h3":
			block.Type = BlockSubheading
			block.Level = 3
		case "h4":
			block.Type = BlockSubheading
			block.Level = 4
		case "ul", "ol":
			block.Type = BlockList
		case "blockquote":
			block.Type = BlockBlockquote
		default:
			block.Type = BlockParagraph
		}

		blocks = append(blocks, block)
	})

	return New(title, description, blocks, originalURL), nil
}

// normalizeWhitespace collapses runs of whitespace into single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
