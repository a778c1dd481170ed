package document

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
)

// BlockType identifies the semantic role of a content block
type BlockType string

const (
	BlockHeading    BlockType = "heading"
	BlockSubheading BlockType = "subheading"
	BlockParagraph  BlockType = "paragraph"
	BlockList       BlockType = "list"
	BlockBlockquote BlockType = "blockquote"
)

// Common validation errors
var (
	ErrMissingTitle  = errors.New("document title is required")
	ErrMissingBlocks = errors.New("document content must be an ordered block list")
)

// ContentBlock is one semantic unit of document content. Blocks are owned and
// mutated by the editing surface; the analysis core only reads them.
type ContentBlock struct {
	ID       string    `json:"id"`
	Type     BlockType `json:"type"`
	Content  string    `json:"content"`
	Level    int       `json:"level,omitempty"`
	IsEdited bool      `json:"isEdited"`
}

// IsHeading reports whether the block is a heading or subheading.
func (b ContentBlock) IsHeading() bool {
	return b.Type == BlockHeading || b.Type == BlockSubheading
}

// ParsedDocument is a snapshot of the editable document. Block order is
// document reading order.
type ParsedDocument struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Blocks      []ContentBlock `json:"blocks"`
	OriginalURL string         `json:"originalUrl,omitempty"`
}

// New creates a document snapshot, defaulting the title to "Untitled".
func New(title, description string, blocks []ContentBlock, originalURL string) *ParsedDocument {
	if strings.TrimSpace(title) == "" {
		title = "Untitled"
	}
	if blocks == nil {
		blocks = []ContentBlock{}
	}
	return &ParsedDocument{
		Title:       title,
		Description: description,
		Blocks:      blocks,
		OriginalURL: originalURL,
	}
}

// Validate checks the caller-input contract: a non-empty title and an ordered
// block list must be present. Violations are caller errors, never recovered.
func (d *ParsedDocument) Validate() error {
	if d == nil {
		return ErrMissingBlocks
	}
	if strings.TrimSpace(d.Title) == "" {
		return ErrMissingTitle
	}
	if d.Blocks == nil {
		return ErrMissingBlocks
	}
	return nil
}

// PlainText returns the document text with blocks joined in reading order.
func (d *ParsedDocument) PlainText() string {
	parts := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if strings.TrimSpace(b.Content) == "" {
			continue
		}
		parts = append(parts, b.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Paragraphs returns the paragraph blocks in document order.
func (d *ParsedDocument) Paragraphs() []ContentBlock {
	var out []ContentBlock
	for _, b := range d.Blocks {
		if b.Type == BlockParagraph {
			out = append(out, b)
		}
	}
	return out
}

// HeadingCount returns the number of heading and subheading blocks.
func (d *ParsedDocument) HeadingCount() int {
	n := 0
	for _, b := range d.Blocks {
		if b.IsHeading() {
			n++
		}
	}
	return n
}

// Length returns the total character count of the document text.
func (d *ParsedDocument) Length() int {
	return len(d.PlainText())
}

// fingerprintSample caps the amount of text folded into a fingerprint.
const fingerprintSample = 512

// Fingerprint derives a cheap identity for "same request as last time"
// detection and prior-score lookups: a FNV-1a hash of the title, a bounded
// text sample and the analysis parameters.
func (d *ParsedDocument) Fingerprint(targetKeyword string) string {
	text := d.PlainText()
	if len(text) > fingerprintSample {
		text = text[:fingerprintSample]
	}

	h := fnv.New64a()
	h.Write([]byte(d.Title))
	h.Write([]byte{0})
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(targetKeyword)))
	return fmt.Sprintf("%016x", h.Sum64())
}
