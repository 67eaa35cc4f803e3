package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseError reports markup that could not be turned into a document tree.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse HTML: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

type Parser interface {
	Parse(r io.Reader) (*Document, error)
}

// HTMLParser is a lenient HTML parser: unknown and unclosed tags are
// repaired by the HTML5 tree builder instead of aborting.
type HTMLParser struct{}

func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

func (p *HTMLParser) Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ParseError{Cause: err}
	}
	return &Document{doc: doc}, nil
}

func (p *HTMLParser) ParseString(html string) (*Document, error) {
	return p.Parse(strings.NewReader(html))
}
