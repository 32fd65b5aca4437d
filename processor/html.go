package processor

import (
	"context"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

const defaultConcurrency = 4

// HTMLProcessor translates the text nodes of an HTML document. Each distinct
// text is translated once with token preservation enabled.
type HTMLProcessor struct {
	ignoredTags map[string]bool
	concurrency int
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: queryfarmer.IgnoredTags,
		concurrency: defaultConcurrency,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
		concurrency: defaultConcurrency,
	}
}

// WithConcurrency sets how many texts are translated at once.
func (p *HTMLProcessor) WithConcurrency(n int) *HTMLProcessor {
	if n > 0 {
		p.concurrency = n
	}
	return p
}

// TextNode is a distinct trimmed text and every DOM node that carries it.
type TextNode struct {
	Text  string
	nodes []*html.Node
}

// Document is a parsed HTML document ready for translation.
type Document struct {
	doc   *goquery.Document
	texts []TextNode
}

// Texts returns the distinct translatable texts in document order.
func (d *Document) Texts() []TextNode {
	return d.texts
}

// Parse parses HTML and collects translatable text nodes.
func (p *HTMLProcessor) Parse(content string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, &queryfarmer.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	d := &Document{doc: doc}
	index := make(map[string]int)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && p.skip(n) {
			return
		}

		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				i, ok := index[trimmed]
				if !ok {
					i = len(d.texts)
					index[trimmed] = i
					d.texts = append(d.texts, TextNode{Text: trimmed})
				}
				d.texts[i].nodes = append(d.texts[i].nodes, n)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Nodes {
		walk(n)
	}

	return d, nil
}

// skip reports whether an element's subtree must stay untranslated.
func (p *HTMLProcessor) skip(n *html.Node) bool {
	if p.ignoredTags[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "data-no-translate" {
			return true
		}
	}
	return false
}

// Translate translates every text node of content from sourceLang to
// targetLang and marks the <html> element with lang and dir.
func (p *HTMLProcessor) Translate(ctx context.Context, t Translator, content, sourceLang, targetLang string) (*Result, error) {
	d, err := p.Parse(content)
	if err != nil {
		return nil, err
	}

	reqs := make([]queryfarmer.Request, len(d.texts))
	for i, tn := range d.texts {
		reqs[i] = queryfarmer.Request{
			Text:           tn.Text,
			SourceLang:     sourceLang,
			TargetLang:     targetLang,
			PreserveTokens: true,
		}
	}

	results, err := t.TranslateBatch(ctx, reqs, p.concurrency)
	if err != nil {
		return nil, err
	}

	res := &Result{TotalNodes: len(d.texts)}
	for i, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Result.Fallback {
			res.FallbackCount++
		} else {
			res.TranslatedCount++
		}
		for _, n := range d.texts[i].nodes {
			n.Data = preserveWhitespace(n.Data, r.Result.TranslatedText)
		}
	}

	htmlTag := d.doc.Find("html")
	if htmlTag.Length() > 0 {
		htmlTag.SetAttr("lang", strings.ReplaceAll(targetLang, "_", "-"))
		htmlTag.SetAttr("dir", queryfarmer.Direction(targetLang))
	}

	out, err := d.doc.Html()
	if err != nil {
		return nil, &queryfarmer.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}
	res.Content = out
	return res, nil
}

// preserveWhitespace carries the whitespace Parse trimmed from original
// over to translated. Both sides use unicode.IsSpace, so &nbsp; survives.
func preserveWhitespace(original, translated string) string {
	body := strings.TrimLeftFunc(original, unicode.IsSpace)
	leading := original[:len(original)-len(body)]
	trailing := body[len(strings.TrimRightFunc(body, unicode.IsSpace)):]
	return leading + translated + trailing
}
