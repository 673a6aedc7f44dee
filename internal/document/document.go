// Package document flattens markdown ticket bodies into plain text plus the
// links, lists and sections found in them. Everything downstream of this
// package works on the flat form only.
package document

import (
	"strconv"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func parser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdown
}

// List is a flattened markdown list.
type List struct {
	Ordered bool     `json:"ordered"`
	Items   []string `json:"items"`
}

// Section is the text under a heading, up to the next heading.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Body    string `json:"body"`
}

// Document is the flat form of a ticket body.
type Document struct {
	// Text holds one line per block. List items keep their bullet or number.
	Text string `json:"text"`
	// Links are link and autolink destinations in document order.
	Links    []string  `json:"links,omitempty"`
	Code     []string  `json:"code,omitempty"`
	Lists    []List    `json:"lists,omitempty"`
	Sections []Section `json:"sections,omitempty"`
}

// Parse flattens a markdown body. It never fails: anything goldmark cannot
// structure ends up as paragraph text.
func Parse(body string) *Document {
	doc := &Document{}
	if strings.TrimSpace(body) == "" {
		return doc
	}

	source := []byte(body)
	root := parser().Parser().Parse(text.NewReader(source))

	f := &flattener{source: source, doc: doc}
	_ = ast.Walk(root, f.walk)
	f.closeSection()

	doc.Text = strings.Join(f.lines, "\n")
	return doc
}

type listFrame struct {
	list    List
	counter int
	item    strings.Builder
	bullet  string
}

// flattener is an ast.Walk visitor that accumulates inline text per block
// and emits one line when the block closes.
type flattener struct {
	source []byte
	doc    *Document

	inline strings.Builder
	lines  []string
	lists  []*listFrame

	section     *Section
	sectionBody []string
}

func (f *flattener) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			f.inline.Reset()
		} else {
			f.emit(f.takeInline())
		}

	case ast.KindHeading:
		if entering {
			f.inline.Reset()
		} else {
			f.openSection(f.takeInline(), node.(*ast.Heading).Level)
		}

	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		if entering {
			code := strings.TrimRight(f.blockLines(node), "\n")
			if code != "" {
				f.doc.Code = append(f.doc.Code, code)
				for _, line := range strings.Split(code, "\n") {
					f.emit(line)
				}
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindHTMLBlock:
		if entering {
			return ast.WalkSkipChildren, nil
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			f.lists = append(f.lists, &listFrame{
				list:    List{Ordered: list.IsOrdered()},
				counter: list.Start,
			})
		} else {
			top := f.lists[len(f.lists)-1]
			f.lists = f.lists[:len(f.lists)-1]
			f.doc.Lists = append(f.doc.Lists, top.list)
		}

	case ast.KindListItem:
		if len(f.lists) == 0 {
			break
		}
		top := f.lists[len(f.lists)-1]
		if entering {
			top.item.Reset()
			if top.list.Ordered {
				top.bullet = strconv.Itoa(top.counter) + ". "
				top.counter++
			} else {
				top.bullet = "- "
			}
		} else {
			top.list.Items = append(top.list.Items, strings.TrimSpace(top.item.String()))
		}

	case ast.KindText:
		if entering {
			t := node.(*ast.Text)
			f.inline.Write(t.Segment.Value(f.source))
			if t.HardLineBreak() {
				f.inline.WriteString("\n")
			} else if t.SoftLineBreak() {
				f.inline.WriteString(" ")
			}
		}

	case ast.KindString:
		if entering {
			f.inline.Write(node.(*ast.String).Value)
		}

	case ast.KindCodeSpan:
		if entering {
			code := f.childText(node)
			f.doc.Code = append(f.doc.Code, code)
			f.inline.WriteString(code)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			f.doc.Links = append(f.doc.Links, string(node.(*ast.Link).Destination))
		}

	case ast.KindAutoLink:
		if entering {
			url := string(node.(*ast.AutoLink).URL(f.source))
			f.doc.Links = append(f.doc.Links, url)
			f.inline.WriteString(url)
		}

	case ast.KindImage, ast.KindRawHTML:
		if entering {
			return ast.WalkSkipChildren, nil
		}
	}

	return ast.WalkContinue, nil
}

func (f *flattener) takeInline() string {
	s := strings.TrimSpace(f.inline.String())
	f.inline.Reset()
	return s
}

// emit records one line of block text, prefixing the first line of a list
// item with its bullet.
func (f *flattener) emit(line string) {
	if line == "" {
		return
	}
	if n := len(f.lists); n > 0 {
		top := f.lists[n-1]
		if top.item.Len() > 0 {
			top.item.WriteString(" ")
		}
		top.item.WriteString(line)
		if top.bullet != "" {
			line = strings.Repeat("  ", n-1) + top.bullet + line
			top.bullet = ""
		}
	}
	f.lines = append(f.lines, line)
	if f.section != nil {
		f.sectionBody = append(f.sectionBody, line)
	}
}

func (f *flattener) openSection(heading string, level int) {
	f.closeSection()
	if heading == "" {
		return
	}
	f.lines = append(f.lines, heading)
	f.section = &Section{Heading: heading, Level: level}
}

func (f *flattener) closeSection() {
	if f.section == nil {
		return
	}
	f.section.Body = strings.Join(f.sectionBody, "\n")
	f.doc.Sections = append(f.doc.Sections, *f.section)
	f.section = nil
	f.sectionBody = nil
}

func (f *flattener) blockLines(node ast.Node) string {
	var b strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(f.source))
	}
	return b.String()
}

func (f *flattener) childText(node ast.Node) string {
	var b strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(f.source))
		case *ast.String:
			b.Write(c.Value)
		}
	}
	return b.String()
}
