// Package fence pulls fenced code blocks out of markdown documents.
package fence

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrNoBlock is returned when the document has no matching fenced block.
var ErrNoBlock = errors.New("no fenced code block found")

// Block is one fenced code block.
type Block struct {
	Language string
	Content  []byte // body lines, each with its newline
}

// Blocks returns every fenced code block in source, in document order.
func Blocks(source []byte) []Block {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var blocks []Block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}
		blocks = append(blocks, Block{
			Language: string(fenced.Language(source)),
			Content:  buf.Bytes(),
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// Extract returns the body of the first fenced block whose language matches
// lang (case-insensitive). An empty lang matches any block.
func Extract(source []byte, lang string) ([]byte, error) {
	for _, b := range Blocks(source) {
		if lang == "" || strings.EqualFold(b.Language, lang) {
			return b.Content, nil
		}
	}
	if lang != "" {
		return nil, fmt.Errorf("%w tagged %q", ErrNoBlock, lang)
	}
	return nil, ErrNoBlock
}
