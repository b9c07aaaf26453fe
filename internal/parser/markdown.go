package parser

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"doc-chat/internal/models"
)

func parseMarkdown(filePath, fileName string) ([]models.Page, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	plain := markdownToText(source)
	return pagesFromBlocks(fileName, strings.Split(plain, "\n\n")), nil
}

// markdownToText strips markup by walking the goldmark AST, keeping link
// targets so image and anchor URLs survive into the indexed text.
func markdownToText(source []byte) string {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	var buf strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch t := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(t.Segment.Value(source))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.Image:
			if entering {
				buf.WriteString("Image URL: ")
				buf.Write(t.Destination)
				buf.WriteByte('\n')
			}
		case *ast.AutoLink:
			if entering {
				buf.Write(t.URL(source))
			}
		default:
			if !entering && n.Type() == ast.TypeBlock {
				buf.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
