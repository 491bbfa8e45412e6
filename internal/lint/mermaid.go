package lint

import (
	"context"
	"fmt"

	"github.com/livetemplate/docpage"
)

// checkMermaid runs the configured checker over the document's mermaid blocks.
func (l *Linter) checkMermaid(ctx context.Context, rel, abs string, src []byte) []Problem {
	doc := docpage.Parse(docpage.StripFrontMatter(docpage.SplitLines(string(src))))
	blocks := doc.CodeBlocks("mermaid")
	if len(blocks) == 0 {
		return nil
	}

	diagrams := make([]string, len(blocks))
	for i, b := range blocks {
		diagrams[i] = b.Code
	}

	l.log.Debug("validating mermaid diagrams", "file", rel, "count", len(diagrams))
	messages, err := l.mermaid.Check(ctx, diagrams)
	if err != nil {
		return []Problem{{File: rel, Message: fmt.Sprintf("mermaid check failed: %v", err), source: abs}}
	}

	problems := make([]Problem, 0, len(messages))
	for _, msg := range messages {
		problems = append(problems, Problem{File: rel, Message: msg, Hint: "preview the diagram at https://mermaid.live", source: abs})
	}
	return problems
}
