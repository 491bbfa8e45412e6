// Package mermaid validates mermaid diagram sources in a headless browser.
package mermaid

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultScriptURL is the mermaid build loaded into the validation page.
const DefaultScriptURL = "https://cdn.jsdelivr.net/npm/mermaid@10.9.5/dist/mermaid.min.js"

// Validator renders each diagram with mermaid and reports syntax errors.
type Validator struct {
	ScriptURL string        // Mermaid script, defaults to DefaultScriptURL
	Timeout   time.Duration // Budget for the whole batch, defaults to 15s
	Settle    time.Duration // Wait after navigation before inspecting, defaults to 2s
}

func (v *Validator) scriptURL() string {
	if v.ScriptURL == "" {
		return DefaultScriptURL
	}
	return v.ScriptURL
}

func (v *Validator) timeout() time.Duration {
	if v.Timeout <= 0 {
		return 15 * time.Second
	}
	return v.Timeout
}

func (v *Validator) settle() time.Duration {
	if v.Settle <= 0 {
		return 2 * time.Second
	}
	return v.Settle
}

// Page returns the standalone HTML page used to render one diagram.
func (v *Validator) Page(diagram string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<script src="%s"></script>
	<script>
		mermaid.initialize({ startOnLoad: true });
	</script>
</head>
<body>
	<div class="mermaid">
%s
	</div>
</body>
</html>
`, html.EscapeString(v.scriptURL()), html.EscapeString(diagram))
}

// Check renders every diagram and returns one message per failure. The
// returned error is set only when the browser cannot be prepared.
func (v *Validator) Check(ctx context.Context, diagrams []string) ([]string, error) {
	if len(diagrams) == 0 {
		return nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "docpage-mermaid-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, v.timeout())
	defer cancel()

	var messages []string
	for i, diagram := range diagrams {
		page := filepath.Join(tmpDir, fmt.Sprintf("diagram-%d.html", i))
		if err := os.WriteFile(page, []byte(v.Page(diagram)), 0644); err != nil {
			return nil, fmt.Errorf("failed to write temp file: %w", err)
		}

		var hasError bool
		err := chromedp.Run(browserCtx,
			chromedp.Navigate("file://"+page),
			chromedp.Sleep(v.settle()),
			chromedp.Evaluate(`
				document.body.textContent.includes('Syntax error') ||
				document.body.textContent.includes('Parse error')
			`, &hasError),
		)

		if err != nil {
			messages = append(messages, fmt.Sprintf("diagram %d: failed to validate (%v)", i+1, err))
		} else if hasError {
			messages = append(messages, fmt.Sprintf("diagram %d: mermaid syntax error detected", i+1))
		}
	}

	return messages, nil
}
