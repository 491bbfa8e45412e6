// Command docpage renders documentation markdown into standalone HTML pages,
// lints documentation front matter and serves a live preview.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/livetemplate/docpage/cmd/docpage/commands"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "render":
		err = commands.RenderCommand(args)
	case "lint":
		err = commands.LintCommand(args)
	case "serve":
		err = commands.ServeCommand(args)
	case "version":
		fmt.Printf("docpage version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if errors.Is(err, commands.ErrLintFailed) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("docpage - Standalone HTML pages from documentation markdown")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  docpage render --in <md> --out <html>  Render one document")
	fmt.Println("  docpage lint [root]                    Check docs/ front matter")
	fmt.Println("  docpage serve [directory]              Start preview server")
	fmt.Println("  docpage version                        Show version")
	fmt.Println("  docpage help                           Show this help")
	fmt.Println()
	fmt.Println("Render flags:")
	fmt.Println("  --title T          Page title (defaults to the file name)")
	fmt.Println("  --toc-level N      Deepest heading level in the TOC (default 3)")
	fmt.Println("  --engine E         minimal or gfm (default minimal)")
	fmt.Println("  --lang L           html lang attribute (default en)")
	fmt.Println("  --config path      Config file (default: docpage.yaml next to the input)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  docpage render --in docs/guide.md --out site/guide.html")
	fmt.Println("  docpage render --in README.md --out out/readme.html --engine gfm")
	fmt.Println("  docpage lint                       # Lint ./docs")
	fmt.Println("  docpage lint . --mermaid           # Also check mermaid diagrams")
	fmt.Println("  docpage serve docs --port 9000     # Preview docs/ with live reload")
}
