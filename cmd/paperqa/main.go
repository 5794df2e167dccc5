// Command paperqa is the entry point for the research-paper Q&A agent.
// It ingests a directory of PDFs, builds an in-memory vector index, and
// answers questions with page-cited excerpts via a maker/checker loop.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ebzlo/paperqa-go/cmd/paperqa/commands"
)

func main() {
	// Load .env if present; real env vars are never overwritten.
	_ = godotenv.Load()

	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
