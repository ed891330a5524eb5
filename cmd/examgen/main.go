// Command examgen generates a practice exam from a learning-objectives file
// and writes the problem set as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/WWTD-Production/Server/app/config"
	"github.com/WWTD-Production/Server/exam"
	"github.com/WWTD-Production/Server/llm"
)

func main() {
	objectivesPath := flag.String("objectives", "", "path to a file with learning objectives")
	outPath := flag.String("out", "", "output file (default stdout)")
	model := flag.String("model", "", "override the configured model")
	flag.Parse()

	if *objectivesPath == "" {
		log.Fatal("usage: examgen -objectives <file> [-out <file>] [-model <name>]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *model == "" {
		*model = cfg.LLM.Model
	}

	objectives, err := os.ReadFile(*objectivesPath)
	if err != nil {
		log.Fatalf("failed to read objectives: %v", err)
	}

	client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Timeout)
	gen := exam.NewGenerator(client, *model)

	problems, err := gen.Generate(context.Background(), string(objectives))
	if err != nil {
		log.Fatalf("failed to generate exam: %v", err)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{"problems": problems}); err != nil {
		log.Fatalf("failed to write problems: %v", err)
	}

	log.Printf("generated %d problems", len(problems))
}
