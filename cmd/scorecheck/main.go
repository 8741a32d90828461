// Command scorecheck scores a local resume file against the configured model
// and prints the validated result. Partial objects go to stderr with -v.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"resume-scorer/internal/bootstrap"
	"resume-scorer/internal/extract"
	"resume-scorer/internal/prompt"
	"resume-scorer/internal/scoring"
	"resume-scorer/internal/shared/config"
)

func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to resume file (pdf, doc, docx or txt)")
	jdPath := flag.String("jd", "", "Path to job description file (optional)")
	title := flag.String("title", "", "Job title")
	company := flag.String("company", "", "Company")
	kind := flag.String("type", "detailed", "Analysis type: basic or detailed")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider: gemini, openai or none")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	outPath := flag.String("out", "", "Path to write the result JSON (optional)")
	verbose := flag.Bool("v", false, "Print partial objects to stderr")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" {
		exitErr("resume path is required")
	}
	cfg.LLMProvider = *provider
	cfg.LLMModel = *model

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mimeType, err := mimeFromExt(*resumePath)
	if err != nil {
		exitErr(err.Error())
	}
	data, err := os.ReadFile(*resumePath)
	if err != nil {
		exitErr(fmt.Sprintf("read resume: %v", err))
	}
	text, err := extract.ExtractText(ctx, data, mimeType)
	if err != nil {
		exitErr(fmt.Sprintf("extract resume text: %v", err))
	}

	jobDescription := ""
	if strings.TrimSpace(*jdPath) != "" {
		raw, err := os.ReadFile(*jdPath)
		if err != nil {
			exitErr(fmt.Sprintf("read job description: %v", err))
		}
		jobDescription = string(raw)
	}

	p, err := bootstrap.NewProvider(ctx, cfg)
	if err != nil {
		exitErr(err.Error())
	}
	scorer := scoring.NewScorer(p)
	if cfg.ScoringTemperature > 0 {
		scorer.Temperature = cfg.ScoringTemperature
	}

	req := prompt.Build(text, prompt.JobContext{
		Title:       *title,
		Company:     *company,
		Description: jobDescription,
		Kind:        prompt.ParseMode(*kind),
	})
	fmt.Fprintf(os.Stderr, "mode=%s provider=%s chars=%d\n", req.Mode, p.Name(), len([]rune(text)))

	events, err := scorer.Score(ctx, req)
	if err != nil {
		exitErr(err.Error())
	}
	var final *scoring.Result
	for ev := range events {
		switch {
		case ev.Err != nil:
			exitErr(ev.Err.Error())
		case ev.Final != nil:
			final = ev.Final
		case *verbose:
			line, _ := json.Marshal(ev.Partial)
			fmt.Fprintln(os.Stderr, string(line))
		}
	}
	if final == nil {
		exitErr("stream ended without a result")
	}

	pretty, err := json.MarshalIndent(final, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')
	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func mimeFromExt(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extract.MimePDF, nil
	case ".doc":
		return extract.MimeDOC, nil
	case ".docx":
		return extract.MimeDOCX, nil
	case ".txt", ".md":
		return extract.MimePlainText, nil
	default:
		return "", fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
