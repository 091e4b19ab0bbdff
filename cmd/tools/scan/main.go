// Command scan runs one scan from the terminal and renders the qualified
// opportunities plus summary statistics as tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/singh-automation/winscope/internal/config"
	"github.com/singh-automation/winscope/internal/qualify"
	"github.com/singh-automation/winscope/internal/scan"
)

func main() {
	days := flag.Int("days", 30, "posted-date window in days")
	minScore := flag.Int("min-score", 50, "drop scored records below this threshold (0 disables)")
	limit := flag.Int("limit", 50, "cap the rendered result set (0 disables)")
	terms := flag.String("terms", "", "comma-separated search terms (default: profile keywords)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall scan deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	profile, err := qualify.LoadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatalf("Failed to load capability profile: %v", err)
	}

	scanner, err := scan.NewScanner(profile, cfg.SAMAPIKey)
	if err != nil {
		log.Fatalf("Failed to build scanner: %v", err)
	}

	params := scan.Params{
		WindowDays: *days,
		MinScore:   *minScore,
		Limit:      *limit,
	}
	if *terms != "" {
		for _, term := range strings.Split(*terms, ",") {
			if term = strings.TrimSpace(term); term != "" {
				params.Terms = append(params.Terms, term)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := scanner.Scan(ctx, params)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	renderOpportunities(result)
	renderStats(result)
	renderSources(result)
}

func renderOpportunities(result *scan.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Score", "Verdict", "Type", "Title", "Agency", "Posted", "Value"})

	for _, opp := range result.Opportunities {
		score := "-"
		verdict := "-"
		if opp.Verdict != nil {
			verdict = string(opp.Verdict.Status)
			if opp.Verdict.Score != nil {
				score = fmt.Sprintf("%d", *opp.Verdict.Score)
			}
		}
		value := "-"
		if opp.Value != nil {
			value = fmt.Sprintf("$%.0f", *opp.Value)
		}
		t.AppendRow(table.Row{
			score, verdict, opp.Type,
			scan.TruncateText(opp.Title, 60),
			scan.TruncateText(opp.Agency, 30),
			opp.PostedDate, value,
		})
	}
	t.Render()
}

func renderStats(result *scan.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"Total", result.Stats.Total})
	t.AppendRow(table.Row{"Portals", result.Stats.PortalCount})
	t.AppendRow(table.Row{"High score (80+)", result.Stats.HighScoreCount})
	t.AppendRow(table.Row{"Qualified (65+)", result.Stats.QualifiedCount})
	t.AppendRow(table.Row{"Total value", fmt.Sprintf("$%.0f", result.Stats.TotalValue)})
	for status, count := range result.Stats.ByStatus {
		t.AppendRow(table.Row{"Verdict: " + status, count})
	}
	for oppType, count := range result.Stats.ByType {
		t.AppendRow(table.Row{"Type: " + oppType, count})
	}
	t.Render()
}

func renderSources(result *scan.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Source", "Records", "Status"})
	for _, src := range result.Sources {
		status := "ok"
		if src.Degraded {
			status = "degraded: " + src.Error
		}
		t.AppendRow(table.Row{src.Source, src.Count, status})
	}
	t.Render()
}
