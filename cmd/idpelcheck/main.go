package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/locvowork/idpel_checker/internal/bootstrap"
	"github.com/locvowork/idpel_checker/internal/domain"
	"github.com/locvowork/idpel_checker/internal/logger"
	"github.com/locvowork/idpel_checker/internal/service"
)

func main() {
	// Define flags
	action := flag.String("action", "check", "Action to perform: check, history")
	mode := flag.String("mode", "single", "Comparison mode: single (first sheet) or multi (target sheets)")
	oldPath := flag.String("old", "", "Path to the previous snapshot (.xlsx)")
	newPath := flag.String("new", "", "Path to the current snapshot (.xlsx)")
	layouts := flag.String("layout", "", "Comma separated reports to write: single_flat, status_column, separate_sheets, multi_group_bundle, new_only")
	outDir := flag.String("out", "", "Output directory (overrides OUTPUT_DIR)")
	envFile := flag.String("env", "", "Optional .env file")

	flag.Parse()

	ctx := context.Background()

	app := bootstrap.NewApp()
	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	if err := app.Initialize(ctx, envFiles...); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	switch *action {
	case "check":
		dir := app.OutputDir
		if *outDir != "" {
			dir = *outDir
		}
		os.Exit(performCheck(ctx, app, *mode, *oldPath, *newPath, *layouts, dir))

	case "history":
		os.Exit(performHistory(ctx, app))

	default:
		fmt.Printf("Unknown action: %s\n", *action)
		flag.PrintDefaults()
		os.Exit(2)
	}
}

func performCheck(ctx context.Context, app *bootstrap.App, mode, oldPath, newPath, layoutList, dir string) int {
	if oldPath == "" || newPath == "" {
		fmt.Println("Both -old and -new are required")
		return 2
	}

	// Validate layouts before reading anything
	var layouts []service.Layout
	for _, name := range strings.Split(layoutList, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		l, err := service.ParseLayout(name)
		if err != nil {
			return report(ctx, err)
		}
		layouts = append(layouts, l)
	}

	oldFile, err := os.Open(oldPath)
	if err != nil {
		return report(ctx, &domain.ValidationError{Reason: err.Error()})
	}
	defer oldFile.Close()
	newFile, err := os.Open(newPath)
	if err != nil {
		return report(ctx, &domain.ValidationError{Reason: err.Error()})
	}
	defer newFile.Close()

	oldSrc := service.Source{Name: oldFile.Name(), Reader: oldFile}
	newSrc := service.Source{Name: newFile.Name(), Reader: newFile}

	var result *service.CheckReport
	switch mode {
	case "single":
		result, err = app.Checker.CheckSingle(ctx, oldSrc, newSrc)
	case "multi":
		result, err = app.Checker.CheckMulti(ctx, oldSrc, newSrc)
	default:
		err = &domain.ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
	if err != nil {
		return report(ctx, err)
	}
	printSummary(result)

	code := 0
	for _, l := range layouts {
		path, art, err := app.Checker.Download(ctx, result, l, dir)
		if err != nil {
			// an empty result for one report does not stop the others
			if c := report(ctx, err); c > code {
				code = c
			}
			continue
		}
		note := ""
		if art.Degraded {
			note = " (plain fallback)"
		}
		fmt.Printf("Report written: %s%s\n", path, note)
	}
	return code
}

func printSummary(r *service.CheckReport) {
	processed, fresh := domain.Totals(r.Outcome)
	fmt.Printf("Old: %s\nNew: %s\n", r.SourceNameOld, r.SourceNameNew)
	fmt.Printf("Total data: %d, new: %d, existing: %d (%s new)\n",
		processed, fresh, processed-fresh, service.Percentage(fresh, processed))

	if m, ok := r.Outcome.(*domain.MultiGroupDiffResult); ok {
		for _, name := range m.Targets {
			g := m.Group(name)
			if g.Status == domain.GroupStatusEmpty {
				fmt.Printf("  %-6s empty\n", name)
				continue
			}
			fmt.Printf("  %-6s %d total, %d new (%s)\n", name, g.TotalAll, g.TotalNew, service.Percentage(g.TotalNew, g.TotalAll))
		}
	}
	fmt.Printf("Processing time: %.2fs\n", r.ProcessingTime.Seconds())
}

func performHistory(ctx context.Context, app *bootstrap.App) int {
	entries, err := app.Checker.History(ctx)
	if err != nil {
		return report(ctx, err)
	}
	if len(entries) == 0 {
		fmt.Println("No runs recorded yet.")
		return 0
	}
	for _, e := range entries {
		fmt.Printf("%s  %s -> %s  %d processed, %d new, %.2fs %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.SourceNameOld, e.SourceNameNew,
			e.TotalProcessed, e.NewDataFound, e.ProcessingTimeSeconds, strings.Join(e.ProcessedGroupNames, ","))
	}
	return 0
}

// report prints err for the user and maps its status to an exit code.
func report(ctx context.Context, err error) int {
	status := domain.StatusOf(err)
	switch status {
	case domain.StatusEmptyResult:
		fmt.Printf("Nothing to write: %v\n", err)
		return 0
	case domain.StatusValidationError:
		fmt.Printf("Invalid input: %v\n", err)
		return 2
	}
	logger.ErrorLog(ctx, "%s: %v", status, err)
	fmt.Printf("Failed: %v\n", err)
	return 1
}
