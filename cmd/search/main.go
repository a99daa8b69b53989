package main

import (
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/inkfold/inkfold/internal/config"
	"github.com/inkfold/inkfold/internal/search"
	"github.com/inkfold/inkfold/internal/searchapi"
	"github.com/inkfold/inkfold/internal/tui"
	"github.com/inkfold/inkfold/pkg/utils"
)

var (
	initialQuery = flag.String("query", "", "Query to search for immediately")
	cacheSize    = flag.Int("cache", 0, "Size of the client-side response cache (0 disables it)")
)

func main() {
	flag.Parse()

	_ = godotenv.Load()

	logger := utils.GetLogger()

	// The terminal belongs to the TUI; logs go to a file or nowhere.
	if path := os.Getenv("LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			logger.SetOutput(f)
			defer f.Close()
		}
	} else {
		logger.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateSearch(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid search configuration: %v\n", err)
		os.Exit(1)
	}

	address, err := url.Parse(cfg.Site.BaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid site address: %v\n", err)
		os.Exit(1)
	}

	location := search.NewURLLocation(address)
	if *initialQuery != "" {
		location.Write(*initialQuery)
	}

	var fetcher searchapi.Fetcher = searchapi.NewClient(cfg.Search.BaseURL, logger)
	if *cacheSize > 0 {
		fetcher, err = searchapi.NewCachingFetcher(fetcher, *cacheSize, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to set up response cache: %v\n", err)
			os.Exit(1)
		}
	}

	var program *tea.Program
	controller := search.NewController(fetcher, location,
		search.WithLogger(logger),
		search.WithNotify(func() {
			// Send must not block the goroutine that produced the change;
			// notify can fire from inside the program's own update loop.
			if program != nil {
				go program.Send(tui.RefreshMsg{})
			}
		}),
	)
	defer controller.Close()

	model := tui.NewModel(controller, location)
	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
