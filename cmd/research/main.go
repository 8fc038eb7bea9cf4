package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/Dentikka/deep-research/internal/governance"
	"github.com/Dentikka/deep-research/internal/observability"
	"github.com/Dentikka/deep-research/internal/planner"
	"github.com/Dentikka/deep-research/internal/report"
	"github.com/Dentikka/deep-research/internal/research"
	"github.com/Dentikka/deep-research/internal/search"
	"github.com/Dentikka/deep-research/internal/store"
	"github.com/Dentikka/deep-research/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "start":
		err = cmdStart(ctx, os.Args[2:])
	case "list":
		err = cmdList(os.Args[2:])
	case "resume":
		err = cmdResume(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  research start [-auto] [-config FILE] <query>
  research list [-status STATUS] [-config FILE]
  research resume [-auto] [-config FILE] <session-id>`)
}

func cmdStart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	auto := fs.Bool("auto", false, "run without interactive prompts")
	cfgPath := fs.String("config", "config.json", "path to config file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("start: missing query")
	}
	query := strings.Join(fs.Args(), " ")

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}

	orch, cleanup, err := buildOrchestrator(cfg, interactiveMode(cfg, *auto))
	if err != nil {
		return err
	}
	defer cleanup()

	s, err := orch.Start(ctx, query)
	if err != nil {
		return err
	}
	printOutcome(s)
	return nil
}

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "filter by status")
	cfgPath := fs.String("config", "config.json", "path to config file")
	fs.Parse(args)

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}

	cp, err := store.NewCheckpointStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer cp.Close()

	summaries, err := research.NewRegistry(cp).List(store.Status(*status))
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No saved research sessions")
		return nil
	}

	fmt.Printf("%-10s %-42s %-18s %s\n", "ID", "QUERY", "STATUS", "UPDATED")
	for _, sm := range summaries {
		q := sm.Query
		if len(q) > 40 {
			cut := 40
			for cut > 0 && !utf8.RuneStart(q[cut]) {
				cut--
			}
			q = q[:cut]
		}
		fmt.Printf("%-10s %-42s %-18s %s\n", sm.ID, q, sm.Status, sm.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func cmdResume(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("resume", flag.ExitOnError)
	auto := fs.Bool("auto", false, "run without interactive prompts")
	cfgPath := fs.String("config", "config.json", "path to config file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("resume: missing session id")
	}
	id := fs.Arg(0)

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}

	orch, cleanup, err := buildOrchestrator(cfg, interactiveMode(cfg, *auto))
	if err != nil {
		return err
	}
	defer cleanup()

	s, err := orch.Resume(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no session with id %s; run 'research list' to see saved sessions", id)
	}
	if err != nil {
		return err
	}
	printOutcome(s)
	return nil
}

func interactiveMode(cfg *config.Config, auto bool) bool {
	return cfg.UI.Interactive && !auto && observability.Interactive()
}

func printOutcome(s *store.Session) {
	switch s.Status {
	case store.StatusCompleted:
		fmt.Printf("\nResearch completed (%d sources, %d searches)\n", len(s.Findings), s.SearchCalls)
		if s.ReportPath != "" {
			fmt.Printf("Report: %s\n", s.ReportPath)
		}
	case store.StatusCancelled:
		fmt.Println("\nResearch cancelled")
	}
}

func buildOrchestrator(cfg *config.Config, interactive bool) (*research.Orchestrator, func(), error) {
	cp, err := store.NewCheckpointStore(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { cp.Close() }

	logger := observability.NewLogger()

	plan, err := buildPlanner(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var provider research.SearchProvider
	if cfg.Search.Provider == "tavily" && cfg.Search.TavilyAPIKey != "" {
		provider = search.NewTavily(cfg.Search.TavilyAPIKey, cfg.Search.SearchDepth, cfg.Search.MaxResults)
	} else {
		provider = search.NewDuckDuckGo(cfg.Search.MaxResults)
	}
	if cfg.Search.FetchContent {
		provider = search.NewEnricher(provider)
	}

	renderer := report.NewRenderer(cfg.Output.SavePath, cfg.Output.Format)

	gates := research.GateChain{
		research.PolicyGate{Engine: governance.NewDefaultPolicyEngine(), Log: logger},
	}

	console := observability.NewConsole()
	var policy research.TransitionPolicy = research.AutoPolicy{}
	if interactive {
		prompter := newConsolePrompter()
		gates = append(gates, prompter)
		policy = research.InteractivePolicy{Source: prompter}
	}

	orch := research.NewOrchestrator(cp, plan, provider, renderer, policy, gates, logger)
	orch.Console = console
	orch.Plan.Console = console
	return orch, cleanup, nil
}

func buildPlanner(cfg *config.Config, logger *observability.Logger) (research.Planner, error) {
	name, p := cfg.GetDefaultProvider()
	if name == "" {
		if cfg.App.PlanTemplates != "" {
			return planner.LoadTemplatePlanner(cfg.App.PlanTemplates)
		}
		return planner.NewTemplatePlanner(), nil
	}

	var model llms.Model
	var err error
	switch name {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(p.APIKey),
			openai.WithModel(p.Model),
		}
		if p.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(p.BaseURL))
		}
		model, err = openai.New(opts...)
	default:
		err = fmt.Errorf("provider %s is not supported", name)
	}
	if err != nil {
		return nil, err
	}
	return planner.NewLLMPlanner(model, logger), nil
}
