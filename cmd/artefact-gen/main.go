// Command artefact-gen generates a diegetic artefact from project fields on
// the command line and saves the result as markdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/diegetic/artefact"
	"github.com/diegetic/artefact/config"
	"github.com/diegetic/artefact/images"
	"github.com/diegetic/artefact/provider"
	"github.com/diegetic/artefact/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, artefact.ErrorString(err))
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; keys may come from the environment directly.
	_ = godotenv.Load()

	var (
		configPath   = flag.String("config", "model_config.json", "provider configuration file")
		promptsPath  = flag.String("prompts", "prompt_instructions.json", "prompt instructions file")
		outDir       = flag.String("out", "artefacts", "directory for saved artefacts")
		category     = flag.String("category", "Newspaper article", "artefact category")
		description  = flag.String("description", "", "project description")
		location     = flag.String("location", "", "project location")
		date         = flag.String("date", "", "project date")
		personas     = flag.String("personas", "", "personas involved")
		themes       = flag.String("themes", "", "themes to explore")
		temperature  = flag.Float64("temperature", -1, "sampling temperature override (negative: use config)")
		imageList    = flag.String("images", "", "comma-separated image paths for vision generation")
		listArtefact = flag.Bool("list", false, "list saved artefacts and exit")
		verbose      = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	st, err := store.New(*outDir)
	if err != nil {
		return err
	}

	if *listArtefact {
		return listSaved(st)
	}

	if *description == "" {
		return fmt.Errorf("a project description is required (use -description)")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("falling back to default configuration", "error", err)
		cfg = config.Default()
	}
	mc, err := cfg.Active()
	if err != nil {
		return err
	}

	req := &artefact.GenerationRequest{
		Fields: artefact.ProjectFields{
			Description: *description,
			Location:    *location,
			Date:        *date,
			Personas:    *personas,
			Themes:      *themes,
		},
		Category:           *category,
		ClosingInstruction: config.LoadClosingInstruction(*promptsPath),
	}
	if *temperature >= 0 {
		req.Temperature = artefact.Float64Ptr(*temperature)
	}

	if *imageList != "" {
		uploads, err := readUploads(strings.Split(*imageList, ","))
		if err != nil {
			return err
		}
		opts := images.DefaultOptions()
		opts.Logger = logger
		req.Images = images.Prepare(uploads, opts)
	}

	gen := artefact.NewGenerator(provider.DefaultRegistry(), artefact.WithLogger(logger))
	result, err := gen.Generate(context.Background(), &mc, req)
	if err != nil {
		return err
	}

	effectiveTemp := mc.Temperature
	if req.Temperature != nil {
		effectiveTemp = *req.Temperature
	}
	path, err := st.Save(req, result, effectiveTemp)
	if err != nil {
		return err
	}

	if result.Reasoning != "" {
		fmt.Fprintf(os.Stderr, "--- reasoning ---\n%s\n-----------------\n", result.Reasoning)
	}
	fmt.Println(result.Content)
	fmt.Fprintf(os.Stderr, "saved to %s\n", path)
	return nil
}

func listSaved(st *store.Store) error {
	entries, err := st.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no saved artefacts")
		return nil
	}
	for _, e := range entries {
		project := e.Fields.Description
		if len(project) > 60 {
			project = project[:60] + "..."
		}
		fmt.Printf("%s\t%s\t%s/%s\t%d bytes\t%s\n",
			e.Created.Format("2006-01-02 15:04"), project, e.Provider, e.Model, e.Size, filepath.Base(e.Path))
	}
	return nil
}

func readUploads(paths []string) ([]images.Upload, error) {
	uploads := make([]images.Upload, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", p, err)
		}
		uploads = append(uploads, images.Upload{Name: filepath.Base(p), Data: data})
	}
	return uploads, nil
}
