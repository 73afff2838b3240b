package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/goliatone/go-formlife"
	"github.com/goliatone/go-formlife/pkg/config"
	"github.com/goliatone/go-formlife/pkg/lifecycle"
	"github.com/goliatone/go-formlife/pkg/model"
	pkgopenapi "github.com/goliatone/go-formlife/pkg/openapi"
	"github.com/goliatone/go-formlife/pkg/terminal"
)

func main() {
	configPath := flag.String("config", "", "settings YAML file")
	formsDir := flag.String("forms", "", "directory of form definitions (YAML or JSON)")
	formID := flag.String("form", "", "form ID to run from -forms")
	source := flag.String("source", "", "OpenAPI document path")
	opID := flag.String("operation", "", "operation ID to build the form from")
	output := flag.String("output", "", "write the submitted values to this file (stdout if empty)")
	locale := flag.String("locale", "", "message locale (overrides settings)")
	debug := flag.Bool("debug", false, "enable debug logging on stderr")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	settings := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		settings = loaded
	}
	if *locale != "" {
		settings.Locale = *locale
	}

	logger := slog.New(slog.DiscardHandler)
	if *debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	form, err := loadForm(ctx, *formsDir, *formID, *source, *opID)
	if err != nil {
		log.Fatalf("Failed to load form: %v", err)
	}

	var session *terminal.Session
	ctrl, err := formlife.NewController(form, lifecycle.Hooks{
		Submit: func(_ context.Context, c *lifecycle.Controller) (lifecycle.Result, error) {
			payload, err := json.MarshalIndent(c.Snapshot().Map(), "", "  ")
			if err != nil {
				return lifecycle.Result{}, err
			}
			if *output != "" {
				if err := os.WriteFile(*output, payload, 0o644); err != nil {
					return lifecycle.Result{}, err
				}
				return lifecycle.Result{Halt: true, Data: *output}, nil
			}
			fmt.Println(string(payload))
			return lifecycle.Result{Halt: true}, nil
		},
	}, settings,
		lifecycle.WithLogger(logger),
		lifecycle.WithCapabilities(lifecycle.DelayedRequestNotifier{
			OnDelay: func(string) {
				if session != nil {
					_ = session.Info(ctx, "Still working...")
				}
			},
		}),
	)
	if err != nil {
		log.Fatalf("Failed to build controller: %v", err)
	}
	defer ctrl.Close()

	session, err = formlife.NewSession(ctrl, terminal.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	result, err := session.Run(ctx)
	if err != nil {
		if errors.Is(err, terminal.ErrAborted) {
			os.Exit(130)
		}
		log.Fatalf("Form not submitted: %v", err)
	}
	if path, ok := result.Data.(string); ok {
		fmt.Printf("Values written to %s\n", path)
	}
}

func loadForm(ctx context.Context, formsDir, formID, source, opID string) (model.Form, error) {
	switch {
	case source != "":
		if opID == "" {
			return model.Form{}, errors.New("-operation is required with -source")
		}
		return formlife.LoadForm(ctx, pkgopenapi.SourceFromFile(source), opID)
	case formsDir != "":
		store, err := model.LoadFS(os.DirFS(filepath.Clean(formsDir)))
		if err != nil {
			return model.Form{}, err
		}
		if formID == "" {
			ids := store.IDs()
			if len(ids) != 1 {
				return model.Form{}, fmt.Errorf("-form is required, available: %v", ids)
			}
			formID = ids[0]
		}
		form, ok := store.Form(formID)
		if !ok {
			return model.Form{}, fmt.Errorf("form %q not found", formID)
		}
		return form, nil
	default:
		return model.Form{}, errors.New("either -source or -forms is required")
	}
}
