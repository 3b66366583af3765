package main

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/forno-labs/pizzabot/agent/contract"
	menux "github.com/forno-labs/pizzabot/agent/menu"
	orchestratorx "github.com/forno-labs/pizzabot/agent/orchestrator"
	promptx "github.com/forno-labs/pizzabot/agent/prompt"
	configx "github.com/forno-labs/pizzabot/pkg/config"
	groqx "github.com/forno-labs/pizzabot/pkg/groq"
	_ "github.com/forno-labs/pizzabot/pkg/logger/autoload"
	serverx "github.com/forno-labs/pizzabot/server"
)

func main() {
	groqCfg := configx.MustNew[groqx.Config]("GROQ")
	dbCfg := configx.MustNew[menux.DatabaseConfig]("DATABASE")
	serverCfg := configx.MustNew[serverx.Config]("BACKEND")

	model, err := groqx.NewClient(*groqCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize groq client")
	}

	store, catalog := buildMenuStore(*dbCfg)
	if catalog != nil {
		defer catalog.Close()
	}

	orchestrator, err := orchestratorx.New(store, model, promptx.SystemPrompt(), orchestratorx.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize orchestrator")
	}

	var pinger serverx.Pinger
	if catalog != nil {
		pinger = catalog
	}

	router := serverx.NewRouter(orchestrator, pinger, *serverCfg)
	log.Info().Str("addr", serverCfg.Addr()).Msg("starting server")
	if err := router.Run(serverCfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// buildMenuStore hydrates the catalog from Postgres when DATABASE_URL is
// set, seeding on first start; otherwise it serves the embedded catalog.
func buildMenuStore(cfg menux.DatabaseConfig) (contractx.MenuStore, *menux.PostgresCatalog) {
	if strings.TrimSpace(cfg.URL) == "" {
		log.Info().Msg("no database configured, serving embedded menu")
		return menux.NewStore(menux.SeedItems()), nil
	}

	catalog, err := menux.OpenPostgres(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := catalog.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create schema")
	}
	if err := catalog.Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed menu")
	}

	store, err := catalog.LoadStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load menu")
	}
	return store, catalog
}
