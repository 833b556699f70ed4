// Insight is the analytics-assistant backend: it wires the Catalog,
// Embedding Index, LLM Client, Voice Client, Planner, Analyzer, Cluster
// Predictor, and Session Orchestrator into one HTTP API server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/opencity/insight/pkg/analyzer"
	"github.com/opencity/insight/pkg/api"
	"github.com/opencity/insight/pkg/artifact"
	"github.com/opencity/insight/pkg/catalog"
	"github.com/opencity/insight/pkg/cleanup"
	"github.com/opencity/insight/pkg/cluster"
	"github.com/opencity/insight/pkg/config"
	"github.com/opencity/insight/pkg/database"
	"github.com/opencity/insight/pkg/embedding"
	"github.com/opencity/insight/pkg/events"
	"github.com/opencity/insight/pkg/llmclient"
	"github.com/opencity/insight/pkg/planner"
	"github.com/opencity/insight/pkg/report"
	"github.com/opencity/insight/pkg/session"
	"github.com/opencity/insight/pkg/voice"
)

// exitConfigError and exitStartupFailure are the process exit codes for
// the two fatal-but-distinct startup failure classes.
const (
	exitConfigError     = 1
	exitStartupFailure  = 2
	embeddingLoadBudget = 60 * time.Second
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
		log.Printf("continuing with existing environment variables")
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(exitConfigError)
	}

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(exitConfigError)
	}

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		log.Printf("unrecoverable startup failure: database unreachable: %v", err)
		os.Exit(exitStartupFailure)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Printf("error closing database client: %v", err)
		}
	}()
	log.Println("connected to database")

	cat, err := catalog.New(cfg.Catalog)
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(exitConfigError)
	}
	log.Printf("loaded catalog: %d products", cat.Len())

	llm, err := llmclient.New(cfg.LLM)
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(exitConfigError)
	}
	log.Printf("LLM client ready: backend=%s model=%s", cfg.LLM.Backend, cfg.LLM.Model)

	loadCtx, cancel := context.WithTimeout(ctx, embeddingLoadBudget)
	index, err := embedding.LoadIndex(loadCtx, dbClient.DB(), cfg.EmbeddingDim)
	cancel()
	if err != nil {
		log.Printf("unrecoverable startup failure: embedding index unreachable: %v", err)
		os.Exit(exitStartupFailure)
	}
	log.Println("loaded embedding index")

	artifactStore := artifact.New(cfg.ArtifactDir, cfg.SummaryPreviewRows)

	var predictor *cluster.Predictor
	if cfg.Embedding.APIKey != "" {
		embedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding.APIKey, cfg.Embedding.BaseURL, cfg.Embedding.Model, cfg.EmbeddingDim)
		if err != nil {
			log.Printf("configuration error: %v", err)
			os.Exit(exitConfigError)
		}
		predictor = cluster.New(llm, embedder, index)
		log.Println("cluster predictor ready")
	} else {
		log.Println("no embedding credentials configured, cluster predictor disabled")
	}

	sampleContext := sampleContextFor(cat, artifactStore)

	pl := planner.New(llm, cat, sampleContext)
	an := analyzer.New(llm, cfg.LLMInputBudget)
	visit := cluster.NewVisit(llm)
	reportBldr := report.New(artifactStore, cat)

	audit := events.NewAuditStore(dbClient.DB())

	retention := cleanup.NewService(&cfg.Retention, dbClient.DB())
	retention.Start(ctx)
	defer retention.Stop()

	orchestrator := session.New(pl, an, predictor, artifactStore, cat, llm, audit)
	sessions := session.NewManager(orchestrator)

	voiceClient, voiceEnabled, err := voice.New(ctx, cfg.Voice)
	if err != nil {
		log.Printf("warning: voice client init failed, voice endpoints disabled: %v", err)
		voiceClient = nil
	} else if voiceEnabled {
		log.Println("voice client ready")
	} else {
		log.Println("no voice credentials configured, voice endpoints disabled")
	}

	server := api.NewServer(cfg, dbClient, sessions, predictor, visit, reportBldr, voiceClient, audit)

	log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
	if err := server.Start(":" + cfg.HTTPPort); err != nil {
		log.Printf("HTTP server stopped: %v", err)
		os.Exit(exitStartupFailure)
	}
}

// sampleContextFor renders a short preview of the first catalog product's
// Summary to ground every Planner prompt in the data's actual shape. A
// missing or unreadable first artifact degrades to the catalog's own
// description rather than blocking startup.
func sampleContextFor(cat *catalog.Catalog, store *artifact.Store) string {
	products := cat.All()
	if len(products) == 0 {
		return ""
	}
	summary, err := store.LoadSummary(products[0])
	if err != nil {
		return cat.DescribeForPlanner()
	}
	return summary.Text
}
