package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"docuchat/internal/ai"
	"docuchat/internal/app"
	"docuchat/internal/chunker"
	"docuchat/internal/config"
	"docuchat/internal/model"
	sqliteClient "docuchat/internal/platform/sqlite"
	"docuchat/internal/session"
	"docuchat/internal/upload"
	"docuchat/internal/vectorstore"
)

type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Uploader *upload.Uploader
	Ingest   *app.IngestService
	Chat     *app.ChatService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	// The index must live on writable local storage; running in a degraded
	// mode without durability is worse than not starting.
	if err := ensureWritableDir(cfg.Index.PersistDir); err != nil {
		return nil, fmt.Errorf("index storage unavailable: %w", err)
	}

	db, err := sqliteClient.New(ctx, filepath.Join(cfg.Index.PersistDir, "vectors.db"))
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.VectorRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate vector records failed: %w", err)
	}

	uploader, err := upload.NewUploader(cfg.Upload.Dir, int64(cfg.Upload.MaxSizeMB)<<20)
	if err != nil {
		return nil, err
	}

	client := ai.NewOpenAICompatibleClient(ai.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
	})

	store := vectorstore.New(db, client, cfg.Index.Collection)
	ck := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	sessions := session.NewStore()

	return &App{
		Config:    cfg,
		DB:        db,
		Uploader:  uploader,
		Ingest:    app.NewIngestService(store, ck, client),
		Chat:      app.NewChatService(sessions, store, client, cfg.RAG.TopK),
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ensureWritableDir creates the directory and probes it with a real write,
// since permission bits alone do not prove writability.
func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %q failed: %w", dir, err)
	}
	probe := filepath.Join(dir, ".write-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("directory %q is not writable: %w", dir, err)
	}
	return os.Remove(probe)
}
