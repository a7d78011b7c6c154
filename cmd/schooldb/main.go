package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"schooldb/internal/backup"
	"schooldb/internal/codec"
	"schooldb/internal/config"
	"schooldb/internal/service"
	"schooldb/internal/slot"
	"schooldb/internal/snapshot"
	"schooldb/internal/watcher"

	"github.com/joho/godotenv"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "config file path (default: search $SCHOOLDB_CONFIG, ./schooldb.yaml, XDG)")
	exportName := flag.String("export", "", "export the binary snapshot under this file name")
	importPath := flag.String("import", "", "replace the store with this binary snapshot")
	schema := flag.Bool("schema", false, "export the schema script")
	script := flag.Bool("script", false, "export a data script")
	jsonDump := flag.Bool("json", false, "export all tables as JSON")
	download := flag.Bool("download", false, "refresh and export the full reconstruction script")
	takeBackup := flag.Bool("backup", false, "write a timestamped backup")
	run := flag.Bool("run", false, "keep running: auto-backup and script refresh until interrupted")
	initConfig := flag.Bool("init-config", false, "write a default config file to -config or the user config dir, then exit")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if *initConfig {
		path, err := config.Init(*configPath)
		if err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		log.Printf("Config written: %s", path)
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if path != "" {
		log.Printf("Config loaded: %s", path)
	}
	log.Println(cfg.Summary())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Durable slots hold the snapshot and the cached script
	slots, closeSlots, err := openSlots(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeSlots()

	store := service.NewSchoolService(snapshot.New(slots), service.NewEventBus())
	report, err := store.Open(ctx)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()
	if report.Diagnostic != nil {
		log.Printf("Store started fresh: %v", report.Diagnostic)
	}

	selectPath := *importPath
	if selectPath == "" {
		selectPath = cfg.Backup.ImportPath
	}
	pipeline := backup.NewPipeline(store, slots,
		&backup.DirDeliverer{Dir: cfg.Backup.Dir},
		&backup.FileSelector{Path: selectPath})
	pipeline.SetRefreshOnEveryChange(cfg.Scripts.RefreshOnEveryChange)

	if *importPath != "" {
		outcome, err := pipeline.Import(ctx)
		if err != nil {
			log.Fatalf("Import %s: %s: %v", *importPath, outcome, err)
		}
		log.Printf("Import %s: %s", *importPath, outcome)
	}

	type action struct {
		enabled bool
		name    string
		fn      func(context.Context) (string, error)
	}
	actions := []action{
		{*exportName != "", "export", func(ctx context.Context) (string, error) {
			return pipeline.ExportBinary(ctx, *exportName)
		}},
		{*schema, "schema script", pipeline.ExportSchemaScript},
		{*script, "data script", pipeline.ExportDataScript},
		{*jsonDump, "json export", func(ctx context.Context) (string, error) {
			return pipeline.ExportDump(ctx, codec.NewJSONCodec())
		}},
		{*download, "full script", func(ctx context.Context) (string, error) {
			if _, err := pipeline.RefreshScript(ctx); err != nil {
				return "", err
			}
			return pipeline.DownloadScript(ctx)
		}},
		{*takeBackup, "backup", pipeline.CreateBackup},
	}
	for _, a := range actions {
		if !a.enabled {
			continue
		}
		name, err := a.fn(ctx)
		if err != nil {
			log.Fatalf("Failed to write %s: %v", a.name, err)
		}
		log.Printf("Wrote %s: %s", a.name, name)
	}

	if !*run {
		return
	}

	pipeline.Watch(ctx)
	applyBackupSettings(pipeline, cfg)

	if path != "" {
		w := watcher.New(path, func(next *config.Config) {
			pipeline.SetDeliverer(&backup.DirDeliverer{Dir: next.Backup.Dir})
			pipeline.SetRefreshOnEveryChange(next.Scripts.RefreshOnEveryChange)
			applyBackupSettings(pipeline, next)
		})
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Config watcher stopped: %v", err)
			}
		}()
	}

	log.Println("Running, press Ctrl+C to stop")
	<-ctx.Done()

	pipeline.StopAutoBackup()
	if err := store.Save(context.Background()); err != nil {
		log.Printf("Final save failed: %v", err)
	}
	log.Println("Stopped")
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func openSlots(ctx context.Context, cfg *config.Config) (slot.Store, func(), error) {
	if cfg.Storage.InMemory() {
		log.Println("Storage in memory, nothing will survive exit")
		return slot.NewMemory(), func() {}, nil
	}

	f, err := slot.OpenFile(ctx, cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Storage opened: %s", cfg.Storage.Path)
	return f, func() { f.Close() }, nil
}

func applyBackupSettings(p *backup.Pipeline, cfg *config.Config) {
	if !cfg.Backup.AutoEnabled() {
		p.StopAutoBackup()
		return
	}
	if _, err := p.StartAutoBackup(cfg.Backup.Interval.Duration()); err != nil {
		log.Printf("Failed to start auto-backup: %v", err)
	}
}
