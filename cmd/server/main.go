package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "partymap/internal/adapters/email"
	web "partymap/internal/adapters/http"
	"partymap/internal/adapters/storage"
	accountStore "partymap/internal/adapters/storage/account"
	eventStore "partymap/internal/adapters/storage/event"
	outboxStore "partymap/internal/adapters/storage/outbox"
	"partymap/internal/application/orchestrators"
	"partymap/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// outboxInterval is how often the background loop drains the email outbox.
const outboxInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// Open the database with WAL mode, foreign keys, and busy timeout
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("Database initialized successfully!")

	// Wrap the DB with slow-query logging
	timedDB := storage.NewTimedDB(db)

	stores := &web.Stores{
		EventStore:   eventStore.NewSQLiteStore(timedDB),
		AccountStore: accountStore.NewSQLiteStore(timedDB),
		OutboxStore:  outboxStore.NewSQLiteStore(timedDB),
	}

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendAPIKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		log.Println("Email sender configured (noop — set PARTYMAP_RESEND_KEY for real delivery)")
	}

	// Background delivery of queued invitation emails
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orchestrators.RunOutboxLoop(ctx, outboxInterval, orchestrators.RetryOutboxDeps{
		OutboxStore: stores.OutboxStore,
		Sender:      sender,
		Now:         time.Now,
	})

	mux := web.NewMux(cfg.StaticDir, stores)

	log.Printf("Partymap %s starting on %s (env=%s)", version, cfg.Addr, cfg.Env)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
