package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/huddlekeeper/internal/config"
	"github.com/dmitrijs2005/huddlekeeper/internal/export"
	"github.com/dmitrijs2005/huddlekeeper/internal/huddle"
	"github.com/dmitrijs2005/huddlekeeper/internal/logging"
	"github.com/dmitrijs2005/huddlekeeper/internal/securestore"
	"github.com/dmitrijs2005/huddlekeeper/internal/storage"
)

const uploadTimeout = 30 * time.Second

// Vault is the part of the secure store the terminal drives directly.
type Vault interface {
	IsConfigured(ctx context.Context) (bool, error)
	State(ctx context.Context) (securestore.State, error)
	Setup(ctx context.Context, passcode []byte) error
	Verify(ctx context.Context, passcode []byte) (bool, error)
	ChangePasscode(ctx context.Context, oldPasscode, newPasscode []byte) (bool, error)
	Lock()
	ClearAll(ctx context.Context) error
}

type App struct {
	cfg      *config.Config
	db       *sql.DB
	vault    Vault
	huddle   huddle.Service
	exporter *export.Exporter
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time

	lastActivity atomic.Int64
	lockAfter    atomic.Int64
}

// activityReader marks the session active whenever input arrives, including
// answers to prompts inside a command.
type activityReader struct {
	r     io.Reader
	touch func()
}

func (r *activityReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.touch()
	}
	return n, err
}

// syncWriter lets the idle watcher print while the REPL is prompting.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// NewApp opens the database named in cfg and wires the store, the huddle
// service and the exporter around it.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	store := securestore.New(db, log, huddle.RecordDefaults(time.Now))
	svc := huddle.NewService(store, log, time.Now)
	exp := export.New(svc, cfg.ExportDir, uploader, log)

	a := newApp(cfg, store, svc, exp, log, in, out, time.Now)
	a.db = db
	return a, nil
}

func newApp(cfg *config.Config, vault Vault, svc huddle.Service, exp *export.Exporter,
	log logging.Logger, in io.Reader, out io.Writer, now func() time.Time) *App {
	a := &App{
		cfg:      cfg,
		vault:    vault,
		huddle:   svc,
		exporter: exp,
		log:      log.With("component", "cli"),
		out:      &syncWriter{w: out},
		now:      now,
	}
	a.reader = bufio.NewReader(&activityReader{r: in, touch: a.touch})
	a.touch()
	a.setLockAfter(huddle.DefaultSettings().LockAfter())
	return a
}

// newUploader picks the bucket when one is configured, then the plain
// HTTP target. It returns a nil Uploader when exports stay local.
func newUploader(ctx context.Context, cfg *config.Config) (export.Uploader, error) {
	if !cfg.UploadEnabled() {
		return nil, nil
	}
	switch {
	case cfg.S3Bucket != "":
		u, err := export.NewS3Uploader(ctx, export.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Prefix:       cfg.S3Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 uploader: %w", err)
		}
		return u, nil
	default:
		return export.NewHTTPUploader(cfg.UploadURL, &http.Client{Timeout: uploadTimeout}), nil
	}
}

// Close releases the database. The store is locked first so the key does
// not outlive the session.
func (a *App) Close() error {
	a.vault.Lock()
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Run authenticates the user, opens today's huddle and serves commands
// until exit, EOF or ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	a.println("HuddleKeeper - evening huddle review. Type 'help' for commands.")

	if err := a.authenticate(ctx); err != nil {
		return err
	}
	if err := a.openHuddle(ctx); err != nil {
		return err
	}
	a.log.Info(ctx, "session started")

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartIdleWatcher(watchCtx, a.cfg.IdleCheckInterval)

	err := a.repl(ctx)
	if errors.Is(err, errExit) || errors.Is(err, io.EOF) {
		a.log.Info(ctx, "session ended")
		return nil
	}
	return err
}

func (a *App) openHuddle(ctx context.Context) error {
	if err := a.huddle.Open(ctx); err != nil {
		return fmt.Errorf("open huddle: %w", err)
	}
	a.setLockAfter(a.huddle.Settings().LockAfter())
	a.touch()
	return nil
}

func (a *App) touch() {
	a.lastActivity.Store(a.now().UnixNano())
}

func (a *App) setLockAfter(d time.Duration) {
	a.lockAfter.Store(int64(d))
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
