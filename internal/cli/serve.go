package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/patham9/YAN/internal/config"
	"github.com/patham9/YAN/internal/engine"
	"github.com/patham9/YAN/internal/narsese"
	"github.com/patham9/YAN/internal/server"
	"github.com/patham9/YAN/internal/store"
	"github.com/patham9/YAN/internal/trace"
)

var serveTick time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveTick, "tick", 0, "run a reasoning cycle at this interval (0 disables the clock)")
}

// session is an engine wired to its printer and, when enabled, to a journal
// run.
type session struct {
	engine *engine.Engine
	db     *store.DB
	run    *store.Run
}

func openSession(cfg config.Config, label string, forceJournal bool) (*session, error) {
	vocab := narsese.NewVocabulary()
	sinks := []trace.Sink{trace.NewPrinter(os.Stderr, vocab, cfg.Print.JSON)}

	s := &session{}
	if cfg.Journal.Enabled || forceJournal {
		path, err := journalPath(cfg)
		if err != nil {
			return nil, err
		}
		db, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		run, err := db.StartRun(label)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("start run: %w", err)
		}
		s.db, s.run = db, run
		sinks = append(sinks, trace.NewJournal(db, run.RunID, vocab))
		fmt.Fprintf(os.Stderr, "  journal: %s (run %s)\n", path, run.RunID)
	}

	s.engine = engine.New(cfg, vocab, trace.Multi(sinks...))
	return s, nil
}

func (s *session) runID() string {
	if s.run == nil {
		return ""
	}
	return s.run.RunID
}

// close finishes the journal run with the given outcome.
func (s *session) close(failed bool) {
	s.engine.Stop()
	if s.db == nil {
		return
	}
	status := "completed"
	if failed {
		status = "failed"
	}
	if err := s.db.FinishRun(s.run.RunID, status, s.engine.Time()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: finish run: %v\n", err)
	}
	s.db.Close()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess, err := openSession(cfg, "serve", false)
	if err != nil {
		return err
	}
	failed := false
	defer func() { sess.close(failed) }()

	if serveTick > 0 {
		sess.engine.StartClock(serveTick)
		fmt.Fprintf(os.Stderr, "  clock: one cycle every %s\n", serveTick)
	}

	srv := server.New(sess.engine, sess.db, sess.runID(), VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "yan serving on %s\n", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		failed = true
		return fmt.Errorf("server error: %w", err)
	}
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
