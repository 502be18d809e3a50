package daemon

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mutuelle-network/mutuelle/internal/api"
	"github.com/mutuelle-network/mutuelle/internal/app/ledger"
	"github.com/mutuelle-network/mutuelle/internal/infra/sqlite"
)

// Daemon is the long-running mutuelle process: HTTP API plus scheduled
// sweeps over one sqlite store.
type Daemon struct {
	cfg  Config
	log  *logrus.Logger
	db   *sqlite.DB
	svc  *ledger.Service
	cron *cron.Cron
	http *http.Server
}

// New builds a daemon from configuration.
func New(cfg Config, log *logrus.Logger) (*Daemon, error) {
	if err := os.MkdirAll(cfg.Database.Path, 0o755); err != nil {
		return nil, err
	}
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	params, err := cfg.Params()
	if err != nil {
		db.Close()
		return nil, err
	}

	svc := ledger.New(db, params, log)
	srv := api.NewServer(svc)
	if cfg.API.Metrics {
		srv.EnableMetrics()
	}

	return &Daemon{
		cfg: cfg,
		log: log,
		db:  db,
		svc: svc,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Service exposes the ledger service, used by the CLI commands.
func (d *Daemon) Service() *ledger.Service { return d.svc }

// Run starts the sweeps and serves HTTP until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	d.cron = cron.New()
	if spec := d.cfg.Schedule.StatusSync; spec != "" {
		if _, err := d.cron.AddFunc(spec, d.statusSweep); err != nil {
			return err
		}
	}
	if spec := d.cfg.Schedule.Financial; spec != "" {
		if _, err := d.cron.AddFunc(spec, d.financialSweep); err != nil {
			return err
		}
	}
	d.cron.Start()
	defer d.cron.Stop()

	errc := make(chan error, 1)
	go func() {
		d.log.WithField("addr", d.cfg.Addr()).Info("mutuelle api listening")
		errc <- d.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return d.db.Close()
	case err := <-errc:
		d.db.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (d *Daemon) statusSweep() {
	if err := d.svc.SynchronizeStatuses(context.Background()); err != nil {
		d.log.WithError(err).Error("status sweep failed")
	}
}

func (d *Daemon) financialSweep() {
	changed, err := d.svc.ReconcileLateLoans(context.Background())
	if err != nil {
		d.log.WithError(err).Error("financial sweep failed")
		return
	}
	if changed > 0 {
		d.log.WithField("loans", changed).Info("late loans reconciled")
	}
}
