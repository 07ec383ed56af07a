package commands

import (
	"fmt"
	"time"

	"github.com/bokfor-dev/bokfor/internal/closing"
	"github.com/bokfor-dev/bokfor/internal/config"
	"github.com/bokfor-dev/bokfor/internal/consolidation"
	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/sie"
	"github.com/bokfor-dev/bokfor/internal/store"
)

const dateFormat = "2006-01-02"

// env bundles the opened config, database and services for one command run.
type env struct {
	cfg *config.Config
	db  *store.DB
}

func openEnv(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db}, nil
}

func (e *env) close() {
	_ = e.db.Close()
}

func (e *env) ledger() *ledger.Service {
	return ledger.NewService(e.db, ledger.PostingPolicy{
		ClosingCorrections: e.cfg.Policy.ClosingCorrections,
	})
}

func (e *env) closing() *closing.Service {
	return closing.NewService(e.db, e.cfg.Ledger.ResultAccount)
}

func (e *env) consolidation() *consolidation.Service {
	return consolidation.NewService(e.db)
}

func (e *env) importer() *sie.Importer {
	return sie.NewImporter(e.db, e.ledger())
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}
