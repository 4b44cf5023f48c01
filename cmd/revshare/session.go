package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/revshare-go/config"
	"github.com/bitfsorg/revshare-go/revshare"
	"github.com/bitfsorg/revshare-go/store"
)

// session is one command's view of the persisted table.
type session struct {
	cfg     config.Config
	log     zerolog.Logger
	store   *store.BoltStore
	journal *store.Journal
	table   *revshare.Table
	owned   *revshare.OwnedTable // nil unless the config names an owner
	caller  string
	logFile io.Closer
}

// loadConfig resolves the config file from flags. A missing file yields
// the defaults; --datadir always wins over the file's datadir.
func loadConfig(c *cli.Context) (config.Config, error) {
	dataDir := c.String(dataDirFlag.Name)
	path := c.String(configFlag.Name)
	if path == "" {
		dir := dataDir
		if dir == "" {
			dir = config.DefaultDataDir()
		}
		path = config.ConfigPath(dir)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return cfg, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	lvl, err := config.Level(cfg)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	if cfg.LogFile == "" {
		out := zerolog.ConsoleWriter{Out: stderr, NoColor: true}
		return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	return zerolog.New(f).Level(lvl).With().Timestamp().Logger(), f, nil
}

// openSession loads config, opens the store and restores the table with
// the event journal attached.
func openSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	log, logFile, err := newLogger(cfg, c.App.ErrWriter)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, log: log, logFile: logFile, caller: c.String(callerFlag.Name)}
	s.store, err = store.OpenBoltStore(config.DBPath(cfg))
	if err != nil {
		s.close()
		return nil, err
	}
	s.journal = s.store.Journal()

	s.table, err = s.store.Load(s.tableOptions()...)
	if err != nil {
		s.close()
		return nil, err
	}
	if err := s.wrapOwner(); err != nil {
		s.close()
		return nil, err
	}
	s.log.Debug().Str("db", config.DBPath(cfg)).Int("entries", s.table.Size()).
		Uint64("total", s.table.TotalWeight()).Msg("table loaded")
	return s, nil
}

func (s *session) tableOptions() []revshare.Option {
	opts := []revshare.Option{
		revshare.WithLogger(s.log),
		revshare.WithListener(s.journal.Listener()),
		revshare.WithMaxTotalWeight(s.cfg.MaxTotal),
	}
	if s.cfg.ValidatePointers {
		opts = append(opts, revshare.WithPointerValidation())
	}
	return opts
}

func (s *session) wrapOwner() error {
	if s.cfg.Owner == "" {
		return nil
	}
	owned, err := revshare.NewOwnedTable(s.cfg.Owner, s.table)
	if err != nil {
		return err
	}
	s.owned = owned
	return nil
}

func (s *session) add(name string, weight uint64) (uint64, error) {
	if s.owned != nil {
		return s.owned.Add(s.caller, name, weight)
	}
	return s.table.Add(name, weight)
}

func (s *session) remove(key uint64) error {
	if s.owned != nil {
		return s.owned.Remove(s.caller, key)
	}
	return s.table.Remove(key)
}

// replace swaps in the table restored from snap. Restoring applies the
// same checks as add.
func (s *session) replace(snap revshare.Snapshot) (*revshare.Table, error) {
	if s.owned != nil {
		if err := s.owned.Authorize(s.caller); err != nil {
			return nil, err
		}
	}
	t, err := revshare.RestoreTable(snap, s.tableOptions()...)
	if err != nil {
		return nil, err
	}
	s.table = t
	return t, s.wrapOwner()
}

// save persists the table and surfaces any journal write failure.
func (s *session) save() error {
	if err := s.journal.Err(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	return s.store.Save(s.table)
}

func (s *session) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close store")
		}
	}
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}

// withSession runs fn against an open session and saves the table
// afterwards when mutate is set.
func withSession(c *cli.Context, mutate bool, fn func(*session) error) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	if err := fn(s); err != nil {
		return err
	}
	if mutate {
		return s.save()
	}
	return nil
}
