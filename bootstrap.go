package main

import (
	"fmt"

	"go.uber.org/zap"

	"contact-radar/internal/config"
	"contact-radar/internal/directory"
	"contact-radar/internal/excel"
	"contact-radar/internal/logging"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if workbook != "" {
		cfg.Directory.Workbook = workbook
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// loadDirectory reads the configured workbook; no workbook means an empty directory.
func loadDirectory(cfg *config.Config, logger *zap.Logger) (*directory.Directory, error) {
	if cfg.Directory.Workbook == "" {
		logger.Warn("no directory workbook configured, starting empty")
		return directory.New(nil, nil), nil
	}
	wb, err := excel.LoadWorkbook(cfg.Directory.Workbook, cfg.Directory.ContactsSheet, cfg.Directory.OrganizationsSheet)
	if err != nil {
		return nil, err
	}
	contacts, orgs := wb.Contacts, wb.Organizations
	if len(wb.RejectedLocations) > 0 {
		logger.Warn("dropped out of range locations",
			zap.String("workbook", cfg.Directory.Workbook),
			zap.Ints("rows", wb.RejectedLocations))
	}

	located := 0
	for _, c := range contacts {
		if c.Loc != nil {
			located++
		}
	}
	logger.Info("directory loaded",
		zap.String("workbook", cfg.Directory.Workbook),
		zap.Int("contacts", len(contacts)),
		zap.Int("located", located),
		zap.Int("organizations", len(orgs)))
	return directory.New(contacts, orgs), nil
}
