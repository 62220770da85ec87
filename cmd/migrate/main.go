package main

import (
	"errors"
	"flag"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/config"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

func main() {
	dir := flag.String("dir", "file://migrations", "migration source url")
	down := flag.Bool("down", false, "roll back every migration")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	log := logger.NewZapLogger(cfg.App.Env, "learnerhub-migrate")
	defer log.Sync()

	m, err := migrate.New(*dir, cfg.DB.DSN)
	if err != nil {
		log.Fatal("Cannot create migrate instance", err)
	}
	defer m.Close()

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("Migration failed", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		log.Fatal("Cannot read schema version", verr)
	}
	log.Info("Schema up to date", zap.Uint("version", version), zap.Bool("dirty", dirty))
}
