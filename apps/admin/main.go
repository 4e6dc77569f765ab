package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/codekids/core"
	"github.com/trezcool/codekids/core/user"
	logsvc "github.com/trezcool/codekids/services/logger"
	"github.com/trezcool/codekids/storage/database/inmem"
	"github.com/trezcool/codekids/storage/seed"
)

func main() {
	conf := core.NewConfig()

	// stdout is for command output
	zl, err := logsvc.NewZapLogger(conf.Env, "stderr")
	if err != nil {
		log.Fatalf("setting up zap logger: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("ADMIN"), conf)
	logger.Enable(false)
	defer logger.Sync()

	svc, err := newSeededService(conf, logger)
	if err != nil {
		logger.Fatal("setting up user store", err)
	}

	// start CLI
	cli := commandLine{svc: svc, out: os.Stdout}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func newSeededService(conf *core.Config, logger core.Logger) (*user.Service, error) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	data, err := seed.Load(conf.SeedFile)
	if err != nil {
		return nil, errors.Wrap(err, "loading seed")
	}
	db, err := inmemdb.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	svc := user.NewService(inmemdb.NewUserRepository(db), data.Catalog(), validate, logger)
	if _, err = data.Apply(context.Background(), svc); err != nil {
		return nil, errors.Wrap(err, "seeding users")
	}
	return svc, nil
}
