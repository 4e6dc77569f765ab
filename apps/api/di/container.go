// Package di wires the API process with a dig container.
package di

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/trezcool/codekids/apps/api/echo"
	"github.com/trezcool/codekids/core"
	"github.com/trezcool/codekids/core/course"
	"github.com/trezcool/codekids/core/user"
	logsvc "github.com/trezcool/codekids/services/logger"
	"github.com/trezcool/codekids/storage/database/inmem"
	"github.com/trezcool/codekids/storage/seed"
)

type StoreLoggerParam struct {
	dig.In
	Logger core.Logger `name:"storeLogger"`
}

func newZapLogger(conf *core.Config) (*zap.Logger, error) {
	return logsvc.NewZapLogger(conf.Env)
}

// newLogger reports to Rollbar only when a token is configured outside of test mode.
func newLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	return logsvc.NewRollbarLogger(zl.Named("API"), conf)
}

func newStoreLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	return logsvc.NewRollbarLogger(zl.Named("STORE"), conf)
}

func newSeed(conf *core.Config) (seed.Data, error) {
	return seed.Load(conf.SeedFile)
}

func newCatalog(data seed.Data) course.Catalog {
	return data.Catalog()
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func newUserService(repo user.Repository, catalog course.Catalog, validate *validator.Validate, loggerParam StoreLoggerParam) *user.Service {
	return user.NewService(repo, catalog, validate, loggerParam.Logger)
}

func newServer(conf *core.Config, logger core.Logger, usrSvc *user.Service, translator ut.Translator) echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		Translator: translator,
	})
}

// New returns the dependency injection dig.Container of the API.
// The provided config is used when not nil, core.NewConfig otherwise.
func New(conf *core.Config) (*dig.Container, error) {
	c := dig.New()

	provideConf := core.NewConfig
	if conf != nil {
		provideConf = func() *core.Config { return conf }
	}
	providers := []struct {
		constructor interface{}
		opts        []dig.ProvideOption
	}{
		{constructor: provideConf},
		{constructor: newZapLogger},
		{constructor: newLogger},
		{constructor: newStoreLogger, opts: []dig.ProvideOption{dig.Name("storeLogger")}},
		{constructor: core.NewTranslator},
		{constructor: newValidator},
		{constructor: newSeed},
		{constructor: newCatalog},
		{constructor: inmemdb.Open},
		{constructor: inmemdb.NewUserRepository},
		{constructor: newUserService},
		{constructor: newServer},
	}
	for _, p := range providers {
		if err := c.Provide(p.constructor, p.opts...); err != nil {
			return nil, errors.Wrap(err, "failed to provide dependency")
		}
	}
	return c, nil
}
