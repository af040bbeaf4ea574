//go:build wireinject
// +build wireinject

package di

import (
	"StockCast/pkg/config"
	"StockCast/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideKafkaProducer,
	ProvideLogger,
	ProvideMetrics,
)

var storeSet = wire.NewSet(
	ProvideStoreBackend,
	ProvideBarStore,
	ProvideCache,
)

var etlSet = wire.NewSet(
	ProvideBarSource,
	ProvideBarPublisher,
	ProvideLocker,
	ProvideETLJob,
)

// InitializeStockApp wires the stock prediction API. The cleanup releases
// the infrastructure in reverse order of construction.
func InitializeStockApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		storeSet,
		ProvideModel,
		ProvideStockPredictor,
		ProvidePredictMiddleware,
		ProvideStockHandler,
		ProvideHTTPServer,
		ProvideStockApp,
	)
	return nil, nil, nil
}

// InitializeTabularApp wires the iris or titanic API.
func InitializeTabularApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		ProvideModel,
		ProvideTabularPredictor,
		ProvidePredictMiddleware,
		ProvideTabularHandler,
		ProvideHTTPServer,
		ProvideTabularApp,
	)
	return nil, nil, nil
}

// InitializeSchedulerApp wires the daily ETL trigger.
func InitializeSchedulerApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		storeSet,
		etlSet,
		ProvideScheduler,
		ProvideSchedulerApp,
	)
	return nil, nil, nil
}

// InitializeETL wires a single ETL run.
func InitializeETL(cfg *config.Config) (*ETLRun, func(), error) {
	wire.Build(
		infraSet,
		storeSet,
		etlSet,
		ProvideETLRun,
	)
	return nil, nil, nil
}
