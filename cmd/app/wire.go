//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/meteo-tuya/internal/bootstrap"
	"github.com/yanqian/meteo-tuya/internal/domain/meteo"
	"github.com/yanqian/meteo-tuya/internal/infra/config"
	"github.com/yanqian/meteo-tuya/internal/infra/tuya"
	httpiface "github.com/yanqian/meteo-tuya/internal/interface/http"
	"github.com/yanqian/meteo-tuya/pkg/logger"
)

var upstreamSet = wire.NewSet(
	config.Load,
	logger.New,
	provideMeteoConfig,
	provideTokenStore,
	provideTuyaClient,
	meteo.NewService,
	wire.Bind(new(meteo.StatusClient), new(*tuya.Client)),
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		upstreamSet,
		providePublisher,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}

func initializeService() (meteo.Service, func(), error) {
	wire.Build(
		upstreamSet,
		provideNoPublisher,
	)
	return nil, nil, nil
}
