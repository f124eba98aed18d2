//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	adapterconnect "github.com/eslsoft/studydeck/internal/adapter/connectrpc"
	adapterrepo "github.com/eslsoft/studydeck/internal/adapter/repository"
	"github.com/eslsoft/studydeck/internal/infrastructure/config"
	"github.com/eslsoft/studydeck/internal/infrastructure/scheduler"
	"github.com/eslsoft/studydeck/internal/infrastructure/server"
	"github.com/eslsoft/studydeck/internal/repository"
	"github.com/eslsoft/studydeck/internal/storage"
	"github.com/eslsoft/studydeck/internal/usecase"
	"github.com/eslsoft/studydeck/pkg/api/studydeck/v1/studydeckv1connect"
)

var configSet = wire.NewSet(
	config.Load,
)

var repositorySet = wire.NewSet(
	adapterrepo.NewStores,
	wire.FieldsOf(new(*adapterrepo.Stores), "Cards", "Answers", "Sessions"),
	storage.NewSessionStorage,
	wire.Bind(new(repository.SessionStore), new(*storage.SessionStorage)),
)

var usecaseSet = wire.NewSet(
	provideStudyOptions,
	provideReportOptions,
	usecase.NewStudyUsecase,
	usecase.NewReportUsecase,
)

var serviceSet = wire.NewSet(
	adapterconnect.NewStudyServiceServer,
	adapterconnect.NewReportServiceServer,
	wire.Bind(new(studydeckv1connect.StudyServiceHandler), new(*adapterconnect.StudyServiceServer)),
	wire.Bind(new(studydeckv1connect.ReportServiceHandler), new(*adapterconnect.ReportServiceServer)),
)

var serverSet = wire.NewSet(
	server.NewLogger,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
	server.NewServer,
	provideExpirer,
	scheduler.New,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "Logger", "Server", "Scheduler"),
	)
	return nil, nil, nil
}
