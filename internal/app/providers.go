package app

import (
	"github.com/eslsoft/studydeck/internal/infrastructure/config"
	"github.com/eslsoft/studydeck/internal/infrastructure/scheduler"
	"github.com/eslsoft/studydeck/internal/usecase"
)

func provideStudyOptions(cfg *config.Config) usecase.StudyOptions {
	return usecase.StudyOptions{
		DefaultCardLimit: cfg.Study.DefaultCardLimit,
		MaxCardLimit:     cfg.Study.MaxCardLimit,
	}
}

func provideReportOptions(cfg *config.Config) (usecase.ReportOptions, error) {
	loc, err := cfg.ReportLocation()
	if err != nil {
		return usecase.ReportOptions{}, err
	}
	return usecase.ReportOptions{
		DefaultWindowDays: cfg.Report.DefaultWindowDays,
		Location:          loc,
	}, nil
}

func provideExpirer(uc usecase.StudyUsecase) scheduler.Expirer {
	return uc
}
