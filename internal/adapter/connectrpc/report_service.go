package connectrpc

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/eslsoft/studydeck/internal/adapter/mapping"
	"github.com/eslsoft/studydeck/internal/usecase"
	studydeckv1 "github.com/eslsoft/studydeck/pkg/api/studydeck/v1"
	"github.com/eslsoft/studydeck/pkg/api/studydeck/v1/studydeckv1connect"
)

var _ studydeckv1connect.ReportServiceHandler = (*ReportServiceServer)(nil)

type ReportServiceServer struct {
	uc usecase.ReportUsecase
}

func NewReportServiceServer(uc usecase.ReportUsecase) *ReportServiceServer {
	return &ReportServiceServer{uc: uc}
}

func (s *ReportServiceServer) GetPerformance(ctx context.Context, req *connect.Request[studydeckv1.GetPerformanceRequest]) (*connect.Response[studydeckv1.GetPerformanceResponse], error) {
	if req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("request required"))
	}
	report, err := s.uc.PerformanceReport(ctx, usecase.ReportQuery{
		LearnerID:  req.Msg.LearnerID,
		WindowDays: req.Msg.WindowDays,
		Filter:     req.Msg.Filter,
	})
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(mapping.ToAPIPerformance(report)), nil
}
