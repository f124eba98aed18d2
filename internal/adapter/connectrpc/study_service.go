package connectrpc

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/eslsoft/studydeck/internal/adapter/mapping"
	"github.com/eslsoft/studydeck/internal/entity"
	"github.com/eslsoft/studydeck/internal/usecase"
	studydeckv1 "github.com/eslsoft/studydeck/pkg/api/studydeck/v1"
	"github.com/eslsoft/studydeck/pkg/api/studydeck/v1/studydeckv1connect"
)

var _ studydeckv1connect.StudyServiceHandler = (*StudyServiceServer)(nil)

type StudyServiceServer struct {
	uc usecase.StudyUsecase
}

func NewStudyServiceServer(uc usecase.StudyUsecase) *StudyServiceServer {
	return &StudyServiceServer{uc: uc}
}

func (s *StudyServiceServer) StartSession(ctx context.Context, req *connect.Request[studydeckv1.StartSessionRequest]) (*connect.Response[studydeckv1.StartSessionResponse], error) {
	if req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("request required"))
	}
	started, err := s.uc.StartSession(ctx, req.Msg.LearnerID, req.Msg.CardLimit)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(&studydeckv1.StartSessionResponse{
		SessionID: started.SessionID,
		QueueSize: started.QueueSize,
		StartedAt: started.StartedAt,
	}), nil
}

func (s *StudyServiceServer) GetCurrentCard(ctx context.Context, req *connect.Request[studydeckv1.SessionRequest]) (*connect.Response[studydeckv1.CurrentCardResponse], error) {
	if req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("request required"))
	}
	current, err := s.uc.CurrentCard(ctx, req.Msg.SessionID)
	if errors.Is(err, entity.ErrSessionFinished) {
		progress, perr := s.uc.Progress(ctx, req.Msg.SessionID)
		if perr != nil {
			return nil, mapping.ToConnectError(perr)
		}
		p := mapping.ToAPIProgress(progress)
		return connect.NewResponse(&studydeckv1.CurrentCardResponse{Finished: true, Progress: &p}), nil
	}
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(mapping.ToAPICurrentCard(current)), nil
}

func (s *StudyServiceServer) SubmitAnswer(ctx context.Context, req *connect.Request[studydeckv1.SubmitAnswerRequest]) (*connect.Response[studydeckv1.SubmitAnswerResponse], error) {
	if req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("request required"))
	}
	msg := req.Msg
	result, err := s.uc.SubmitAnswer(ctx, msg.SessionID, msg.IsCorrect, entity.Quality(msg.Quality))
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(mapping.ToAPIAnswerResult(result)), nil
}

func (s *StudyServiceServer) EndSession(ctx context.Context, req *connect.Request[studydeckv1.SessionRequest]) (*connect.Response[studydeckv1.EndSessionResponse], error) {
	if req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("request required"))
	}
	stats, err := s.uc.EndSession(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(&studydeckv1.EndSessionResponse{Stats: mapping.ToAPIStats(stats)}), nil
}

func (s *StudyServiceServer) ListSessions(ctx context.Context, req *connect.Request[studydeckv1.ListSessionsRequest]) (*connect.Response[studydeckv1.ListSessionsResponse], error) {
	if req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("request required"))
	}
	summaries, err := s.uc.History(ctx, req.Msg.LearnerID, req.Msg.Limit)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(&studydeckv1.ListSessionsResponse{Sessions: mapping.ToAPISessionSummaries(summaries)}), nil
}
