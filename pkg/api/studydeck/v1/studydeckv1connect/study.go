// Package studydeckv1connect wires the studydeck.v1 services onto connect.
package studydeckv1connect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	studydeckv1 "github.com/eslsoft/studydeck/pkg/api/studydeck/v1"
)

const (
	// StudyServiceName is the fully-qualified name of the StudyService service.
	StudyServiceName = "studydeck.v1.StudyService"
	// ReportServiceName is the fully-qualified name of the ReportService service.
	ReportServiceName = "studydeck.v1.ReportService"
)

const (
	StudyServiceStartSessionProcedure    = "/studydeck.v1.StudyService/StartSession"
	StudyServiceGetCurrentCardProcedure  = "/studydeck.v1.StudyService/GetCurrentCard"
	StudyServiceSubmitAnswerProcedure    = "/studydeck.v1.StudyService/SubmitAnswer"
	StudyServiceEndSessionProcedure      = "/studydeck.v1.StudyService/EndSession"
	StudyServiceListSessionsProcedure    = "/studydeck.v1.StudyService/ListSessions"
	ReportServiceGetPerformanceProcedure = "/studydeck.v1.ReportService/GetPerformance"
)

// StudyServiceHandler is implemented by the study session service.
type StudyServiceHandler interface {
	StartSession(context.Context, *connect.Request[studydeckv1.StartSessionRequest]) (*connect.Response[studydeckv1.StartSessionResponse], error)
	GetCurrentCard(context.Context, *connect.Request[studydeckv1.SessionRequest]) (*connect.Response[studydeckv1.CurrentCardResponse], error)
	SubmitAnswer(context.Context, *connect.Request[studydeckv1.SubmitAnswerRequest]) (*connect.Response[studydeckv1.SubmitAnswerResponse], error)
	EndSession(context.Context, *connect.Request[studydeckv1.SessionRequest]) (*connect.Response[studydeckv1.EndSessionResponse], error)
	ListSessions(context.Context, *connect.Request[studydeckv1.ListSessionsRequest]) (*connect.Response[studydeckv1.ListSessionsResponse], error)
}

// ReportServiceHandler is implemented by the performance report service.
type ReportServiceHandler interface {
	GetPerformance(context.Context, *connect.Request[studydeckv1.GetPerformanceRequest]) (*connect.Response[studydeckv1.GetPerformanceResponse], error)
}

// NewStudyServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewStudyServiceHandler(svc StudyServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(StudyServiceStartSessionProcedure, connect.NewUnaryHandler(
		StudyServiceStartSessionProcedure, svc.StartSession, opts...))
	mux.Handle(StudyServiceGetCurrentCardProcedure, connect.NewUnaryHandler(
		StudyServiceGetCurrentCardProcedure, svc.GetCurrentCard, opts...))
	mux.Handle(StudyServiceSubmitAnswerProcedure, connect.NewUnaryHandler(
		StudyServiceSubmitAnswerProcedure, svc.SubmitAnswer, opts...))
	mux.Handle(StudyServiceEndSessionProcedure, connect.NewUnaryHandler(
		StudyServiceEndSessionProcedure, svc.EndSession, opts...))
	mux.Handle(StudyServiceListSessionsProcedure, connect.NewUnaryHandler(
		StudyServiceListSessionsProcedure, svc.ListSessions, opts...))
	return "/" + StudyServiceName + "/", mux
}

// NewReportServiceHandler builds an HTTP handler from the service implementation.
func NewReportServiceHandler(svc ReportServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(ReportServiceGetPerformanceProcedure, connect.NewUnaryHandler(
		ReportServiceGetPerformanceProcedure, svc.GetPerformance, opts...))
	return "/" + ReportServiceName + "/", mux
}

// StudyServiceClient is a client for the studydeck.v1.StudyService service.
type StudyServiceClient struct {
	startSession   *connect.Client[studydeckv1.StartSessionRequest, studydeckv1.StartSessionResponse]
	getCurrentCard *connect.Client[studydeckv1.SessionRequest, studydeckv1.CurrentCardResponse]
	submitAnswer   *connect.Client[studydeckv1.SubmitAnswerRequest, studydeckv1.SubmitAnswerResponse]
	endSession     *connect.Client[studydeckv1.SessionRequest, studydeckv1.EndSessionResponse]
	listSessions   *connect.Client[studydeckv1.ListSessionsRequest, studydeckv1.ListSessionsResponse]
}

// NewStudyServiceClient constructs a client for the studydeck.v1.StudyService
// service. baseURL is the scheme and host of the server, e.g. http://localhost:8080.
func NewStudyServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *StudyServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &StudyServiceClient{
		startSession:   connect.NewClient[studydeckv1.StartSessionRequest, studydeckv1.StartSessionResponse](httpClient, baseURL+StudyServiceStartSessionProcedure, opts...),
		getCurrentCard: connect.NewClient[studydeckv1.SessionRequest, studydeckv1.CurrentCardResponse](httpClient, baseURL+StudyServiceGetCurrentCardProcedure, opts...),
		submitAnswer:   connect.NewClient[studydeckv1.SubmitAnswerRequest, studydeckv1.SubmitAnswerResponse](httpClient, baseURL+StudyServiceSubmitAnswerProcedure, opts...),
		endSession:     connect.NewClient[studydeckv1.SessionRequest, studydeckv1.EndSessionResponse](httpClient, baseURL+StudyServiceEndSessionProcedure, opts...),
		listSessions:   connect.NewClient[studydeckv1.ListSessionsRequest, studydeckv1.ListSessionsResponse](httpClient, baseURL+StudyServiceListSessionsProcedure, opts...),
	}
}

func (c *StudyServiceClient) StartSession(ctx context.Context, req *connect.Request[studydeckv1.StartSessionRequest]) (*connect.Response[studydeckv1.StartSessionResponse], error) {
	return c.startSession.CallUnary(ctx, req)
}

func (c *StudyServiceClient) GetCurrentCard(ctx context.Context, req *connect.Request[studydeckv1.SessionRequest]) (*connect.Response[studydeckv1.CurrentCardResponse], error) {
	return c.getCurrentCard.CallUnary(ctx, req)
}

func (c *StudyServiceClient) SubmitAnswer(ctx context.Context, req *connect.Request[studydeckv1.SubmitAnswerRequest]) (*connect.Response[studydeckv1.SubmitAnswerResponse], error) {
	return c.submitAnswer.CallUnary(ctx, req)
}

func (c *StudyServiceClient) EndSession(ctx context.Context, req *connect.Request[studydeckv1.SessionRequest]) (*connect.Response[studydeckv1.EndSessionResponse], error) {
	return c.endSession.CallUnary(ctx, req)
}

func (c *StudyServiceClient) ListSessions(ctx context.Context, req *connect.Request[studydeckv1.ListSessionsRequest]) (*connect.Response[studydeckv1.ListSessionsResponse], error) {
	return c.listSessions.CallUnary(ctx, req)
}

// ReportServiceClient is a client for the studydeck.v1.ReportService service.
type ReportServiceClient struct {
	getPerformance *connect.Client[studydeckv1.GetPerformanceRequest, studydeckv1.GetPerformanceResponse]
}

// NewReportServiceClient constructs a client for the studydeck.v1.ReportService service.
func NewReportServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ReportServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &ReportServiceClient{
		getPerformance: connect.NewClient[studydeckv1.GetPerformanceRequest, studydeckv1.GetPerformanceResponse](httpClient, baseURL+ReportServiceGetPerformanceProcedure, opts...),
	}
}

func (c *ReportServiceClient) GetPerformance(ctx context.Context, req *connect.Request[studydeckv1.GetPerformanceRequest]) (*connect.Response[studydeckv1.GetPerformanceResponse], error) {
	return c.getPerformance.CallUnary(ctx, req)
}
