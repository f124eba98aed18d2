package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/studydeck/internal/infrastructure/config"
)

// Logger logs every unary call with its procedure, status and duration.
func Logger(logger logrus.FieldLogger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			duration := time.Since(start)
			code := connect.CodeOf(err)
			entry := logger.WithFields(buildLogFields(req, resp, code, duration, err))

			switch determineLogLevel(code, err) {
			case logrus.InfoLevel:
				entry.Info("request completed")
			case logrus.WarnLevel:
				entry.Warn("request completed")
			default:
				entry.Error("request completed")
			}
			return resp, err
		}
	}
}

func determineLogLevel(code connect.Code, err error) logrus.Level {
	if err == nil {
		return logrus.InfoLevel
	}
	switch code {
	case connect.CodeInvalidArgument, connect.CodeFailedPrecondition, connect.CodeNotFound,
		connect.CodeAlreadyExists, connect.CodeCanceled:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

func buildLogFields(req connect.AnyRequest, resp connect.AnyResponse, code connect.Code, duration time.Duration, err error) logrus.Fields {
	fields := logrus.Fields{
		"procedure": req.Spec().Procedure,
		"status":    code.String(),
		"duration":  duration.String(),
	}
	if err == nil {
		fields["status"] = "ok"
	}

	setString(fields, "http_method", req.HTTPMethod())
	peer := req.Peer()
	setString(fields, "peer_addr", peer.Addr)
	setString(fields, "protocol", peer.Protocol)

	header := req.Header()
	setString(fields, "user_agent", header.Get("User-Agent"))
	setString(fields, "request_id", header.Get("X-Request-Id"))
	setString(fields, "client_ip", firstForwardedFor(header))
	if cl := contentLength(header); cl >= 0 {
		fields["request_bytes"] = cl
	}

	if resp != nil {
		if cl := contentLength(resp.Header()); cl >= 0 {
			fields["response_bytes"] = cl
		}
	}
	if err != nil {
		fields[logrus.ErrorKey] = err.Error()
	}
	return fields
}

func setString(fields logrus.Fields, key, value string) {
	if value == "" {
		return
	}
	fields[key] = value
}

func firstForwardedFor(header http.Header) string {
	forwarded := header.Get("X-Forwarded-For")
	if forwarded == "" {
		return ""
	}
	for _, part := range strings.Split(forwarded, ",") {
		if candidate := strings.TrimSpace(part); candidate != "" {
			return candidate
		}
	}
	return ""
}

func contentLength(header http.Header) int {
	if header == nil {
		return -1
	}
	if cl := header.Get("Content-Length"); cl != "" {
		if parsed, err := strconv.Atoi(cl); err == nil {
			return parsed
		}
	}
	return -1
}

// NewLogger builds a configured logrus logger from application config.
func NewLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}
