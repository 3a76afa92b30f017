package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/config"
	"github.com/mohammedfirdouss/serverless-book-tracker/infrastructure/di"
	"github.com/mohammedfirdouss/serverless-book-tracker/interfaces/http/rest"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container
	coldStart = true
)

func init() {
	start := time.Now()
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	router := rest.NewRouter(
		container.BookService,
		container.TagService,
		container.CollectionService,
		container.ProgressService,
		container.AnalyticsService,
		container.JWTValidator,
		cfg.EnableCORS,
		container.Logger,
	)

	chiRouter, ok := router.Setup().(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	container.Logger.Info("cold start complete", zap.Duration("duration", time.Since(start)))
}

// Handler adapts an API Gateway event to the chi router. The gateway's JWT
// authorizer has already validated the token; the subject travels in the
// authorizer claims, which we forward as trusted headers.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}

	if sub := authorizerSubject(req); sub != "" {
		req.Headers["X-API-Gateway-Authorized"] = "true"
		req.Headers["X-User-ID"] = sub
		if email := authorizerClaim(req, "email"); email != "" {
			req.Headers["X-User-Email"] = email
		}
	}

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		coldStart = false
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	if resp.StatusCode >= 500 {
		container.Logger.Error("request failed",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.Int("status", resp.StatusCode),
		)
	}
	return resp, err
}

func authorizerSubject(req events.APIGatewayV2HTTPRequest) string {
	return authorizerClaim(req, "sub")
}

func authorizerClaim(req events.APIGatewayV2HTTPRequest, name string) string {
	if req.RequestContext.Authorizer == nil || req.RequestContext.Authorizer.JWT == nil {
		return ""
	}
	value := req.RequestContext.Authorizer.JWT.Claims[name]
	return strings.TrimSpace(value)
}

func main() {
	lambda.Start(Handler)
}
