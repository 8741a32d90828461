package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"resume-scorer/internal/bootstrap"
	"resume-scorer/internal/shared/config"
	"resume-scorer/internal/shared/telemetry"
)

var (
	initOnce  sync.Once
	initErr   error
	ginLambda *ginadapter.GinLambdaV2
)

func initApp() {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		initErr = err
		return
	}
	ginLambda = ginadapter.NewV2(app.Router)
}

func errorResponse(code, message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: 500,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": initErr})
		return errorResponse("internal_error", "bootstrap failed"), nil
	}
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handler)
}
