package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/aki/letterdrive/backend/internal/adapter"
	"github.com/aki/letterdrive/backend/internal/adapter/googledrive"
	"github.com/aki/letterdrive/backend/internal/adapter/memory"
	"github.com/aki/letterdrive/backend/internal/auth"
	"github.com/aki/letterdrive/backend/internal/config"
	"github.com/aki/letterdrive/backend/internal/crypto"
	"github.com/aki/letterdrive/backend/internal/handler"
	"github.com/aki/letterdrive/backend/internal/secret"
	"github.com/aki/letterdrive/backend/internal/session"
)

// App holds the dependencies for the Lambda function.
type App struct {
	authHandler   *handler.AuthHandler
	letterHandler *handler.LetterHandler
	frontendURL   string
}

// NewApp initializes the application dependencies. The OAuth config is
// constructed exactly once here and injected downstream; nothing registers
// itself at package load time.
func NewApp(ctx context.Context) *App {
	cfg := config.Load()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		panic(fmt.Sprintf("unable to load SDK config, %v", err))
	}

	var dynamoClient *dynamodb.Client
	var encryptor crypto.Encryptor
	var resolver secret.Resolver
	var provider adapter.Provider

	if cfg.Server.DevMode {
		// In-memory sessions/locks, pass-through crypto, env secrets, and an
		// in-process letter store instead of Drive.
		encryptor = crypto.NewMockEncryptor()
		resolver = secret.NewEnvResolver()
		provider = memory.NewProvider()
		fmt.Println("DEV_MODE=true: in-memory sessions, MockEncryptor, EnvResolver, memory letter store")
	} else {
		dynamoClient = dynamodb.NewFromConfig(awsCfg)
		encryptor = crypto.NewKMSEncryptor(kms.NewFromConfig(awsCfg), cfg.Session.KMSKeyID)
		resolver = secret.NewSSMResolver(ssm.NewFromConfig(awsCfg))
		provider = googledrive.NewProvider()
	}

	googleClientSecret, err := resolver.GetSecret(ctx, cfg.Google.ClientSecretParam)
	if err != nil {
		log.Printf("WARNING: failed to resolve GOOGLE_CLIENT_SECRET: %v", err)
	}

	sessionSecret, err := resolver.GetSecret(ctx, cfg.Session.SecretParam)
	if err != nil {
		log.Printf("WARNING: failed to resolve SESSION_SECRET: %v", err)
		sessionSecret = "default-dev-secret"
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: googleClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/drive",
		},
		Endpoint: google.Endpoint,
	}

	oauthService := auth.NewOAuthService(oauthConfig)
	sessions := session.NewStore(dynamoClient, cfg.Session.TableName, encryptor)
	locks := session.NewLockManager(dynamoClient, cfg.Locks.TableName)

	authHandler := handler.NewAuthHandler(oauthService, sessions, sessionSecret,
		cfg.Server.FrontendURL, cfg.Session.AdminEmailSuffix, cfg.Server.DevMode)
	letterHandler := handler.NewLetterHandler(provider, sessions, locks, sessionSecret)

	return &App{
		authHandler:   authHandler,
		letterHandler: letterHandler,
		frontendURL:   cfg.Server.FrontendURL,
	}
}

// HandleRequest routes API Gateway requests to the appropriate handler.
func (app *App) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := req.Path
	method := req.HTTPMethod

	fmt.Printf("Request: %s %s\n", method, path)

	// CORS Preflight
	if method == "OPTIONS" {
		return app.corsResponse(events.APIGatewayProxyResponse{StatusCode: 204}), nil
	}

	if req.PathParameters == nil {
		req.PathParameters = make(map[string]string)
	}

	if path == "/auth/google" && method == "GET" {
		return app.corsResponse(must(app.authHandler.Login(ctx, req))), nil
	}
	if path == "/auth/google/callback" && method == "GET" {
		return app.corsResponse(must(app.authHandler.Callback(ctx, req))), nil
	}
	if path == "/api/user" && method == "GET" {
		return app.corsResponse(must(app.authHandler.GetUser(ctx, req))), nil
	}
	if path == "/api/logout" && method == "POST" {
		return app.corsResponse(must(app.authHandler.Logout(ctx, req))), nil
	}
	if path == "/api/save-letter" && method == "POST" {
		return app.corsResponse(must(app.letterHandler.SaveLetter(ctx, req))), nil
	}
	if path == "/api/letters" && method == "GET" {
		return app.corsResponse(must(app.letterHandler.ListLetters(ctx, req))), nil
	}
	if strings.HasPrefix(path, "/api/letters/") && method == "DELETE" {
		req.PathParameters["fileId"] = strings.TrimPrefix(path, "/api/letters/")
		return app.corsResponse(must(app.letterHandler.DeleteLetter(ctx, req))), nil
	}

	return app.corsResponse(events.APIGatewayProxyResponse{
		StatusCode: http.StatusNotFound,
		Body:       fmt.Sprintf("Not Found: %s %s", method, path),
	}), nil
}

// corsResponse adds CORS headers for the configured frontend origin.
func (app *App) corsResponse(resp events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	resp.Headers["Access-Control-Allow-Origin"] = app.frontendURL
	resp.Headers["Access-Control-Allow-Credentials"] = "true"
	resp.Headers["Access-Control-Allow-Methods"] = "GET,POST,DELETE,OPTIONS"
	resp.Headers["Access-Control-Allow-Headers"] = "Content-Type,Authorization"
	return resp
}

// must unwraps a handler response, converting an error into a 500.
func must(resp events.APIGatewayProxyResponse, err error) events.APIGatewayProxyResponse {
	if err != nil {
		fmt.Printf("Handler error: %v\n", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: "Internal Server Error"}
	}
	return resp
}
