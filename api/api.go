package api

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/utils/logger"
	"github.com/sahilchouksey/campus-events/utils/response"
)

// BodyLimit allows large JSON bodies since uploads travel base64 inlined
const BodyLimit = 64 * 1024 * 1024

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

// NewApp builds the fiber app with the JSON codec and error envelope
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "campus-events",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		BodyLimit:    BodyLimit,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorHandler: errorHandler,
	})
}

// errorHandler renders errors that escaped the handlers in the response envelope
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		logger.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return response.InternalServerError(c, "")
	}
	return response.Error(c, code, err.Error())
}

func NewAPIServer(listenAddress string) *APIServer {
	return &APIServer{
		app:           NewApp(),
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	logger.Info().Str("address", s.listenAddress).Msg("starting API server")

	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
