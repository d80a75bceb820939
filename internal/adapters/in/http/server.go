// Package http exposes the order workflow over a JSON REST API built on echo.
package http

import (
	"context"
	"net/http"
	"strings"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

type CreateOrderHandler interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error)
}

type TransitionOrderHandler interface {
	Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (commands.TransitionOrderResult, error)
}

type AvailableTransitionsHandler interface {
	Handle(ctx context.Context, q queries.GetAvailableTransitionsQuery) ([]queries.AvailableTransition, error)
}

type OrderTrackingHandler interface {
	Handle(ctx context.Context, q queries.GetOrderTrackingQuery) (queries.GetOrderTrackingQueryResponse, error)
}

type StatusProgressHandler interface {
	Handle(ctx context.Context, q queries.GetStatusProgressQuery) (queries.GetStatusProgressQueryResponse, error)
}

// Server maps HTTP requests onto the application use cases.
type Server struct {
	// Command handlers
	createOrderHandler     CreateOrderHandler
	transitionOrderHandler TransitionOrderHandler

	// Query handlers
	availableTransitionsHandler AvailableTransitionsHandler
	orderTrackingHandler        OrderTrackingHandler
	statusProgressHandler       StatusProgressHandler
}

func NewServer(
	createOrderHandler CreateOrderHandler,
	transitionOrderHandler TransitionOrderHandler,
	availableTransitionsHandler AvailableTransitionsHandler,
	orderTrackingHandler OrderTrackingHandler,
	statusProgressHandler StatusProgressHandler,
) *Server {
	return &Server{
		createOrderHandler:          createOrderHandler,
		transitionOrderHandler:      transitionOrderHandler,
		availableTransitionsHandler: availableTransitionsHandler,
		orderTrackingHandler:        orderTrackingHandler,
		statusProgressHandler:       statusProgressHandler,
	}
}

// Register mounts every route on e. Everything under /api/v1 requires the
// actor headers; /health and /openapi.yaml do not.
func (s *Server) Register(e *echo.Echo, middleware ...echo.MiddlewareFunc) {
	e.GET("/health", s.Health)
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", OpenAPIDocument())
	})

	api := e.Group("/api/v1", append([]echo.MiddlewareFunc{RequireActor()}, middleware...)...)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:id/transitions", s.GetAvailableTransitions)
	api.POST("/orders/:id/transitions", s.TransitionOrder)
	api.GET("/orders/:id/tracking", s.GetOrderTracking)
	api.GET("/statuses/:status/progress", s.GetStatusProgress)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

// CreateOrder handles POST /api/v1/orders - takes in a new order at INTAKE.
func (s *Server) CreateOrder(c echo.Context) error {
	var req newOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}

	orderID := kernel.NewUUID()
	if req.OrderID != "" {
		id, err := kernel.UUIDFromString(req.OrderID)
		if err != nil {
			return badRequest(err)
		}
		orderID = id
	}
	workspaceID, err := kernel.UUIDFromString(req.WorkspaceID)
	if err != nil {
		return badRequest(err)
	}
	brandID, err := kernel.UUIDFromString(req.BrandID)
	if err != nil {
		return badRequest(err)
	}

	cmd, err := commands.NewCreateOrderCommand(orderID, workspaceID, brandID, req.BrandCode, req.Deadline)
	if err != nil {
		return badRequest(err)
	}

	res, err := s.createOrderHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createdOrderResponse{
		OrderID:  res.OrderID.String(),
		PONumber: res.PONumber,
	})
}

// GetAvailableTransitions handles GET /api/v1/orders/{id}/transitions for the calling role.
func (s *Server) GetAvailableTransitions(c echo.Context) error {
	orderID, err := bindOrderID(c)
	if err != nil {
		return err
	}
	actor, ok := actorFrom(c)
	if !ok {
		return problemUnauthenticated
	}

	query, err := queries.NewGetAvailableTransitionsQuery(orderID, actor.Role())
	if err != nil {
		return badRequest(err)
	}

	options, err := s.availableTransitionsHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]transitionOptionResponse, len(options))
	for i, opt := range options {
		response[i] = transitionOptionResponse{
			Status:      opt.Status.String(),
			Label:       opt.Label,
			Description: opt.Description,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// TransitionOrder handles POST /api/v1/orders/{id}/transitions.
func (s *Server) TransitionOrder(c echo.Context) error {
	orderID, err := bindOrderID(c)
	if err != nil {
		return err
	}
	actor, ok := actorFrom(c)
	if !ok {
		return problemUnauthenticated
	}

	var req transitionRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(err)
	}
	target, err := order.ParseStatus(strings.TrimSpace(req.Target))
	if err != nil {
		return err
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, target, actor, req.Note)
	if err != nil {
		return badRequest(err)
	}
	if expected := strings.TrimSpace(req.ExpectedStatus); expected != "" {
		status, parseErr := order.ParseStatus(expected)
		if parseErr != nil {
			return parseErr
		}
		cmd = cmd.WithExpectedStatus(status)
	}

	res, err := s.transitionOrderHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, transitionResponse{
		Status:   res.Status.String(),
		Progress: res.Progress,
		Version:  res.Version,
	})
}

// GetOrderTracking handles GET /api/v1/orders/{id}/tracking.
func (s *Server) GetOrderTracking(c echo.Context) error {
	orderID, err := bindOrderID(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderTrackingQuery(orderID)
	if err != nil {
		return badRequest(err)
	}

	res, err := s.orderTrackingHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTrackingResponse(res))
}

// GetStatusProgress handles GET /api/v1/statuses/{status}/progress.
func (s *Server) GetStatusProgress(c echo.Context) error {
	var name string
	if err := runtime.BindStyledParameterWithLocation(
		"simple", false, "status", runtime.ParamLocationPath, c.Param("status"), &name,
	); err != nil {
		return badRequest(err)
	}

	query, err := queries.NewGetStatusProgressQuery(name)
	if err != nil {
		return err
	}
	if workspaceID, ok := workspaceFrom(c); ok {
		query = query.WithWorkspace(workspaceID)
	}

	res, err := s.statusProgressHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, statusProgressResponse{
		Status:   res.Status.String(),
		Progress: res.Progress,
		Terminal: res.Terminal,
	})
}

func bindOrderID(c echo.Context) (kernel.UUID, error) {
	var id uuid.UUID
	if err := runtime.BindStyledParameterWithLocation(
		"simple", false, "id", runtime.ParamLocationPath, c.Param("id"), &id,
	); err != nil {
		return kernel.UUID{}, badRequest(err)
	}
	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, badRequest(err)
	}
	return orderID, nil
}
