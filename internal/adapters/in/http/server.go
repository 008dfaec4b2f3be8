// Package http exposes the order lifecycle and location tracking over a JSON
// API served by echo.
package http

import (
	"net/http"
	"strconv"
	"time"

	"kargo/internal/core/application/usecases/commands"
	"kargo/internal/core/application/usecases/queries"
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/domain/model/order"
	"kargo/internal/core/domain/services"
	"kargo/internal/pkg/auth"
	"kargo/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Paging headers of GET /api/v1/orders.
const (
	HeaderTotalCount = "X-Total-Count"
	HeaderNextOffset = "X-Next-Offset"
)

// Handlers are the use cases the API serves.
type Handlers struct {
	CreateOrder     commands.CreateOrderCommandHandler
	ClaimOrder      commands.ClaimOrderCommandHandler
	AdvanceOrder    commands.AdvanceOrderCommandHandler
	ReviewOrder     commands.ReviewOrderCommandHandler
	ReportLocation  commands.ReportLocationCommandHandler
	ListAvailable   queries.ListAvailableOrdersQueryHandler
	ListForActor    queries.ListOrdersForActorQueryHandler
	GetOrder        queries.GetOrderQueryHandler
	CourierLocation queries.GetCourierLocationQueryHandler
}

// Server adapts HTTP requests to command and query handlers. Every handler
// checks the caller's role against the access policy first.
type Server struct {
	policy services.AccessPolicy
	h      Handlers
}

func NewServer(policy services.AccessPolicy, h Handlers) *Server {
	return &Server{policy: policy, h: h}
}

// Register mounts the API routes on g, which must already authenticate.
func (s *Server) Register(g *echo.Group) {
	g.POST("/orders", s.CreateOrder)
	g.GET("/orders", s.ListOrders)
	g.GET("/orders/available", s.ListAvailableOrders)
	g.GET("/orders/:id", s.GetOrder)
	g.POST("/orders/:id/claim", s.ClaimOrder)
	g.PUT("/orders/:id/status", s.AdvanceOrder)
	g.POST("/orders/:id/approve", s.ApproveOrder)
	g.POST("/orders/:id/reject", s.RejectOrder)
	g.POST("/location", s.ReportLocation)
	g.GET("/couriers/:id/location", s.GetCourierLocation)
}

// authorize returns the caller if their role may perform action.
func (s *Server) authorize(c echo.Context, action services.Action) (auth.Principal, error) {
	p, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.Principal{}, auth.ErrMissingToken
	}
	if err := s.policy.Authorize(p.Role, action); err != nil {
		return auth.Principal{}, err
	}
	return p, nil
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	p, err := s.authorize(c, services.ActionCreateOrder)
	if err != nil {
		return err
	}

	var req CreateOrderRequest
	if err = c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	customerID, err := kernel.UUIDFromString(req.CustomerID)
	if err != nil {
		return err
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, p.UserID, customerID,
		req.Pickup.input(), req.Delivery.input(),
		commands.ParcelInput{
			Description:   req.Package.Description,
			WeightKg:      req.Package.WeightKg,
			DeclaredValue: req.Package.DeclaredValue,
			Instructions:  req.Package.Instructions,
		},
		req.DeliveryFee,
	)
	if err != nil {
		return err
	}
	if err = s.h.CreateOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}

	return s.respondWithOrder(c, http.StatusCreated, orderID, p)
}

// ListOrders handles GET /api/v1/orders.
func (s *Server) ListOrders(c echo.Context) error {
	p, err := s.authorize(c, services.ActionListOwnOrders)
	if err != nil {
		return err
	}

	limit, err := intParam(c, "limit")
	if err != nil {
		return err
	}
	offset, err := intParam(c, "offset")
	if err != nil {
		return err
	}

	query, err := queries.NewListOrdersForActorQuery(p.UserID, p.Role, limit, offset)
	if err != nil {
		return err
	}
	page, err := s.h.ListForActor.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	c.Response().Header().Set(HeaderTotalCount, strconv.FormatInt(page.Total, 10))
	if next, ok := page.NextOffset(); ok {
		c.Response().Header().Set(HeaderNextOffset, strconv.Itoa(next))
	}
	return c.JSON(http.StatusOK, newOrderResponses(page.Orders))
}

// ListAvailableOrders handles GET /api/v1/orders/available.
func (s *Server) ListAvailableOrders(c echo.Context) error {
	if _, err := s.authorize(c, services.ActionListAvailable); err != nil {
		return err
	}

	views, err := s.h.ListAvailable.Handle(c.Request().Context(), queries.NewListAvailableOrdersQuery())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderResponses(views))
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	p, err := s.authorize(c, services.ActionViewOrder)
	if err != nil {
		return err
	}
	orderID, err := pathID(c)
	if err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, p)
}

// ClaimOrder handles POST /api/v1/orders/:id/claim.
func (s *Server) ClaimOrder(c echo.Context) error {
	p, err := s.authorize(c, services.ActionClaimOrder)
	if err != nil {
		return err
	}
	orderID, err := pathID(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewClaimOrderCommand(orderID, p.UserID)
	if err != nil {
		return err
	}
	if err = s.h.ClaimOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, p)
}

// AdvanceOrder handles PUT /api/v1/orders/:id/status.
func (s *Server) AdvanceOrder(c echo.Context) error {
	p, err := s.authorize(c, services.ActionAdvanceOrder)
	if err != nil {
		return err
	}
	orderID, err := pathID(c)
	if err != nil {
		return err
	}

	var req AdvanceOrderRequest
	if err = c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAdvanceOrderCommand(orderID, p.UserID, target)
	if err != nil {
		return err
	}
	if err = s.h.AdvanceOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, p)
}

// ApproveOrder handles POST /api/v1/orders/:id/approve.
func (s *Server) ApproveOrder(c echo.Context) error {
	return s.review(c, services.ActionApproveOrder, commands.Approve)
}

// RejectOrder handles POST /api/v1/orders/:id/reject.
func (s *Server) RejectOrder(c echo.Context) error {
	return s.review(c, services.ActionRejectOrder, commands.Reject)
}

func (s *Server) review(c echo.Context, action services.Action, decision commands.Decision) error {
	p, err := s.authorize(c, action)
	if err != nil {
		return err
	}
	orderID, err := pathID(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewReviewOrderCommand(orderID, p.UserID, decision)
	if err != nil {
		return err
	}
	if err = s.h.ReviewOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, p)
}

// ReportLocation handles POST /api/v1/location. Live pushes are best effort
// and never change the response.
func (s *Server) ReportLocation(c echo.Context) error {
	p, err := s.authorize(c, services.ActionReportLocation)
	if err != nil {
		return err
	}

	var req ReportLocationRequest
	if err = c.Bind(&req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	var ts time.Time
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	cmd, err := commands.NewReportLocationCommand(p.UserID, req.Latitude, req.Longitude, req.Accuracy, ts)
	if err != nil {
		return err
	}
	if err = s.h.ReportLocation.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

// GetCourierLocation handles GET /api/v1/couriers/:id/location.
func (s *Server) GetCourierLocation(c echo.Context) error {
	if _, err := s.authorize(c, services.ActionViewLocation); err != nil {
		return err
	}
	courierID, err := pathID(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetCourierLocationQuery(courierID)
	if err != nil {
		return err
	}
	loc, err := s.h.CourierLocation.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CourierLocationResponse{
		CourierID: loc.CourierID.String(),
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Accuracy:  loc.Accuracy,
		Timestamp: loc.RecordedAt,
	})
}

func (s *Server) respondWithOrder(c echo.Context, status int, orderID kernel.UUID, p auth.Principal) error {
	query, err := queries.NewGetOrderQuery(orderID, p.UserID, p.Role)
	if err != nil {
		return err
	}
	view, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(status, newOrderResponse(view))
}

func pathID(c echo.Context) (kernel.UUID, error) {
	return kernel.UUIDFromString(c.Param("id"))
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return v, nil
}

// Require is a route middleware for endpoints served outside Server, such as
// the WebSocket upgrade.
func (s *Server) Require(action services.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := s.authorize(c, action); err != nil {
				return err
			}
			return next(c)
		}
	}
}
