package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/internal/progress"
	"github.com/w24010/delightful/internal/service"
	"github.com/w24010/delightful/pkg/httputil"
	"github.com/w24010/delightful/pkg/middleware"
)

const progressWriteWait = 10 * time.Second

var progressStreamsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "storefront_progress_streams_active",
	Help: "Number of open order progress websocket streams.",
})

// OrderHandler serves the order confirmation and tracking endpoints.
type OrderHandler struct {
	service  *service.CheckoutService
	logger   *slog.Logger
	interval time.Duration
	upgrader websocket.Upgrader
}

// NewOrderHandler creates a new order HTTP handler. interval is the progress
// tick period. origins restricts websocket upgrades.
func NewOrderHandler(svc *service.CheckoutService, logger *slog.Logger, interval time.Duration, origins middleware.OriginPolicy) *OrderHandler {
	return &OrderHandler{
		service:  svc,
		logger:   logger,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.CheckRequest,
		},
	}
}

// ProgressMessage is one frame of the tracking stream.
type ProgressMessage struct {
	OrderID     string               `json:"order_id"`
	Progress    int                  `json:"progress"`
	CurrentStep int                  `json:"current_step"`
	Stages      []domain.StageStatus `json:"stages"`
	Done        bool                 `json:"done"`
}

func newProgressMessage(orderID string, p domain.Progress) ProgressMessage {
	return ProgressMessage{
		OrderID:     orderID,
		Progress:    p.Percent,
		CurrentStep: p.Step,
		Stages:      p.Stages(),
		Done:        p.Done(),
	}
}

// --- Handlers ---

// GetConfirmation handles GET /api/v1/orders/confirmation
func (h *OrderHandler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	confirmation, err := h.service.Confirmation(q.Get("orderId"), q.Get("total"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, confirmation)
}

// ListStages handles GET /api/v1/orders/stages
func (h *OrderHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, domain.OrderStages)
}

// StreamProgress handles GET /api/v1/orders/{orderId}/progress.
// It upgrades to a websocket and pushes the tracking state on every tick
// until delivery, then closes normally. A client disconnect stops the timer.
func (h *OrderHandler) StreamProgress(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.WarnContext(r.Context(), "progress stream upgrade failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		return
	}
	defer conn.Close()

	// Clear the server read deadline inherited from the HTTP request.
	_ = conn.SetReadDeadline(time.Time{})

	progressStreamsActive.Inc()
	defer progressStreamsActive.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var mu sync.Mutex
	send := func(p domain.Progress) error {
		mu.Lock()
		defer mu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(progressWriteWait))
		return conn.WriteJSON(newProgressMessage(orderID, p))
	}

	if err := send(domain.NewProgress()); err != nil {
		return
	}

	runner := progress.NewRunner(h.interval, func(p domain.Progress) {
		if err := send(p); err != nil {
			cancel()
		}
	})
	runner.Start(ctx)

	// The read loop only notices the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-runner.Done():
	case <-ctx.Done():
	}
	runner.Stop()

	final := runner.State()
	if !final.Done() {
		h.logger.DebugContext(r.Context(), "progress stream closed by client",
			slog.String("order_id", orderID),
			slog.Int("progress", final.Percent),
		)
		return
	}

	mu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "delivered"),
		time.Now().Add(progressWriteWait))
	mu.Unlock()
}
