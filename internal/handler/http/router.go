package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cdanpc/CampusMart/internal/service"
	"github.com/cdanpc/CampusMart/pkg/health"
	"github.com/cdanpc/CampusMart/pkg/middleware"
)

// NewRouter creates a chi router with all marketplace routes registered.
func NewRouter(
	orderService *service.OrderService,
	reviewService *service.ReviewService,
	notificationService *service.NotificationService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("campusmart"))
	r.Use(middleware.Tracing("campusmart"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	orderHandler := NewOrderHandler(orderService, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)
	notificationHandler := NewNotificationHandler(notificationService, logger)

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", orderHandler.CreateOrder)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Get("/{id}/detail", orderHandler.GetOrderDetail)
		r.Get("/buyer/{buyerId}", orderHandler.ListBuyerOrders)
		r.Get("/seller/{sellerId}", orderHandler.ListSellerOrders)
		r.Get("/product/{productId}", orderHandler.ListProductOrders)
		r.Put("/{id}/status", orderHandler.UpdateOrderStatus)
		r.Post("/{id}/cancel", orderHandler.CancelOrder)
	})

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", reviewHandler.CreateReview)
		r.Get("/{id}", reviewHandler.GetReview)
		r.Get("/seller/{sellerId}", reviewHandler.ListSellerReviews)
		r.Get("/seller/{sellerId}/summary", reviewHandler.GetSellerRatingSummary)
		r.Get("/reviewer/{reviewerId}", reviewHandler.ListReviewerReviews)
		r.Get("/product/{productId}", reviewHandler.ListProductReviews)
		r.Put("/{id}", reviewHandler.UpdateReview)
		r.Delete("/{id}", reviewHandler.DeleteReview)
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Get("/{id}", notificationHandler.GetNotification)
		r.Get("/profile/{profileId}", notificationHandler.ListNotifications)
		r.Get("/profile/{profileId}/type/{type}", notificationHandler.ListByType)
		r.Get("/profile/{profileId}/unread", notificationHandler.ListUnread)
		r.Get("/profile/{profileId}/unread/count", notificationHandler.CountUnread)
		r.Patch("/{id}/read", notificationHandler.MarkRead)
		r.Patch("/profile/{profileId}/read-all", notificationHandler.MarkAllRead)
		r.Delete("/{id}", notificationHandler.DeleteNotification)
		r.Delete("/profile/{profileId}", notificationHandler.DeleteAllNotifications)
	})

	return r
}
