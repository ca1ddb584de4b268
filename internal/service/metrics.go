package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersPlacedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders placed, by payment method",
		},
		[]string{"payment_method"},
	)

	orderRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_rejections_total",
			Help: "Order placements rejected before the processing delay, by reason",
		},
		[]string{"reason"},
	)

	geolocationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_geolocation_total",
			Help: "Current-location lookups, by outcome (success or a failure code)",
		},
		[]string{"outcome"},
	)
)
