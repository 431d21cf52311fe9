// Package metrics exposes daemon state and protocol activity as
// Prometheus metrics on an optional /metrics endpoint.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the Prometheus registry used by this package
	Registry = prometheus.NewRegistry()

	// UsersConnected is the number of occupied user slots
	UsersConnected = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "tinyircd_users_connected",
		Help: "Number of occupied user slots",
	})

	// UsersRegistered is the number of users that completed registration
	UsersRegistered = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "tinyircd_users_registered",
		Help: "Number of registered users",
	})

	// Channels is the number of channels with at least one member
	Channels = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "tinyircd_channels",
		Help: "Number of channels with members",
	})

	// CommandsTotal counts dispatched commands by verb
	CommandsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tinyircd_commands_total",
			Help: "Commands dispatched, by command",
		},
		[]string{"command"},
	)

	// DisconnectsTotal counts disconnects by reason
	DisconnectsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tinyircd_disconnects_total",
			Help: "Disconnects, by reason",
		},
		[]string{"reason"},
	)

	// PingsSent counts keepalive PINGs sent to idle users
	PingsSent = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "tinyircd_pings_sent_total",
		Help: "Keepalive PINGs sent",
	})
)

// Disconnect reasons
const (
	ReasonQuit      = "quit"
	ReasonTimeout   = "timeout"
	ReasonTransport = "transport"
	ReasonFull      = "full"
	ReasonShutdown  = "shutdown"
)

// ObserveTables records the current table occupancy
func ObserveTables(connected, registered, channels int) {
	UsersConnected.Set(float64(connected))
	UsersRegistered.Set(float64(registered))
	Channels.Set(float64(channels))
}

// Handler returns the /metrics HTTP handler for Registry
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve runs the metrics HTTP server on addr until ctx is done
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
