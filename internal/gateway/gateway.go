// Package gateway assembles the HTTP gateway from configuration: the node RPC
// client, the demo service and the shared router.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/trace"

	demohandler "ledgergate/internal/demo/handler"
	demometrics "ledgergate/internal/demo/metrics"
	"ledgergate/internal/demo/service"
	ledgermetrics "ledgergate/internal/ledger/metrics"
	"ledgergate/internal/ledger/rpc"
	"ledgergate/internal/ledger/tracer"
	"ledgergate/internal/platform/config"
	"ledgergate/internal/platform/health"
	httptransport "ledgergate/internal/transport/http"
	"ledgergate/pkg/platform/circuit"
	"ledgergate/pkg/platform/middleware/request"
	"ledgergate/pkg/platform/middleware/throttle"
)

// Gateway is a connected, ready-to-serve gateway.
type Gateway struct {
	Handler  http.Handler
	Node     *rpc.Client
	Breaker  *circuit.Breaker
	Registry *prometheus.Registry
}

type Option func(*options)

type options struct {
	httpClient     *http.Client
	tracerProvider trace.TracerProvider
}

// WithHTTPClient sets the client used for node RPC calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTracerProvider traces node RPC calls on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// New connects to the node and builds the router. It fails when the node
// cannot be reached or rejects the configured credentials.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger, opts ...Option) (*Gateway, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var otelOpts []tracer.OTelOption
	if o.tracerProvider != nil {
		otelOpts = append(otelOpts, tracer.WithTracerProvider(o.tracerProvider))
	}
	nodeMetrics := ledgermetrics.New(reg)
	breaker := circuit.New("ledger_node", circuit.OnStateChange(func(name string, to circuit.State) {
		nodeMetrics.SetCircuitOpen(to == circuit.StateOpen)
		logger.Warn("ledger node circuit changed state", "circuit", name, "state", to.String())
	}))
	rpcOpts := []rpc.Option{
		rpc.WithLogger(logger),
		rpc.WithMetrics(nodeMetrics),
		rpc.WithTracer(tracer.NewOTel(otelOpts...)),
		rpc.WithBreaker(breaker),
	}
	if o.httpClient != nil {
		rpcOpts = append(rpcOpts, rpc.WithHTTPClient(o.httpClient))
	}
	client := rpc.New(rpc.Config{
		URL:      cfg.Node.URL,
		User:     cfg.Node.User,
		Password: cfg.Node.Password,
		Timeout:  cfg.Node.Timeout,
	}, rpcOpts...)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to ledger node %s: %w", cfg.Node.URL, err)
	}

	svc := service.New(service.RPCNode{Client: client}, logger,
		service.WithMetrics(demometrics.New(reg)),
		service.WithPageSize(cfg.Demo.PageSize),
		service.WithServiceOrganisations(cfg.Demo.ServiceOrganisations),
		service.WithWorkflowWaitTimeout(cfg.Demo.WorkflowWaitTimeout),
	)

	probes := health.New(cfg.Environment)
	probes.RegisterCheck("ledger_node", func(ctx context.Context) error {
		_, err := client.NodeInfo(ctx)
		return err
	})
	probes.RegisterCheck("ledger_node_circuit", func(context.Context) error {
		if breaker.IsOpen() {
			return errors.New("recent node calls keep failing")
		}
		return nil
	})

	router := httptransport.NewRouter(httptransport.Config{
		Logger:   logger,
		Latency:  request.NewMetrics(reg),
		Throttle: throttle.New(cfg.Throttle.RPS, cfg.Throttle.Burst, logger),
		Gatherer: reg,
	}, probes, demohandler.New(svc, logger, demohandler.WithRequestTimeout(cfg.RequestTimeout)))

	return &Gateway{Handler: router, Node: client, Breaker: breaker, Registry: reg}, nil
}
