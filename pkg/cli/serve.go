package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/retention/pkg/cli/config"
	controller "github.com/secmon-lab/retention/pkg/controller/http"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/service/advice"
	"github.com/secmon-lab/retention/pkg/service/llm"
	"github.com/secmon-lab/retention/pkg/usecase"
	"github.com/secmon-lab/retention/pkg/utils/metrics"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		slackCfg     config.Slack
		storageCfg   config.Storage
		geminiCfg    config.Gemini
		kafkaCfg     config.Kafka
		connectorCfg config.Connector
		employeesCfg config.Employees
	)

	flags := joinFlags(
		serverCfg.Flags(),
		slackCfg.Flags(),
		storageCfg.Flags(),
		geminiCfg.Flags(),
		kafkaCfg.Flags(),
		connectorCfg.Flags(),
		employeesCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting retention server",
				slog.Any("server", serverCfg),
				slog.Any("slack", slackCfg),
				slog.Any("storage", storageCfg),
				slog.Any("gemini", geminiCfg),
				slog.Any("kafka", kafkaCfg),
				slog.Any("connector", connectorCfg),
				slog.Any("employees", employeesCfg),
			)

			repo, err := storageCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safeClose(ctx, "repository", repo)

			if err := employeesCfg.Seed(ctx, repo); err != nil {
				return goerr.Wrap(err, "failed to load employees")
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			publisher := kafkaCfg.Configure(logger)
			defer safeClose(ctx, "event publisher", publisher)

			slackConnector := slackCfg.Configure(logger)
			manager := usecase.NewConnectionManager(slackConnector, slackConnector, usecase.NewChannelSelectionStore(),
				usecase.WithEventPublisher(publisher),
				usecase.WithMetrics(m),
				usecase.WithAuthTimeout(connectorCfg.AuthTimeout),
			)

			syncUC := usecase.NewSyncUseCase(repo, slackConnector, manager, usecase.WithSyncMetrics(m))
			syncUC.Start(ctx)
			defer syncUC.Stop(context.Background())

			advisor := newAdvisor(ctx, &geminiCfg, connectorCfg.MaxActions)

			server := controller.NewServer(ctx, serverCfg.Addr, controller.UseCases{
				Dashboard: usecase.NewDashboardUseCase(repo, advisor, m),
				Connector: usecase.NewConnectorUseCase(manager, repo, syncUC),
				Sync:      syncUC,
			}, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-errCh:
				return goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// newAdvisor returns the rule based advisor, preceded by Gemini when it is
// configured
func newAdvisor(ctx context.Context, geminiCfg *config.Gemini, maxActions int) interfaces.Advisor {
	rules := advice.NewRules(maxActions)

	client := geminiCfg.ConfigureOptional(ctx, ctxlog.From(ctx))
	if client == nil {
		return rules
	}
	return advice.NewFallback(llm.NewLLMService(client, llm.WithMaxActions(maxActions)), rules)
}
