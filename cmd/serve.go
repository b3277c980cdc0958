// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/erp-access-service/internal/authorization"
	"github.com/canonical/erp-access-service/internal/config"
	"github.com/canonical/erp-access-service/internal/db"
	"github.com/canonical/erp-access-service/internal/kratos"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/monitoring/prometheus"
	"github.com/canonical/erp-access-service/internal/openfga"
	"github.com/canonical/erp-access-service/internal/storage"
	"github.com/canonical/erp-access-service/internal/tracing"
	"github.com/canonical/erp-access-service/pkg/access"
	"github.com/canonical/erp-access-service/pkg/authentication"
	"github.com/canonical/erp-access-service/pkg/organizations"
	"github.com/canonical/erp-access-service/pkg/provisioning"
	"github.com/canonical/erp-access-service/pkg/teams"
	"github.com/canonical/erp-access-service/pkg/web"
	"github.com/canonical/erp-access-service/pkg/webhooks"
)

const serviceName = "erp-access-service"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		main()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %v", specs)
	defer logger.Sync()

	monitor := prometheus.NewMonitor(serviceName, logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbClient, err := db.NewDBClient(
		db.Config{
			DSN:             specs.DSN,
			MaxConns:        specs.DBMaxConns,
			MinConns:        specs.DBMinConns,
			MaxConnLifetime: specs.DBMaxConnLifetime,
			MaxConnIdleTime: specs.DBMaxConnIdleTime,
			TracingEnabled:  specs.TracingEnabled,
		},
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()

	s := storage.NewStorage(dbClient, tracer, monitor, logger)
	authorizer := newAuthorizer(specs, tracer, monitor, logger)
	kratosClient := kratos.NewClient(specs.KratosAdminURL, tracer, monitor, logger)

	resolver := access.NewResolver(s, specs.RoleCacheTTL, tracer, monitor, logger)
	defer resolver.Close()

	authn, err := authentication.NewAuthenticator(
		context.Background(),
		authentication.Config{
			Enabled:         specs.AuthenticationEnabled,
			Issuer:          specs.OAuth2Issuer,
			JWKSURL:         specs.OAuth2JWKSURL,
			AllowedSubjects: specs.AllowedSubjects,
			RequiredScope:   specs.RequiredScope,
		},
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to set up authentication: %w", err)
	}

	router := web.NewRouter(
		web.Services{
			Organizations: organizations.NewService(s, authorizer, resolver, tracer, monitor, logger),
			Provisioning:  provisioning.NewService(s, dbClient, authorizer, kratosClient, resolver, tracer, monitor, logger),
			Teams:         teams.NewService(s, resolver, tracer, monitor, logger),
			Webhooks:      webhooks.NewService(s, authorizer, resolver, tracer, monitor, logger),
		},
		authn.Authenticate,
		access.NewMiddleware(resolver, access.NewGate(), tracer, monitor, logger),
		dbClient,
		specs.AllowedOrigins,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}

// newAuthorizer mirrors grants into OpenFGA when authorization is enabled,
// otherwise tuples are dropped by the noop client.
func newAuthorizer(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *authorization.Authorizer {
	if !specs.AuthorizationEnabled {
		logger.Info("Using noop authorizer")
		return authorization.NewAuthorizer(openfga.NewNoopClient(tracer, monitor, logger), tracer, monitor, logger)
	}

	ofga := openfga.NewClient(
		openfga.NewConfig(
			specs.OpenfgaApiScheme,
			specs.OpenfgaApiHost,
			specs.OpenfgaStoreId,
			specs.OpenfgaApiToken,
			specs.OpenfgaModelId,
			specs.Debug,
			tracer,
			monitor,
			logger,
		),
	)

	authorizer := authorization.NewAuthorizer(ofga, tracer, monitor, logger)
	logger.Info("Authorization is enabled")

	if err := authorizer.ValidateModel(context.Background()); err != nil {
		panic(fmt.Sprintf("Invalid authorization model provided: %v", err))
	}

	return authorizer
}

func main() {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
