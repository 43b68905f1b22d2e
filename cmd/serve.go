package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"zhihu_answer_publisher/display"
	"zhihu_answer_publisher/generator"
	"zhihu_answer_publisher/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local workspace server",
	Long: `Serve starts the local workspace: draft answers with the configured LLM,
preview them and publish them over a small JSON API. Panels are served under
/panels.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config server_addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	listen := cfg.ServerAddr
	if flagAddr != "" {
		listen = flagAddr
	}

	var agent *generator.Agent
	if llm, err := buildLLM(cfg); err != nil {
		logger.Warn("drafting disabled", slog.Any("err", err))
	} else if agent, err = generator.NewAgent(llm); err != nil {
		return err
	}

	client := newHTTPClient(cfg, logger)
	targets, err := buildCollection(cfg, client, true)
	if err != nil {
		return err
	}
	panels := display.NewHost(panelBaseURL(listen))
	pub, err := buildPublisher(cfg, client, panels, nil, cmd.OutOrStdout(), logger)
	if err != nil {
		return err
	}
	srv, err := server.New(server.Options{
		Agent:          agent,
		Publisher:      pub,
		Targets:        targets,
		Panels:         panels,
		AllowedOrigins: cfg.CORSOrigins,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-cmd.Context().Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx)
	}()

	logger.Info("starting web server", slog.String("addr", listen))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// panelBaseURL turns a listen address into the base of panel URLs.
func panelBaseURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
