package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geonix/geonix-web/internal/config"
	"github.com/geonix/geonix-web/internal/i18n"
	"github.com/geonix/geonix-web/internal/logging"
	"github.com/geonix/geonix-web/internal/mail"
	"github.com/geonix/geonix-web/internal/server"
	"github.com/geonix/geonix-web/internal/service"
	"github.com/geonix/geonix-web/internal/telemetry"
	"github.com/geonix/geonix-web/internal/version"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the geonix command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "geonix",
		Short: "GEONIX website backend",
		Long: `geonix serves the GEONIX website contact endpoint. Each accepted inquiry
is relayed to the sales inbox and answered with an automatic reply.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand(), newPreviewCommand(), newVersionCommand())
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logging.Configure(&logging.Config{
				Level:      cfg.LogLevel,
				File:       cfg.LogFile,
				MaxSize:    100,
				MaxBackups: 3,
				MaxAge:     7,
			})
			logger := logging.GetLogger()
			defer logger.Close()

			logger.Info("Starting %s %s in %s mode", server.ServiceName, version.Info(), cfg.Environment)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, server.ServiceName, version.Version)
			if err != nil {
				logger.Error("Failed to initialize tracing: %v", err)
				return err
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(flushCtx); err != nil {
					logger.Warn("Failed to flush traces: %v", err)
				}
			}()

			srv, err := server.NewServer(cfg, server.Dependencies{Logger: logger})
			if err != nil {
				logger.Error("Failed to create server: %v", err)
				return err
			}

			if err := srv.Start(ctx); err != nil {
				logger.Error("Server stopped with error: %v", err)
				return err
			}
			return nil
		},
	}
}

// previewInquiry holds the sample submission rendered by preview
type previewInquiry struct {
	name    string
	email   string
	company string
	phone   string
	website string
	message string
}

func newPreviewCommand() *cobra.Command {
	in := previewInquiry{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print both emails for a sample inquiry without sending",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runPreview(cmd.Context(), cmd.OutOrStdout(), previewMailConfig(cfg.Mail), cfg.Contact, in)
		},
	}

	cmd.Flags().StringVar(&in.name, "name", "김철수", "submitter name")
	cmd.Flags().StringVar(&in.email, "email", "kim@example.com", "submitter email")
	cmd.Flags().StringVar(&in.company, "company", "", "submitter company")
	cmd.Flags().StringVar(&in.phone, "phone", "", "submitter phone")
	cmd.Flags().StringVar(&in.website, "website", "", "submitter website")
	cmd.Flags().StringVar(&in.message, "message", "유연탄 수입 견적을 요청드립니다.", "inquiry body")

	return cmd
}

// previewMailConfig fills unset mail settings with placeholders so a
// preview renders without real credentials.
func previewMailConfig(m config.MailConfig) config.MailConfig {
	if m.Host == "" {
		m.Host = "smtp.example.com"
	}
	if m.User == "" {
		m.User = "noreply@example.com"
	}
	if m.Password == "" {
		m.Password = "preview"
	}
	if m.To == "" {
		m.To = "sales@example.com"
	}
	return m
}

func runPreview(ctx context.Context, w io.Writer, mailCfg config.MailConfig, contactCfg config.ContactConfig, in previewInquiry) error {
	if ctx == nil {
		ctx = context.Background()
	}

	renderer, err := mail.NewRenderer()
	if err != nil {
		return err
	}

	svc := service.NewContactService(
		mailCfg,
		mail.NewWriterSender(w),
		renderer,
		i18n.Default(),
		service.NewTicketGenerator(contactCfg.TicketPrefix, contactCfg.TicketLocation()),
		logging.NewWriterLogger(io.Discard, logging.LevelError),
	)

	result, err := svc.Submit(ctx, service.Inquiry{
		Name:    in.name,
		Email:   in.email,
		Company: in.company,
		Phone:   in.phone,
		Website: in.website,
		Message: in.message,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "ticket %s, auto-reply language %s\n", result.Ticket, result.Language)
	return err
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "geonix %s\n", version.Info())
		},
	}
}
