package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"BotDesk/internal/config"
	"BotDesk/internal/initial"
	adminService "BotDesk/internal/modules/admin/application/service"
	adminPersistence "BotDesk/internal/modules/admin/infrastructure/persistence"
	botService "BotDesk/internal/modules/bot/application/service"
	botPersistence "BotDesk/internal/modules/bot/infrastructure/persistence"
	"BotDesk/pkg/util/myjwt"
	"BotDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	seedTenant   string
	seedEmail    string
	seedPassword string
	seedReset    bool
)

var rootCmd = &cobra.Command{
	Use:           "BotDesk",
	Short:         "BotDesk - multi-tenant LINE chatbot backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and background workers",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the bootstrap admin and the default bot of a tenant",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $BOTDESK_CONFIG or "+config.DefaultPath+")")
	seedCmd.Flags().StringVar(&seedTenant, "tenant", "", "tenant of the default bot (default lineConfig.defaultTenant)")
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "admin email (default adminConfig.email)")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "admin password (default adminConfig.password)")
	seedCmd.Flags().BoolVar(&seedReset, "reset-password", false, "overwrite the password of an existing admin")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig 读取配置并初始化日志，所有子命令共用
func loadConfig() (*config.Config, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	zlog.Init(zlog.Options{
		LogPath:    conf.LogConfig.LogPath,
		Level:      conf.LogConfig.Level,
		MaxSizeMB:  conf.LogConfig.MaxSizeMB,
		MaxBackups: conf.LogConfig.MaxBackups,
		MaxAgeDays: conf.LogConfig.MaxAgeDays,
	})
	if conf.MainConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return conf, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, conf)
	if err != nil {
		zlog.Error("init app failed", zap.Error(err))
		return err
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Error("server stopped with error", zap.Error(err))
		return err
	}
	zlog.Info("server stopped")
	return nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	defer zlog.Sync()

	db, err := initial.NewGormDB(conf.MysqlConfig)
	if err != nil {
		return err
	}
	if err := initial.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	zlog.Info("database migrated", zap.String("database", conf.MysqlConfig.DatabaseName))
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	defer zlog.Sync()
	ctx := cmd.Context()

	db, err := initial.NewGormDB(conf.MysqlConfig)
	if err != nil {
		return err
	}
	if err := initial.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	email := firstNonEmpty(seedEmail, conf.AdminConfig.Email)
	password := firstNonEmpty(seedPassword, conf.AdminConfig.Password)
	auth := adminService.NewAuthService(adminPersistence.NewAdminRepository(db), myjwt.Options{})
	if err := auth.EnsureBootstrapAdmin(ctx, email, password); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if seedReset {
		if err := auth.ResetPassword(ctx, email, password); err != nil {
			return fmt.Errorf("reset admin password: %w", err)
		}
	}

	tenant := firstNonEmpty(seedTenant, conf.LineConfig.DefaultTenant)
	bots := botService.NewBotService(
		botPersistence.NewBotRepository(db),
		botPersistence.NewSecretRepository(db),
		botPersistence.NewConfigRepository(db),
		nil,
	)
	bot, err := bots.InitDefault(ctx, tenant)
	if err != nil {
		return fmt.Errorf("init default bot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "tenant=%s bot=%s admin=%s\n", tenant, bot.Id, email)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
