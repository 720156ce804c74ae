package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pbhm215/everyday-pda/assistant"
	"github.com/pbhm215/everyday-pda/assistant/llm"
	"github.com/pbhm215/everyday-pda/fetcher"
	"github.com/pbhm215/everyday-pda/internal/profile"
	"github.com/pbhm215/everyday-pda/internal/version"
	pdacron "github.com/pbhm215/everyday-pda/plugin/cron"
	"github.com/pbhm215/everyday-pda/plugin/telegram"
	"github.com/pbhm215/everyday-pda/server"
	"github.com/pbhm215/everyday-pda/store"
	"github.com/pbhm215/everyday-pda/store/db"
)

var rootCmd = &cobra.Command{
	Use:     "everyday-pda",
	Short:   `A conversational personal assistant. Ask about stocks, news, weather, canteen menus, class schedules, travel times, hotels and flights.`,
	Version: version.String(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Only load .env for direct binary execution (not when running as systemd service)
		if !isRunningAsSystemdService() {
			_ = godotenv.Load()
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Version: version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			panic(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			return
		}

		storeInstance := store.New(dbDriver)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate", "error", err)
			return
		}

		llmService, err := llm.NewService(&llm.Config{
			Provider: instanceProfile.LLMProvider,
			Model:    instanceProfile.LLMModel,
			APIKey:   instanceProfile.LLMAPIKey,
			BaseURL:  instanceProfile.LLMBaseURL,
			Timeout:  instanceProfile.LLMTimeout,
		})
		if err != nil {
			slog.Error("failed to create llm service", "error", err)
			return
		}

		services := fetcher.New(fetcher.Config{
			TwelveDataAPIKey:    instanceProfile.TwelveDataAPIKey,
			NewsAPIKey:          instanceProfile.NewsAPIKey,
			WeatherAPIKey:       instanceProfile.WeatherAPIKey,
			OpenRouteAPIKey:     instanceProfile.OpenRouteServiceAPIKey,
			AmadeusClientID:     instanceProfile.AmadeusClientID,
			AmadeusClientSecret: instanceProfile.AmadeusClientSecret,
			RaplaURL:            instanceProfile.RaplaURL,
		})

		catalog := assistant.NewCatalog(services.Capabilities())
		processor := llm.NewProcessor(llmService, catalog)
		orchestrator := assistant.NewOrchestrator(
			catalog, processor, processor, processor, processor, storeInstance,
		)

		s, err := server.NewServer(ctx, instanceProfile, storeInstance, orchestrator)
		if err != nil {
			slog.Error("failed to create server", "error", err)
			return
		}

		var notifiers []pdacron.Notifier
		if instanceProfile.TelegramBotToken != "" {
			bot, err := telegram.NewBot(instanceProfile.TelegramBotToken, orchestrator, storeInstance)
			if err != nil {
				slog.Error("failed to create telegram bot", "error", err)
				return
			}
			go bot.Start(ctx)
			notifiers = append(notifiers, bot)
		}

		scheduler := pdacron.NewScheduler(instanceProfile, orchestrator, notifiers...)
		if err := scheduler.Start(); err != nil {
			slog.Error("failed to start scheduler", "error", err)
			return
		}

		c := make(chan os.Signal, 1)
		// Trigger graceful shutdown on SIGINT or SIGTERM.
		// SIGTERM is the graceful shutdown signal for most systems,
		// eg., Kubernetes, systemd.
		signal.Notify(c, terminationSignals...)

		go func() {
			<-c
			scheduler.Stop()
			s.Shutdown(ctx)
			cancel()
		}()

		printGreetings(instanceProfile)

		if err := s.Start(ctx); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				slog.Error("failed to start server", "error", err)
				cancel()
			}
		}

		<-ctx.Done()
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "postgres")
	viper.SetDefault("port", 8000)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8000, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "postgres", "database driver (postgres, sqlite)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")

	for _, key := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("everydaypda")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("everyday-pda %s started successfully!\n", profile.Version)
	fmt.Printf("Build: %s\n", version.StringFull())

	if !version.IsVersionGreaterOrEqualThan(version.Version, "1.0.0") {
		fmt.Fprint(os.Stderr, "Pre-release build\n")
	}
	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)

	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
	}
	if !profile.IsAIEnabled() {
		fmt.Fprint(os.Stderr, "Warning: no LLM API key configured, conversational endpoints will fail\n")
	}
}

// isRunningAsSystemdService detects if the process is running under systemd.
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
