// Package cmd provides the trekker command line client.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/trekker-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	noBanner bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "trekker",
	Short: "Trekker - travel booking API client",
	Long: `trekker talks to the Trekker travel-booking API and keeps the login
session between invocations.

Configuration:
  Settings are read from TREKKER_* environment variables, optionally
  loaded from a .env file.
  Example: TREKKER_API_URL=https://trekker.example.com/api

  The session is stored in sqlite (default), redis or memory, selected
  with TREKKER_STORE.

Commands:
  register    Create an account
  login       Log in and store the session
  logout      Invalidate the refresh token and clear the session
  whoami      Fetch the current user from the API
  status      Show the stored session without contacting the API
  profile     Update profile fields or upload a picture
  password    Change the account password
  blog        Blog posts and comments
  hotels      Hotels, rooms and reservations
  tours       Tours and bookings`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default: ./.env if present)")
	rootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false, "do not print the banner")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if envFile != "" {
		cfg, err = config.New(envFile)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return err
	}

	setupLogger(cfg.GetLogLevel())
	if !noBanner {
		displayAppname(cfg.GetAppName())
	}
	return nil
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(os.Stderr, myFigure.String())
}
