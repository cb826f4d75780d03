package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vavlxxx/vkgpt/internal/bot"
	"github.com/vavlxxx/vkgpt/internal/configuration"
	"github.com/vavlxxx/vkgpt/internal/conversation"
	"github.com/vavlxxx/vkgpt/internal/llm"
	"github.com/vavlxxx/vkgpt/internal/logging"
	"github.com/vavlxxx/vkgpt/internal/store"
	"github.com/vavlxxx/vkgpt/internal/vk"
)

const defaultConfigFilepath = "~/.config/vkgpt/config.json"

func main() {
	var configFilepath string
	rootCmd := &cobra.Command{
		Use:     "vkgpt",
		Short:   "VK chat bot backed by an LLM completion API",
		Version: "1.0",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFilepath)
		},
	}
	rootCmd.Flags().StringVarP(&configFilepath, "config", "c", defaultConfigFilepath, "path to the configuration file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configFilepath string) error {
	config, err := configuration.Parse(configFilepath)
	if err != nil {
		return err
	}

	logger, err := logging.New(config.LoggingMode)
	if err != nil {
		return err
	}
	defer logger.Sync()

	s, err := store.New(config.DatabasePath)
	if err != nil {
		return err
	}
	defer s.Close()

	requestTimeout := time.Duration(config.RequestTimeout) * time.Second
	completer, err := llm.NewOpenAIClient(&llm.Opts{
		APIKey:           config.OpenaiAPIKey,
		BaseURL:          config.OpenaiAPIHost,
		Model:            config.Model,
		MaxTokens:        config.MaxTokens,
		Temperature:      config.Temperature,
		InputPricePer1K:  config.InputPricePer1K,
		OutputPricePer1K: config.OutputPricePer1K,
	}, logger, &http.Client{Timeout: requestTimeout})
	if err != nil {
		return err
	}

	vkClient, err := vk.NewClient(config.VKToken, requestTimeout)
	if err != nil {
		return err
	}

	conversations := conversation.NewService(s, completer, logger, config.HistoryLimit)
	b := bot.New(vkClient, conversations, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return b.Run(ctx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Infow("bot stopped")
	return nil
}
