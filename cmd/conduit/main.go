package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/conduitml/conduit/config"
	"github.com/conduitml/conduit/logger"
	"github.com/conduitml/conduit/model"
	"github.com/conduitml/conduit/providers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", config.GetConfigPath(), "Path to config file")
		provider    = flag.String("provider", "", "Provider to use (overrides configured preferences)")
		modelID     = flag.String("model", "", "Model id (overrides the provider default)")
		stream      = flag.Bool("stream", false, "Stream the response as it arrives")
		jsonMode    = flag.Bool("json", false, "Request JSON output")
		system      = flag.String("system", "", "System prompt")
		temperature = flag.Float64("temperature", -1, "Sampling temperature (negative = provider default)")
		maxTokens   = flag.Int("max-tokens", 0, "Maximum output tokens (0 = provider default)")
		logFile     = flag.String("logfile", "", "Path to log file. If not set, logs to stdout/stderr")
		pretty      = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
	)
	flag.Parse()

	if *logFile != "" && *pretty {
		return fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logPath := *logFile
	if logPath == "" {
		logPath = cfg.LogFile
	}
	log, err := logger.Init(cfg.LogLevel, logPath, *pretty)
	if err != nil {
		return err
	}

	prompt, err := readPrompt(flag.Args())
	if err != nil {
		return err
	}

	opts := buildOptions(*jsonMode, *temperature, *maxTokens)

	prefs := cfg.ModelPreferences()
	if *provider != "" {
		prefs = []model.Preference{{Provider: *provider, Model: *modelID}}
	} else if *modelID != "" && len(prefs) > 0 {
		prefs[0].Model = *modelID
	}
	if len(prefs) == 0 {
		return fmt.Errorf("no provider selected; pass --provider or configure preferences in %s", *configPath)
	}

	registry := model.NewRegistry(cfg.ProviderConfig(), cfg.Providers)
	key, err := registry.Resolve(prefs)
	if err != nil {
		return err
	}

	adapter, err := providers.NewAdapter(key, opts, log)
	if err != nil {
		return err
	}
	adapter = model.WithRetry(adapter, model.DefaultRetryConfig(), log)
	adapter = model.WrapWithMiddleware(adapter, model.NewLoggingMiddleware(log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	messages := buildMessages(*system, prompt)

	if *stream {
		return streamResponse(ctx, adapter, messages)
	}
	return printResponse(ctx, adapter, messages)
}

// readPrompt takes the prompt from the remaining args, or from stdin when
// input is piped in.
func readPrompt(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		if prompt := strings.TrimSpace(string(data)); prompt != "" {
			return prompt, nil
		}
	}

	return "", fmt.Errorf("no prompt given; pass it as arguments or on stdin")
}

func buildOptions(jsonMode bool, temperature float64, maxTokens int) model.Options {
	var opts model.Options
	if jsonMode {
		opts.ResponseFormat = &model.ResponseFormat{Type: "json_object"}
	}
	if temperature >= 0 {
		opts.Temperature = &temperature
	}
	if maxTokens > 0 {
		opts.MaxTokens = &maxTokens
	}
	return opts
}

func buildMessages(system, prompt string) []model.Message {
	var messages []model.Message
	if system != "" {
		messages = append(messages, model.NewTextMessage(model.RoleSystem, system))
	}
	return append(messages, model.NewTextMessage(model.RoleUser, prompt))
}

func printResponse(ctx context.Context, adapter model.Adapter, messages []model.Message) error {
	resp, err := adapter.Invoke(ctx, messages)
	if err != nil {
		return err
	}

	fmt.Println(resp.Content)
	for _, tc := range resp.ToolCalls {
		fmt.Printf("tool call: %s(%s)\n", tc.Function.Name, tc.Function.Arguments)
	}
	if resp.Usage != nil {
		fmt.Fprintf(os.Stderr, "tokens: %d in, %d out, %d total\n",
			resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens)
	}
	return nil
}

func streamResponse(ctx context.Context, adapter model.Adapter, messages []model.Message) error {
	stream, err := adapter.InvokeStream(ctx, messages)
	if err != nil {
		return err
	}
	defer stream.Close()

	var calls []model.ToolCall
	var usage *model.Usage
	for stream.Next() {
		chunk := stream.Current()
		if chunk.Content != "" {
			fmt.Print(chunk.Content)
		}
		if len(chunk.ToolCallFragments) > 0 {
			calls = model.MergeToolCallFragments(calls, chunk.ToolCallFragments)
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
	}
	fmt.Println()
	if err := stream.Err(); err != nil {
		return err
	}

	for _, tc := range calls {
		fmt.Printf("tool call: %s(%s)\n", tc.Function.Name, tc.Function.Arguments)
	}
	if usage != nil {
		fmt.Fprintf(os.Stderr, "tokens: %d in, %d out, %d total\n",
			usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	}
	return nil
}
