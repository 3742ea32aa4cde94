package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/umputun/ideafilter/pkg/config"
	"github.com/umputun/ideafilter/pkg/digest"
	"github.com/umputun/ideafilter/pkg/llm"
	"github.com/umputun/ideafilter/pkg/mail"
	"github.com/umputun/ideafilter/pkg/reddit"
	"github.com/umputun/ideafilter/pkg/report"
)

// Opts with all CLI options. Every option is normally set through the environment.
type Opts struct {
	Config        string `short:"c" long:"config" env:"IDEA_FILTER_CONFIG" description:"optional yaml configuration file"`
	OpenRouterKey string `long:"openrouter-key" env:"OPENROUTER_KEY" description:"model api key"`
	ReportFile    string `long:"report-file" env:"REPORT_FILE" description:"also write the digest to this file"`
	Proxy         string `long:"proxy" env:"HTTP_PROXY" description:"proxy url for anonymous reddit fetches"`

	Reddit struct {
		ClientID     string `long:"client-id" env:"CLIENT_ID" description:"reddit app client id"`
		ClientSecret string `long:"client-secret" env:"CLIENT_SECRET" description:"reddit app client secret"`
		UserAgent    string `long:"user-agent" env:"USER_AGENT" description:"user agent for reddit requests"`
	} `group:"reddit" namespace:"reddit" env-namespace:"REDDIT"`

	SMTP struct {
		Server   string `long:"server" env:"SERVER" description:"smtp server (default: smtp.gmail.com)"`
		Port     int    `long:"port" env:"PORT" description:"smtp port (default: 587)"`
		Username string `long:"username" env:"USERNAME" description:"smtp username"`
		Password string `long:"password" env:"PASSWORD" description:"smtp password"`
	} `group:"smtp" namespace:"smtp" env-namespace:"SMTP"`

	Sender    string `long:"sender" env:"SENDER_EMAIL" description:"sender email (default: smtp username)"`
	Recipient string `long:"recipient" env:"RECIPIENT_EMAIL" description:"digest recipient, email disabled if empty"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

// log destinations, replaced in tests
var logOut, logErr io.Writer = os.Stdout, os.Stderr

func main() {
	// existing environment wins over .env values
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = color.NoColor || opts.NoColor
	setupLog(opts.Debug, opts.OpenRouterKey, opts.Reddit.ClientSecret, opts.SMTP.Password)

	log.Printf("[INFO] starting idea filter version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// run loads and verifies configuration, then executes the pipeline once.
// Missing required settings stop the run after diagnostics without an error.
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOpts(cfg, opts)
	setupLog(opts.Debug, cfg.Secrets()...) // credentials may come from the config file as well

	verification := cfg.Verify()
	for _, s := range verification.MissingRequired {
		log.Printf("[ERROR] missing required setting %s: %s", s.Name, s.Description)
	}
	for _, s := range verification.MissingOptional {
		log.Printf("[WARN] missing optional setting %s: %s", s.Name, s.Description)
	}
	if !verification.Ready() {
		log.Printf("[ERROR] required settings are missing, set them in the environment or .env file")
		return nil
	}

	c := cfg.WithDefaults()

	renderer, err := report.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	runner := digest.NewRunner(
		reddit.NewSource(c.Reddit),
		llm.NewClassifier(c.LLM),
		renderer,
		mail.NewSender(c.SMTP),
		digest.Params{
			Forums:        c.Digest.Forums,
			Criterion:     c.Digest.Criterion,
			Limit:         c.Digest.Limit,
			SubjectPrefix: c.Digest.SubjectPrefix,
			Recipient:     c.SMTP.Recipient,
			ReportFile:    c.Digest.ReportFile,
		},
	)

	summary := runner.Run(ctx)
	log.Printf("[INFO] done, forums: %d, collected: %d, accepted: %d, delivered: %t",
		summary.Forums, summary.Collected, summary.Accepted, summary.Delivered)
	return nil
}

// applyOpts overrides file values with non-empty environment values
func applyOpts(cfg *config.Config, opts Opts) {
	set := func(dst *string, val string) {
		if v := strings.TrimSpace(val); v != "" {
			*dst = v
		}
	}

	set(&cfg.LLM.APIKey, opts.OpenRouterKey)
	set(&cfg.Digest.ReportFile, opts.ReportFile)

	set(&cfg.Reddit.ClientID, opts.Reddit.ClientID)
	set(&cfg.Reddit.ClientSecret, opts.Reddit.ClientSecret)
	set(&cfg.Reddit.UserAgent, opts.Reddit.UserAgent)
	set(&cfg.Reddit.Proxy, opts.Proxy)

	set(&cfg.SMTP.Host, opts.SMTP.Server)
	if opts.SMTP.Port > 0 {
		cfg.SMTP.Port = opts.SMTP.Port
	}
	set(&cfg.SMTP.Username, opts.SMTP.Username)
	set(&cfg.SMTP.Password, opts.SMTP.Password)
	set(&cfg.SMTP.From, opts.Sender)
	set(&cfg.SMTP.Recipient, opts.Recipient)
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(logOut), lgr.Err(logErr), lgr.LevelBraces}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.Msec, lgr.StackTraceOnError)
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	var secrets []string
	for _, s := range secs {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
