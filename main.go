package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gitlab-tools/token-monitor/config"
	"github.com/gitlab-tools/token-monitor/internal/gitlab"
	"github.com/gitlab-tools/token-monitor/internal/mail"
	"github.com/gitlab-tools/token-monitor/internal/monitor"
	"github.com/gitlab-tools/token-monitor/internal/report"
	"github.com/gitlab-tools/token-monitor/params"
)

import _ "github.com/joho/godotenv/autoload"

// Exit codes. Config errors exit distinctly from fetch failures so cron
// wrappers can tell a broken deployment from a flaky GitLab.
const (
	exitFetchFailed    = 1
	exitPartialFailure = 3
	exitConfigError    = 78 // EX_CONFIG
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "GitLab access token expiration monitor"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name:   "check",
			Usage:  "Verify configuration, GitLab credential and SMTP connectivity",
			Action: check,
		},
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
	}
	app.Action = run
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	return config.LoadConfig(ctx.String(configFileFlag.Name))
}

func initLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("could not load config: %v", err), exitConfigError)
	}
	initLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	client := gitlab.NewClient(cfg.GitLab.URL, cfg.GitLab.AdminToken)
	mon := monitor.New(client, cfg.Monitor)

	slog.Info("Starting token expiration monitoring.",
		"gitlab", cfg.GitLab.URL,
		"daysThreshold", cfg.Monitor.DaysThreshold,
		"sendAllTokens", cfg.Monitor.SendAllTokens,
	)

	now := time.Now()
	agg := mon.Run(ctx.Context, now)

	if len(agg.Failures) == len(mon.EnabledKinds()) {
		return cli.Exit("all token kind fetches failed, no report can be produced", exitFetchFailed)
	}

	slog.Info("Monitoring summary.",
		"total", agg.Total(),
		"problematic", agg.Problematic(),
		"skippedMalformed", agg.SkippedTotal(),
		"failedKinds", len(agg.Failures),
	)

	if agg.ShouldSend(cfg.Monitor.SendAllTokens) {
		sender := mail.NewSMTPMailSender(mail.NewDialer(cfg.SMTP), cfg.SMTP.FromEmail)
		reporter, err := report.NewReporter(sender, cfg.SMTP.ToEmails, cfg.GitLab.URL, cfg.TemplateDir)
		if err != nil {
			return cli.Exit(err.Error(), exitFetchFailed)
		}
		if err := reporter.Send(agg, now); err != nil {
			return cli.Exit(err.Error(), exitFetchFailed)
		}
		slog.Info("Report sent.", "recipients", cfg.SMTP.ToEmails)
	} else {
		slog.Info("No problematic tokens found, skipping report. Set monitor.sendAllTokens to always receive one.")
	}

	if len(agg.Failures) > 0 {
		return cli.Exit("some token kinds could not be checked", exitPartialFailure)
	}
	return nil
}

// check verifies a deployment end to end without sending a report.
func check(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("could not load config: %v", err), exitConfigError)
	}
	initLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	client := gitlab.NewClient(cfg.GitLab.URL, cfg.GitLab.AdminToken)
	info, err := client.Version(ctx.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("GitLab check failed: %v", err), exitFetchFailed)
	}
	slog.Info("GitLab reachable, admin credential accepted.", "version", info.Version)

	closer, err := mail.NewDialer(cfg.SMTP).Dial()
	if err != nil {
		return cli.Exit(fmt.Sprintf("SMTP check failed: %v", err), exitFetchFailed)
	}
	_ = closer.Close()
	slog.Info("SMTP connection verified.", "server", cfg.SMTP.Server, "port", cfg.SMTP.Port)
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
