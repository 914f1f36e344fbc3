package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"billed/internal/backend"
	"billed/internal/bills"
	"billed/internal/cli"
	"billed/internal/config"
	"billed/internal/core"
	"billed/internal/log"
	"billed/internal/session"
	"billed/internal/store"
)

const usage = `usage:
  billed list
  billed show [-out <path>] <bill-id>
  billed new -file <path> -date <yyyy-mm-dd> -amount <amount> [-type -name -vat -pct -commentary]`

func main() {
	cfg, logger := cli.Init(log.ComponentApp, os.Stderr)
	ctx, cancel := cli.ShutdownContext(logger)

	code := run(ctx, os.Args[1:], os.Stdout, cfg, logger)
	cancel()
	os.Exit(code)
}

// command runs one subcommand against the configured store.
type command func(ctx context.Context, args []string, stdout io.Writer, st store.Store, sess session.Provider, logger *log.Logger) int

var commands = map[string]command{
	"list": runList,
	"show": runShow,
	"new":  runNew,
}

func run(ctx context.Context, args []string, stdout io.Writer, cfg *config.Config, logger *log.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(stdout, usage)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintln(stdout, usage)
		return 2
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		return 1
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldBackend, bcfg.Type, log.FieldError, err)
		return 1
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}

	return cmd(ctx, args[1:], stdout, result.Store, sessionProvider(cfg), logger)
}

func sessionProvider(cfg *config.Config) session.Provider {
	if cfg.SessionFile != "" {
		return session.File{Path: cfg.SessionFile}
	}
	return session.Static{Type: "Employee", Email: cfg.UserEmail}
}

func runList(ctx context.Context, _ []string, stdout io.Writer, st store.Store, sess session.Provider, logger *log.Logger) int {
	list, err := bills.NewListService(st, sess, logger).FetchBills(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			fmt.Fprintln(stdout, "not logged in: set SESSION_FILE or BILLED_USER_EMAIL")
			return 1
		}
		fmt.Fprintln(stdout, core.ClassifyFailure(err).Message())
		return 1
	}

	for _, b := range list {
		fmt.Fprintf(stdout, "%s\t%s\t%s\t%s €\t%s\n", b.Date, b.Type, b.Name, b.Amount.StringFixed(2), b.Status)
	}
	return 0
}

func runShow(ctx context.Context, args []string, stdout io.Writer, st store.Store, sess session.Provider, logger *log.Logger) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(stdout)
	out := fs.String("out", "", "write the receipt content to this file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stdout, usage)
		return 2
	}

	view, err := bills.NewListService(st, sess, logger).ViewAttachment(ctx, fs.Arg(0))
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			fmt.Fprintln(stdout, "not logged in: set SESSION_FILE or BILLED_USER_EMAIL")
			return 1
		}
		fmt.Fprintln(stdout, core.ClassifyFailure(err).Message())
		return 1
	}

	fmt.Fprintf(stdout, "%s\t%s\t%s\n", view.Bill.Date, view.Bill.Name, view.Bill.Status)
	fmt.Fprintf(stdout, "file: %s\nurl: %s\n", view.FileName, view.FileURL)
	if *out != "" {
		if view.Content == nil {
			fmt.Fprintln(stdout, "receipt is only available at its url")
			return 1
		}
		if err := os.WriteFile(*out, view.Content, 0o644); err != nil {
			fmt.Fprintln(stdout, err)
			return 1
		}
		fmt.Fprintf(stdout, "saved %d bytes to %s\n", len(view.Content), *out)
	}
	return 0
}

func runNew(ctx context.Context, args []string, stdout io.Writer, st store.Store, sess session.Provider, logger *log.Logger) int {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		file = fs.String("file", "", "receipt image (jpg, jpeg or png)")
		form bills.Form
	)
	fs.StringVar(&form.Type, "type", "Transports", "expense type")
	fs.StringVar(&form.Name, "name", "", "expense name")
	fs.StringVar(&form.Date, "date", "", "expense date (yyyy-mm-dd)")
	fs.StringVar(&form.Amount, "amount", "", "amount including VAT")
	fs.StringVar(&form.VAT, "vat", "", "VAT amount")
	fs.StringVar(&form.Pct, "pct", "", "VAT percentage (default 20)")
	fs.StringVar(&form.Commentary, "commentary", "", "free text")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(stdout, "missing -file")
		return 2
	}

	svc := bills.NewNewBillService(st, sess, func(route string) {
		logger.Debug("Navigating", log.FieldRoute, route)
		fmt.Fprintln(stdout, "->", route)
	}, logger)

	attachment := core.Attachment{
		Name:     filepath.Base(*file),
		MimeType: mime.TypeByExtension(filepath.Ext(*file)),
	}
	if core.AllowedExtension(attachment.Extension()) {
		content, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintln(stdout, err)
			return 1
		}
		attachment.Content = content
	}
	if !svc.SelectAttachment(attachment) {
		fmt.Fprintln(stdout, svc.ValidationMessage())
		return 1
	}

	created, err := svc.Submit(ctx, form)
	if err != nil {
		switch {
		case errors.Is(err, bills.ErrInvalidForm), errors.Is(err, session.ErrNoSession):
			fmt.Fprintln(stdout, err)
		default:
			fmt.Fprintln(stdout, core.ClassifyFailure(err).Message())
		}
		return 1
	}
	fmt.Fprintf(stdout, "bill %s created (%s)\n", created.ID, core.StatusLabel(created.Status))
	return 0
}
