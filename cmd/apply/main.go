// Command apply drives the job board API from a terminal: browse jobs, fill
// and submit an application form, and run the admin review commands.
//
//	apply [-api URL] jobs [-search text] [-status ACTIVE]
//	apply [-api URL] form <slug>
//	apply [-api URL] submit -job <slug> -set fullName=Ana -set email=a@b.c -photo me.png
//	apply [-api URL] applicants -email admin@x -job <slug> [-sort fullName] [-order asc]
//	apply [-api URL] export -email admin@x -job <slug> [-out file.xlsx]
//
// Admin commands read the password from APPLY_ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"job-board-backend/internal/client"
	"job-board-backend/pkg/apperror"
)

type command func(ctx context.Context, c *client.Client, args []string, out io.Writer) error

var commands = map[string]command{
	"jobs":       runJobs,
	"form":       runForm,
	"submit":     runSubmit,
	"applicants": runApplicants,
	"export":     runExport,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", envOr("APPLY_API_URL", "http://localhost:8080"), "API base URL")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: apply [-api URL] <jobs|form|submit|applicants|export> [flags]")
		return 2
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(*apiURL, &http.Client{Timeout: *timeout})
	if err := cmd(ctx, c, fs.Args()[1:], stdout); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	if violations := client.Violations(err); len(violations) > 0 {
		fmt.Fprintln(w, "submission rejected:")
		for _, v := range violations {
			fmt.Fprintf(w, "  %-14s %s (%s)\n", v.Field, v.Message, v.Code)
		}
		return
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		fmt.Fprintf(w, "error: %s [%s %d]\n", appErr.Message, appErr.Kind, appErr.Code)
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
