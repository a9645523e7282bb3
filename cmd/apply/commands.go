package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/gabriel-vasile/mimetype"

	"job-board-backend/internal/client"
	"job-board-backend/internal/domain"
	"job-board-backend/internal/form"
)

// fieldValues collects repeated -set field=value flags in order.
type fieldValues []form.Change

func (v *fieldValues) String() string {
	parts := make([]string, 0, len(*v))
	for _, c := range *v {
		parts = append(parts, string(c.Field)+"="+c.Value)
	}
	return strings.Join(parts, ",")
}

func (v *fieldValues) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected field=value, got %q", s)
	}
	field := domain.Field(strings.TrimSpace(name))
	if !field.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
	}
	*v = append(*v, form.Change{Field: field, Value: value})
	return nil
}

func runJobs(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	search := fs.String("search", "", "job name contains")
	status := fs.String("status", "", "DRAFT, ACTIVE or INACTIVE")
	if err := fs.Parse(args); err != nil {
		return err
	}
	jobs, err := c.ListJobs(ctx, domain.JobFilter{Search: *search, Status: domain.JobStatus(strings.ToUpper(*status))})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tNAME\tTYPE\tSTATUS\tSALARY")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.Slug, j.JobName, j.JobType.Label(), j.Status, salaryRange(j.MinSalary, j.MaxSalary))
	}
	return tw.Flush()
}

func runForm(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: apply form <slug>")
	}
	jf, err := c.GetForm(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%s)\n\n", jf.Job.JobName, jf.Job.JobType.Label())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tLABEL\tINPUT\tREQUIRED")
	for _, d := range jf.Fields {
		req := "optional"
		switch {
		case !d.State.Enabled:
			req = "not accepted"
		case d.State.Required:
			req = "required"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Field, d.Label, d.Kind, req)
	}
	return tw.Flush()
}

func runSubmit(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	slug := fs.String("job", "", "job slug")
	country := fs.String("country", "", "phone country code, e.g. ID or SG")
	photo := fs.String("photo", "", "profile photo file")
	var values fieldValues
	fs.Var(&values, "set", "field=value, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *slug == "" {
		return errors.New("-job is required")
	}

	jf, err := c.GetForm(ctx, *slug)
	if err != nil {
		return err
	}
	job := jf.Job
	f := form.New(&job)
	defer f.Close()

	if *country != "" {
		if err := f.SelectCountry(strings.ToUpper(*country)); err != nil {
			return err
		}
	}
	for _, ch := range values {
		if err := f.Apply(ch); err != nil {
			return err
		}
	}
	if *photo != "" {
		p, err := readPhoto(*photo)
		if err != nil {
			return err
		}
		if err := f.SetPhoto(p); err != nil {
			return err
		}
	}
	if v := f.Value(domain.FieldLinkedin); v != "" && !form.ValidLinkedinURL(v) {
		fmt.Fprintln(out, "note: linkedin does not look like a profile URL")
	}

	applicant, err := f.Submit(ctx, c)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "submitted application #%d for %s\n", applicant.ID, job.JobName)
	return nil
}

func readPhoto(path string) (*domain.Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	return &domain.Photo{
		Filename:    filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

type adminFlags struct {
	email string
	slug  string
}

func (a *adminFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&a.email, "email", os.Getenv("APPLY_ADMIN_EMAIL"), "admin email")
	fs.StringVar(&a.slug, "job", "", "job slug")
}

// signIn logs in and waits until the server confirms the session, so an
// admin command never runs on an unresolved session.
func (a *adminFlags) signIn(ctx context.Context, c *client.Client) error {
	if a.slug == "" {
		return errors.New("-job is required")
	}
	if token := os.Getenv("APPLY_ADMIN_TOKEN"); token != "" {
		c.SetToken(token)
	} else {
		if a.email == "" {
			return errors.New("-email or APPLY_ADMIN_TOKEN is required")
		}
		if _, err := c.Login(ctx, a.email, os.Getenv("APPLY_ADMIN_PASSWORD")); err != nil {
			return err
		}
	}
	return client.NewSessionGate(c, 0).RequireAdmin(ctx)
}

func runApplicants(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("applicants", flag.ContinueOnError)
	var admin adminFlags
	admin.register(fs)
	sortBy := fs.String("sort", "", "column to sort by")
	order := fs.String("order", "", "asc or desc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := admin.signIn(ctx, c); err != nil {
		return err
	}

	res, err := c.ListApplicants(ctx, admin.slug, domain.ParseApplicantOrder(*sortBy, strings.ToLower(*order)))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s  %s  %d applicant(s)\n\n", res.Job.JobName, salaryRange(res.Job.MinSalary, res.Job.MaxSalary), len(res.Applicants))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEMAIL\tPHONE\tGENDER\tDOMICILE\tBORN\tAPPLIED")
	for _, a := range res.Applicants {
		born, gender := "-", "-"
		if a.DateOfBirth != nil {
			born = a.DateOfBirth.Display()
		}
		if a.Gender != nil {
			gender = string(*a.Gender)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.FullName, a.Email, orDash(a.PhoneNumber), gender, orDash(a.Domicile), born, a.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runExport(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var admin adminFlags
	admin.register(fs)
	dest := fs.String("out", "", "output file, defaults to the server's filename")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := admin.signIn(ctx, c); err != nil {
		return err
	}

	data, name, err := c.ExportApplicants(ctx, admin.slug)
	if err != nil {
		return err
	}
	if *dest != "" {
		name = *dest
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(out, "wrote %s (%d bytes)\n", name, len(data))
	return nil
}

func salaryRange(lo, hi *int64) string {
	switch {
	case lo != nil && hi != nil:
		return "Rp" + domain.FormatRupiah(*lo) + " - Rp" + domain.FormatRupiah(*hi)
	case lo != nil:
		return "from Rp" + domain.FormatRupiah(*lo)
	case hi != nil:
		return "up to Rp" + domain.FormatRupiah(*hi)
	}
	return "-"
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
