package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"healthdash/internal/bootstrap"
	recordsdto "healthdash/internal/modules/records/dto"
	"healthdash/internal/platform/config"
	apperrors "healthdash/internal/platform/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	stateDir string
	api      string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "healthdash",
		Short:         "Health tracking client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.stateDir, "state-dir", config.DefaultStateDir(), "directory holding config, session and logs")
	root.PersistentFlags().StringVar(&flags.api, "api", "", "API base URL (overrides config)")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newRegisterCmd(flags))
	root.AddCommand(newLoginCmd(flags))
	root.AddCommand(newLogoutCmd(flags))
	root.AddCommand(newWhoamiCmd(flags))
	root.AddCommand(newRecordsCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newDashboardCmd(flags))
	return root
}

func loadApp(flags *globalFlags) (*bootstrap.App, error) {
	cfg, err := config.New(flags.stateDir)
	if err != nil {
		return nil, err
	}
	cfg, err = cfg.WithAPIBaseURL(flags.api)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// withApp runs fn against a freshly wired App and always closes it.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, app *bootstrap.App) error) error {
	app, err := loadApp(flags)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())
	return fn(cmd.Context(), app)
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(_ context.Context, app *bootstrap.App) error {
				return bootstrap.RunTUI(app)
			})
		},
	}
}

type credentialFlags struct {
	username      string
	password      string
	passwordStdin bool
}

func (c *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&c.password, "password", "p", "", "account password")
	cmd.Flags().BoolVar(&c.passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("username")
}

func (c *credentialFlags) resolvePassword(in io.Reader) (string, error) {
	if !c.passwordStdin {
		return c.password, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newRegisterCmd(flags *globalFlags) *cobra.Command {
	creds := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := creds.resolvePassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Register(ctx, creds.username, password)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s (id=%d)\n", out.Username, out.ID)
				return nil
			})
		},
	}
	creds.bind(cmd)
	return cmd
}

func newLoginCmd(flags *globalFlags) *cobra.Command {
	creds := &credentialFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := creds.resolvePassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Login(ctx, creds.username, password)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", out.Username)
				return nil
			})
		},
	}
	creds.bind(cmd)
	return cmd
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.SessionCLI.Logout(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Current(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "username: %s\napi: %s\n", out.Username, app.Config.APIBaseURL)
				if !out.ExpiresAt.IsZero() {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "expires: %s\n", out.ExpiresAt.Local().Format(time.RFC3339))
				}
				return nil
			})
		},
	}
}

func newRecordsCmd(flags *globalFlags) *cobra.Command {
	records := &cobra.Command{Use: "records", Short: "Manage health records"}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List your records, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.RecordsCLI.List(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), items)
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no records yet")
					return nil
				}
				return writeRecordTable(cmd.OutOrStdout(), items)
			})
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				rec, err := app.RecordsCLI.Get(ctx, id)
				if err != nil {
					return err
				}
				return writeRecordDetail(cmd.OutOrStdout(), rec)
			})
		},
	}

	fields := &measurementFlags{}
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := fields.createInput(cmd)
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				rec, err := app.RecordsCLI.Create(ctx, input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created record %d at %s\n", rec.ID, rec.Timestamp)
				return nil
			})
		},
	}
	fields.bind(add)
	_ = add.MarkFlagRequired("steps")
	_ = add.MarkFlagRequired("sleep")
	_ = add.MarkFlagRequired("weight")

	patch := &measurementFlags{}
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change selected fields of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			input := patch.updateInput(cmd, id)
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				rec, err := app.RecordsCLI.Update(ctx, input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated record %d\n", rec.ID)
				return nil
			})
		},
	}
	patch.bind(update)

	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.RecordsCLI.Delete(ctx, id)
				if err != nil {
					return err
				}
				msg := out.Message
				if msg == "" {
					msg = "deleted"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "record %d: %s\n", out.ID, msg)
				return nil
			})
		},
	}

	records.AddCommand(list, show, add, update, remove)
	return records
}

func newStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show your aggregate analytics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.AnalyticsCLI.Stats(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "records: %d\ntotal steps: %d\naverage steps: %.1f\n", out.RecordCount, out.TotalSteps, out.AverageSteps)
				return nil
			})
		},
	}
}

func newDashboardCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print records and analytics together",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.AnalyticsCLI.Dashboard(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "signed in as %s\n\n", out.Username)
				switch {
				case len(out.Records) == 0:
					_, _ = fmt.Fprintln(w, "no records yet, add one to see analytics")
					return nil
				case out.StatsPending:
					_, _ = fmt.Fprintln(w, "analytics: not computed yet")
				case out.Stats != nil:
					_, _ = fmt.Fprintf(w, "analytics: %d records, %d steps, %.1f avg\n", out.Stats.RecordCount, out.Stats.TotalSteps, out.Stats.AverageSteps)
				}
				_, _ = fmt.Fprintln(w)
				return writeRecordTable(w, out.Records)
			})
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: record id must be a positive integer", apperrors.ErrInvalidInput)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRecordTable(w io.Writer, items []recordsdto.RecordOutput) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTEPS\tSLEEP\tWEIGHT\tTIME")
	for _, rec := range items {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%.1f h\t%.1f kg\t%s\n", rec.ID, rec.Steps, rec.SleepHours, rec.Weight, displayTime(rec))
	}
	return tw.Flush()
}

func writeRecordDetail(w io.Writer, rec recordsdto.RecordOutput) error {
	_, _ = fmt.Fprintf(w, "id: %d\nusername: %s\nsteps: %d\nsleep: %.1f h\nweight: %.1f kg\ntime: %s\n",
		rec.ID, rec.Username, rec.Steps, rec.SleepHours, rec.Weight, displayTime(rec))
	if rec.HeartRate != nil {
		_, _ = fmt.Fprintf(w, "heart rate: %d bpm\n", *rec.HeartRate)
	}
	if rec.BloodPressure != nil {
		_, _ = fmt.Fprintf(w, "blood pressure: %s\n", *rec.BloodPressure)
	}
	if rec.BloodSugar != nil {
		_, _ = fmt.Fprintf(w, "blood sugar: %.1f\n", *rec.BloodSugar)
	}
	if rec.BodyTemperature != nil {
		_, _ = fmt.Fprintf(w, "body temperature: %.1f\n", *rec.BodyTemperature)
	}
	return nil
}

func displayTime(rec recordsdto.RecordOutput) string {
	if rec.RecordedAt.IsZero() {
		return rec.Timestamp
	}
	return rec.RecordedAt.Local().Format("2006-01-02 15:04")
}
