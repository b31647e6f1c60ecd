package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/thu-timetable/internal/calendar"
	"github.com/pfrederiksen/thu-timetable/internal/config"
	"github.com/pfrederiksen/thu-timetable/internal/course"
	"github.com/pfrederiksen/thu-timetable/internal/crypto"
	"github.com/pfrederiksen/thu-timetable/internal/filter"
	"github.com/pfrederiksen/thu-timetable/internal/logger"
	"github.com/pfrederiksen/thu-timetable/internal/render"
	"github.com/pfrederiksen/thu-timetable/internal/schedule"
	"github.com/pfrederiksen/thu-timetable/internal/scraper"
	"github.com/pfrederiksen/thu-timetable/internal/screenshot"
	"github.com/pfrederiksen/thu-timetable/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// DefaultTerm is the term fetched when --term is not given
const DefaultTerm = "2024-2025-2"

var (
	flagTerm       string
	flagType       string
	flagConfig     string
	flagServerID   string
	flagJSessionID string
	flagBaseURL    string
	flagDataDir    string
	flagStrict     bool
	flagRemote     bool
	flagSource     string
	flagBrowser    string
	flagFormat     string
	flagSort       string
	flagVerbose    bool
	flagLogLevel   string
	flagStart      string
	flagPassphrase string

	flagNames    []string
	flagTeachers []string
	flagTypes    []string
	flagDays     []string
	flagWeek     int
)

// newCapturer is swapped out in tests so no browser is launched
var newCapturer = func() screenshot.Capturer {
	return &screenshot.Browser{Bin: flagBrowser}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thu-timetable",
		Short: "Turn the Tsinghua course schedule page into a printable timetable",
		Long: `A CLI tool that fetches the Tsinghua course-schedule page, extracts the
courses, and renders them as a weekly timetable (HTML and a 1080x1920 PNG).
Each stage reads and writes its artifacts in the data directory.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  setupLogging,
		PersistentPostRunE: reportMetrics,
	}

	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", storage.DefaultDataDir, "Data directory for artifacts")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging and print run metrics")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Minimum log level: debug, info, warn or error")

	cmd.AddCommand(
		newRunCmd(),
		newFetchCmd(),
		newParseCmd(),
		newRenderCmd(),
		newExportCmd(),
		newShowCmd(),
		newCalendarCmd(),
		newEncryptConfigCmd(),
	)

	return cmd
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagTerm, "term", DefaultTerm, "Academic term (YYYY-YYYY-S)")
	cmd.Flags().StringVar(&flagType, "type", string(scraper.TypeAll), "Course type: 1 (lectures), 2 (labs) or 3 (all)")
	cmd.Flags().StringVar(&flagConfig, "config", "", "Cookie config file (.json or .toml)")
	cmd.Flags().StringVar(&flagServerID, "serverid", "", "serverid session cookie")
	cmd.Flags().StringVar(&flagJSessionID, "jsessionid", "", "JSESSIONID session cookie")
	cmd.Flags().StringVar(&flagPassphrase, "passphrase", "", "Passphrase for encrypted values in the cookie config")
	cmd.Flags().StringVar(&flagBaseURL, "base-url", scraper.BaseURL, "Course system base URL")
	_ = cmd.Flags().MarkHidden("base-url")
}

func addParseFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagStrict, "strict", false, "Abort on the first malformed course entry")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", string(SortBySlot), "Course order in the report: slot, name or id")
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagRemote, "remote", false, "Treat --source as a remote URL")
	cmd.Flags().StringVar(&flagSource, "source", "", "Page to capture (default: the rendered timetable)")
	cmd.Flags().StringVar(&flagBrowser, "browser", "", "Chromium binary (default: found or downloaded by rod)")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&flagNames, "name", nil, "Only courses whose name contains this (repeatable)")
	cmd.Flags().StringSliceVar(&flagTeachers, "teacher", nil, "Only courses whose teacher or lab group contains this (repeatable)")
	cmd.Flags().StringSliceVar(&flagTypes, "course-type", nil, "Only courses of this category: required, elective, experiment (repeatable)")
	cmd.Flags().StringSliceVar(&flagDays, "day", nil, "Only courses on this weekday: 1-7, mon..sun or 周一..周日 (repeatable)")
	cmd.Flags().IntVar(&flagWeek, "week", 0, "Only courses taught in this teaching week")
}

// filteredDocument loads the schedule document and narrows it to the
// courses selected by the filter flags.
func filteredDocument(store *storage.Storage) (*schedule.Document, error) {
	doc, err := loadDocument(store)
	if err != nil {
		return nil, err
	}

	f, err := filter.Parse(flagNames, flagTeachers, flagTypes, flagDays, flagWeek)
	if err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return doc, nil
	}

	logger.Debug("Filtering courses", logger.Fields{"filter": f.String()})
	filtered, errs := schedule.NewDocument(doc.Info, f.Apply(doc.Courses))
	for _, err := range errs {
		logger.Warn("Dropping invalid course", logger.Fields{"error": err.Error()})
	}
	return filtered, nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, parse, render and export in one go",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			if err := fetch(cmd.Context(), store); err != nil {
				return err
			}
			if err := parse(cmd.OutOrStdout(), store); err != nil {
				return err
			}
			if err := renderHTML(store); err != nil {
				return err
			}
			return export(cmd.Context(), cmd.OutOrStdout(), store)
		},
	}
	addFetchFlags(cmd)
	addParseFlags(cmd)
	addExportFlags(cmd)
	return cmd
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the schedule page into the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			return fetch(cmd.Context(), store)
		},
	}
	addFetchFlags(cmd)
	return cmd
}

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Extract the courses from the saved page into courses.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			return parse(cmd.OutOrStdout(), store)
		},
	}
	addParseFlags(cmd)
	return cmd
}

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render courses.json as schedule.html",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			return renderHTML(store)
		},
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Screenshot the timetable into schedule.png",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			return export(cmd.Context(), cmd.OutOrStdout(), store)
		},
	}
	addExportFlags(cmd)
	return cmd
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the parsed timetable to the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(flagFormat)
			if err != nil {
				return err
			}
			store, err := openStorage()
			if err != nil {
				return err
			}
			doc, err := filteredDocument(store)
			if err != nil {
				return err
			}
			if format == FormatJSON {
				return doc.Encode(cmd.OutOrStdout())
			}
			return render.RenderText(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	addFilterFlags(cmd)
	return cmd
}

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Export the parsed timetable as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(flagStart), calendar.Campus)
			if err != nil {
				return fmt.Errorf("invalid --start %q (want YYYY-MM-DD): %w", flagStart, err)
			}
			store, err := openStorage()
			if err != nil {
				return err
			}
			doc, err := filteredDocument(store)
			if err != nil {
				return err
			}

			ics, errs := calendar.GenerateICS(doc, start, time.Now())
			for _, err := range errs {
				logger.Warn("Course exported with fallback weeks", logger.Fields{"error": err.Error()})
			}
			if err := store.SaveCalendar(ics); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Calendar written to %s (week 1 starts %s)\n",
				store.CalendarPath(), calendar.Monday(start).Format(time.DateOnly))
			return nil
		},
	}
	cmd.Flags().StringVar(&flagStart, "start", "", "Any date in the first teaching week (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("start")
	addFilterFlags(cmd)
	return cmd
}

func newEncryptConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt-config",
		Short: "Encrypt the cookie values in a config file in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagPassphrase == "" {
				return fmt.Errorf("--passphrase is required")
			}
			cookies, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if err := cookies.Encrypt(crypto.NewEncryptor(flagPassphrase)); err != nil {
				return err
			}
			if err := config.Save(flagConfig, cookies); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Encrypted cookies in %s\n", flagConfig)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagConfig, "config", "", "Cookie config file (.json or .toml)")
	cmd.Flags().StringVar(&flagPassphrase, "passphrase", "", "Passphrase to encrypt with")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// setupLogging installs the run's logger: JSON lines on stderr tagged with a
// fresh run id.
func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()).With(logger.Fields{
		"run_id":  uuid.NewString(),
		"command": cmd.Name(),
	}))
	return nil
}

func reportMetrics(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logger.Debug("Run metrics", logger.Fields{"metrics": logger.MetricsSnapshot()})
	}
	return nil
}

func openStorage() (*storage.Storage, error) {
	store, err := storage.New(flagDataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

func loadDocument(store *storage.Storage) (*schedule.Document, error) {
	doc, err := store.LoadDocument()
	if err != nil {
		return nil, fmt.Errorf("loading schedule document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("no schedule document in %s (run 'thu-timetable parse' first)", store.Dir())
	}
	return doc, nil
}

func fetch(ctx context.Context, store *storage.Storage) error {
	cookies, err := config.Resolve(flagServerID, flagJSessionID, flagConfig, flagPassphrase)
	if err != nil {
		return fmt.Errorf("loading cookies: %w", err)
	}
	if cookies == nil {
		logger.Warn("No session cookies configured, the server will likely refuse the request", nil)
	}

	sc := scraper.New().WithBaseURL(flagBaseURL)
	page, err := sc.FetchPage(ctx, scraper.Request{
		Type:    scraper.TypeCode(strings.TrimSpace(flagType)),
		Term:    strings.TrimSpace(flagTerm),
		Cookies: cookies,
	})
	if err != nil {
		return fmt.Errorf("fetching schedule page: %w", err)
	}

	if err := store.SaveResponse(page); err != nil {
		return fmt.Errorf("saving response: %w", err)
	}
	logger.Info("Saved schedule page", logger.Fields{"path": store.ResponsePath()})
	return nil
}

func parse(w io.Writer, store *storage.Storage) error {
	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}
	order, err := parseSortOrder(flagSort)
	if err != nil {
		return err
	}

	f, err := store.OpenResponse()
	if err != nil {
		return err
	}
	defer f.Close()

	page, err := scraper.New().WithStrict(flagStrict).ParsePage(f)
	if err != nil {
		return fmt.Errorf("parsing schedule page: %w", err)
	}

	previous, err := store.LoadDocument()
	if err != nil {
		// A broken previous document only disables the change report.
		logger.Warn("Ignoring unreadable previous schedule document", logger.Fields{"error": err.Error()})
		previous = nil
	}

	doc, errs := schedule.NewDocument(page.Info, page.Courses)
	conflicts := 0
	for _, placeErr := range errs {
		var conflict *course.CellConflictError
		if errors.As(placeErr, &conflict) {
			conflicts++
			logger.Warn("Course slot already taken, keeping the first course", logger.Fields{
				"slot":     fmt.Sprintf("%d_%d", conflict.Weekday, conflict.Period),
				"existing": conflict.Existing,
				"incoming": conflict.Incoming,
			})
			continue
		}
		if flagStrict {
			return fmt.Errorf("strict mode: %w", placeErr)
		}
		logger.Warn("Dropping invalid course", logger.Fields{"error": placeErr.Error()})
	}
	logger.SetGauge("grid.courses", float64(len(doc.Courses)))

	if err := store.SaveDocument(doc); err != nil {
		return fmt.Errorf("saving schedule document: %w", err)
	}

	diff := schedule.Diff(previous, doc.Courses)
	if previous != nil && diff.Changed() {
		for _, change := range diff.Changes() {
			logger.Info("Course changed since last parse", logger.Fields{
				"kind":      change.Kind,
				"course_id": change.Course.ID,
				"name":      change.Course.Name,
			})
		}
	}

	result := &ParseResult{
		ParsedAt:    time.Now().UTC(),
		Info:        doc.Info,
		Courses:     doc.Courses,
		CourseCount: len(doc.Courses),
		Skipped:     len(page.Skipped) + len(errs) - conflicts,
		Conflicts:   conflicts,
		Path:        store.DocumentPath(),
	}
	if previous != nil {
		result.Added = diff.Added
		result.Removed = diff.Removed
	}
	sortCourses(result.Courses, order)

	if err := WriteOutput(w, result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func renderHTML(store *storage.Storage) error {
	doc, err := loadDocument(store)
	if err != nil {
		return err
	}
	generatedAt, err := store.DocumentTime()
	if err != nil {
		return err
	}

	f, err := store.CreateHTML()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := render.Render(f, doc, generatedAt); err != nil {
		return err
	}
	logger.Info("Rendered timetable", logger.Fields{"path": store.HTMLPath()})
	return nil
}

func export(ctx context.Context, w io.Writer, store *storage.Storage) error {
	source := flagSource
	if source == "" {
		if flagRemote {
			return fmt.Errorf("--remote needs --source")
		}
		source = store.HTMLPath()
	}

	path, err := screenshot.New(newCapturer()).Export(ctx, source, store.ImagePath(), flagRemote)
	if err != nil {
		return fmt.Errorf("exporting image: %w", err)
	}
	fmt.Fprintf(w, "Timetable image written to %s\n", path)
	return nil
}

// Execute runs the CLI. An interrupt cancels the in-flight request or
// browser session.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
