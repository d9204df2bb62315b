package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/config"
	"github.com/spigell/fedjobs/internal/geocode"
	"github.com/spigell/fedjobs/internal/listing"
	"github.com/spigell/fedjobs/internal/logger"
	"github.com/spigell/fedjobs/internal/matching"
	"github.com/spigell/fedjobs/internal/search"
	"github.com/spigell/fedjobs/internal/usajobs"
)

const (
	PromptShow                  = "Show results"
	PromptReportByOrganizations = "Report by organizations"
	PromptResultsToFile         = "Dump results to file"
	PromptAppendToExcludeFile   = "Append all results to exclude file"
	PromptExit                  = "Exit"
	excludedFromResultsReason   = "excluded from search results"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Next step?",
	Items: []string{PromptShow, PromptReportByOrganizations, PromptResultsToFile, PromptAppendToExcludeFile, PromptExit},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search federal job listings and filter them by distance, skills and degree",
	Run: func(cmd *cobra.Command, _ []string) {
		runSearch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("address", "a", "", "your address (default from ui_config form_defaults)")
	searchCmd.Flags().StringP("skills", "s", "", "comma separated skills (default from ui_config form_defaults)")
	searchCmd.Flags().String("education", "", "degree and field, e.g. \"Bachelor in Computer Science\"")
	searchCmd.Flags().Float64("max-distance", 0, "maximum distance in miles")
	searchCmd.Flags().Bool("ignore-distance", false, "keep listings regardless of distance")
	searchCmd.Flags().Bool("live", false, "search the USAJOBS catalog instead of the sample listings")
	searchCmd.Flags().String("keyword", "", "keyword query sent to USAJOBS instead of the one built from skills")
	searchCmd.Flags().String("pay-grade", "", "minimal GS pay grade, e.g. GS-11")
	searchCmd.Flags().StringP("exclude-file", "e", "", "special file with listings to exclude. Default is unset.")
	searchCmd.Flags().BoolP("auto-approve", "y", false, "print the results without asking what to do next")

	viper.BindPFlag("exclude-file", searchCmd.Flags().Lookup("exclude-file"))
}

func runSearch(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	cfg, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the fedjobs search", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(cfg, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	store, err := config.Load(cfg.ConfigDir, logger)
	if err != nil {
		logger.Fatal("loading configuration", zap.Error(err), zap.String("config_dir", cfg.ConfigDir))
	}

	profile, err := profileFromFlags(cmd, store.UI().FormDefaults)
	if err != nil {
		logger.Fatal("building the search profile", zap.Error(err))
	}

	api := store.API()
	geocoder := geocode.NewCached(
		geocode.NewNominatim(logger, geocode.DefaultNominatimOptions()),
		geocode.NewCache(),
		api.RetryPolicy(),
		logger,
	)

	live, _ := cmd.Flags().GetBool("live")
	svc := &search.Service{
		Geocoder: geocoder,
		Config:   store,
		Logger:   logger,
	}
	if live {
		source, err := newListingSource(cfg, api, logger)
		if err != nil {
			logger.Warn("live search is unavailable, using sample listings", zap.Error(err))
		} else {
			svc.Source = source
		}
	}

	aiConfig, matcher, err := prepareAI(ctx, cfg.AI, logger)
	if err != nil {
		logger.Warn("skipping AI filter", zap.Error(err))
	}
	svc.AI = aiConfig
	svc.Matcher = matcher

	ignoreDistance, _ := cmd.Flags().GetBool("ignore-distance")
	keyword, _ := cmd.Flags().GetString("keyword")
	payGrade, _ := cmd.Flags().GetString("pay-grade")

	req := search.Request{
		Profile:        profile,
		Live:           live,
		IgnoreDistance: ignoreDistance,
		Keyword:        keyword,
		PayGrade:       payGrade,
		ExcludeFile:    cfg.ExcludeFile,
	}
	if cfg.Exclude != nil {
		req.ExcludedOrganizations = cfg.Exclude.Organizations
	}

	logger.Info("starting the search",
		zap.String("address", profile.Address()),
		zap.Strings("skills", profile.Skills()),
		zap.String("education", profile.EducationField()),
	)

	outcome, err := svc.Run(ctx, req)
	if err != nil {
		if errors.Is(err, search.ErrAddressNotFound) {
			logger.Fatal("could not geocode your address", zap.String("address", profile.Address()), zap.Error(err))
		}
		logger.Fatal("search failed", zap.Error(err))
	}

	results := outcome.Results
	if results.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no listings left after filters"), zap.String("source", outcome.Source))
		return
	}

	if approve, _ := cmd.Flags().GetBool("auto-approve"); approve {
		printResults(os.Stdout, results, store.UI().MaxPreviewJobs)
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of listings", zap.Int("count", results.Len()))

		if err := handleAction(action, logger, cfg, results); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, cfg *Config, results *matching.Results) error {
	switch action {
	case PromptShow:
		printResults(os.Stdout, results, 0)
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByOrganizations:
		pretty, _ := json.MarshalIndent(results.ReportByOrganization(), "", "  ")
		logger.Info(string(pretty), zap.Int("listings count", results.Len()))
		return nil
	case PromptResultsToFile:
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(cfg.ExcludeFile, results, logger)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func appendToExcludeFile(path string, results *matching.Results, logger *zap.Logger) error {
	if path == "" {
		logger.Warn("exclude file is not set", zap.String("hint", "pass --exclude-file or set exclude-file in fedjobs.yaml"))
		return nil
	}

	excluded, err := listing.GetExcludedFromFile(path)
	if err != nil {
		return fmt.Errorf("reading exclude file: %w", err)
	}

	excluded.Append(listing.ToExcluded(results.Listings(), listing.ExcludeActorUser, excludedFromResultsReason, time.Now()))
	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("writing exclude file: %w", err)
	}

	logger.Info("listings appended to exclude file", zap.String("exclude_file", path), zap.Int("count", results.Len()))
	return nil
}

// profileFromFlags fills unset flags from the form defaults.
func profileFromFlags(cmd *cobra.Command, defaults config.FormDefaults) (matching.Profile, error) {
	flags := cmd.Flags()

	address, _ := flags.GetString("address")
	if !flags.Changed("address") {
		address = defaults.Address
	}
	skills, _ := flags.GetString("skills")
	if !flags.Changed("skills") {
		skills = defaults.Skills
	}
	education, _ := flags.GetString("education")
	if !flags.Changed("education") {
		education = defaults.Degree
	}
	maxDistance, _ := flags.GetFloat64("max-distance")
	if !flags.Changed("max-distance") {
		maxDistance = defaults.MaxDistance
	}

	return matching.NewProfile(matching.ProfileSpec{
		Address:          address,
		Skills:           matching.ParseSkills(skills),
		EducationField:   strings.TrimSpace(education),
		MaxDistanceMiles: maxDistance,
	})
}

func newListingSource(cfg *Config, api config.APIConfig, logger *zap.Logger) (*usajobs.Client, error) {
	creds, err := config.LoadCredentials(cfg.EnvFile, cfg.APIKeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading USAJOBS credentials: %w", err)
	}

	return usajobs.New(logger, usajobs.Options{
		APIURL:         api.API.BaseURL,
		Host:           api.API.Host,
		APIKey:         creds.APIKey,
		Email:          creds.Email,
		Timeout:        api.Timeout(),
		ResultsPerPage: api.API.DefaultParams.ResultsPerPage,
		MaxPages:       api.MaxPages,
		Retry:          api.RetryPolicy(),
	}), nil
}

func printResults(w io.Writer, results *matching.Results, limit int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "TITLE\tORGANIZATION\tLOCATION\tDISTANCE\tSALARY\tCLOSES\tVETERAN\tAI")
	for _, item := range results.Preview(limit) {
		l := item.Listing

		distance := "-"
		if item.DistanceMiles != nil {
			distance = fmt.Sprintf("%.1f mi", *item.DistanceMiles)
		}

		veteran := "no"
		if l.VeteranPreferred {
			veteran = "yes"
		}

		assessment := "-"
		if item.AI != nil {
			switch {
			case item.AI.Error != "":
				assessment = "error"
			default:
				assessment = fmt.Sprintf("%.2f", item.AI.Score)
			}
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Title, l.Organization, l.LocationText, distance,
			matching.FormatSalary(l.SalaryMin, l.SalaryMax), l.ClosingDate, veteran, assessment,
		)
	}

	if limit > 0 && results.Len() > limit {
		fmt.Fprintf(tw, "... and %d more\n", results.Len()-limit)
	}
}
