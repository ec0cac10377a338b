package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Ayash-Bera/student-lookup/internal/classifier"
	"github.com/Ayash-Bera/student-lookup/internal/client"
	"github.com/Ayash-Bera/student-lookup/internal/config"
	"github.com/Ayash-Bera/student-lookup/internal/models"
	"github.com/Ayash-Bera/student-lookup/internal/query"
	"github.com/Ayash-Bera/student-lookup/internal/reconcile"
	"github.com/Ayash-Bera/student-lookup/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		searchType string
		apiURL     string
		asJSON     bool
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "lookup [flags] <terms>",
		Short: "Look up students by enrollment number, application number, guardian contact or name",
		Long: `Terms are comma separated. In custom mode each term is matched against
the known formats (email, phone, ENRNO, APPNO, EN number, name); with an
explicit --type every term is taken as that identifier.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if apiURL != "" {
				cfg.API.BaseURL = strings.TrimRight(apiURL, "/")
			}
			if err := cfg.ValidateAPI(); err != nil {
				return err
			}

			logger := utils.InitLogger(cfg.Log.Level)
			logger.SetOutput(cmd.ErrOrStderr())
			if verbose {
				logger.SetLevel(logrus.DebugLevel)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			resp, err := lookup(ctx, client.NewClient(cfg.API.BaseURL, logger), strings.Join(args, ","), models.Category(searchType))
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			render(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	root.Flags().StringVarP(&searchType, "type", "t", string(models.CategoryCustom), "search type: custom, studentId, guardianGlobalNo or guardianID")
	root.Flags().StringVar(&apiURL, "api", "", "lookup API base URL (default from api.base_url)")
	root.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return root
}

// lookup classifies locally and only calls the API for a classification the
// server would accept. A not-found answer is a normal result with every term
// missing. The reported category is the one the server queries.
func lookup(ctx context.Context, c *client.Client, raw string, category models.Category) (*models.SearchResponse, error) {
	result, err := classifier.Classify(raw, category)
	if err != nil {
		return nil, err
	}
	filter, err := query.Build(result.Classification)
	if err != nil {
		return nil, err
	}

	records, err := c.FindStudents(ctx, result.Classification)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if records == nil {
		records = []models.StudentRecord{}
	}

	return &models.SearchResponse{
		Students:     records,
		MissingItems: reconcile.Unmatched(result.Terms, records),
		Category:     filter.Category,
		Total:        len(records),
	}, nil
}

func render(w io.Writer, resp *models.SearchResponse) {
	if resp.Total == 0 {
		fmt.Fprintln(w, "No students found.")
	} else {
		fmt.Fprintf(w, "Found %d student(s)\n", resp.Total)
	}

	for _, s := range resp.Students {
		fmt.Fprintf(w, "\n%s\n", nonEmpty(s.FullName()))
		field(w, "Academic year", s.AcademicYear())
		if s.StudentID != 0 {
			field(w, "Student ID", fmt.Sprint(s.StudentID))
		}
		field(w, "New ENR", s.NewEnrollment.String())
		field(w, "Old ENR", s.OldEnrollment.String())
		field(w, "Application No", s.ApplicationNo.Value)
		field(w, "School", s.SchoolName.String())
		field(w, "Grade", strings.TrimSpace(string(s.GradeName+" "+s.Division)))

		if len(s.Guardians) > 0 {
			fmt.Fprintln(w, "  Guardians:")
		}
		for _, g := range s.Guardians {
			fmt.Fprintf(w, "    - %s: %s", nonEmpty(g.Relationship.String()), nonEmpty(g.FullName()))
			if g.GuardianID != 0 {
				fmt.Fprintf(w, " (ID %d)", g.GuardianID)
			}
			for _, v := range []models.FlexString{g.Mobile, g.Email} {
				if v != "" {
					fmt.Fprintf(w, " %s", v)
				}
			}
			fmt.Fprintln(w)
		}
	}

	if len(resp.MissingItems) > 0 {
		fmt.Fprintf(w, "\nMissing (%d): %s\n", len(resp.MissingItems), strings.Join(resp.MissingItems, ", "))
	}
}

func field(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "  %-15s %s\n", label+":", value)
}

func nonEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
