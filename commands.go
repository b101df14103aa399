package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/catalog"
	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/store"
)

func newProjectsCmd() *cobra.Command {
	var (
		criteria    catalog.Criteria
		asJSON      bool
		catalogPath string
	)

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects using the same filter as the site",
		Long: `List projects from the embedded catalog, filtered exactly the way the
projects page filters them.

Examples:
  # Everything
  portfolio projects

  # Web projects that mention "react"
  portfolio projects --category "Web Development" --search react`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			projects := catalog.NewIndex(cat.Projects).Filter(criteria.Normalize())

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(projects)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tCATEGORY\tTECHNOLOGIES")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Slug, p.Category, strings.Join(p.Technologies, ", "))
			}
			fmt.Fprintf(tw, "\n%d of %d projects\n", len(projects), len(cat.Projects))
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&criteria.Search, "search", "", "case-insensitive text in title, summary or technologies")
	cmd.Flags().StringVar(&criteria.Category, "category", catalog.All, "exact category")
	cmd.Flags().StringVar(&criteria.Technology, "tech", "", "exact technology")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().StringVar(&catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "YAML catalog to read instead of the built-in one")
	return cmd
}

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete visitor records older than VISITOR_RETENTION",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := store.Open(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.CleanupVisitors(cmd.Context(), cfg.DB.Retention)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d visitor records older than %s\n", n, cfg.DB.Retention)
			return nil
		},
	}
}

// loadCatalog reads the YAML catalog at path, or the built-in one when path is
// empty.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	cat, err := catalog.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return cat, nil
}
