package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/wzreports/zeugnis/internal/catalog"
	"github.com/wzreports/zeugnis/internal/diag"
	"github.com/wzreports/zeugnis/internal/output"
	"github.com/wzreports/zeugnis/internal/template"
)

var checkCatalogDir string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fächertabellen und Vorlagen prüfen",
	Long: `Prüft alle Fächertabellen (YAML, gegen das eingebettete Schema) und
alle Vorlagendefinitionen, ohne Zeugnisse zu erstellen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck()
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkCatalogDir, "catalogs", "", "Verzeichnis der Fächertabellen (Standard: <data>/subjects)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rep := diag.NewReport()

	catalogDir := checkCatalogDir
	if catalogDir == "" {
		catalogDir = filepath.Join(cfg.DataDir, "subjects")
	}
	if _, err := os.Stat(catalogDir); err == nil {
		matches, err := doublestar.Glob(os.DirFS(catalogDir), "**/*.yaml")
		if err != nil {
			return err
		}
		for _, rel := range matches {
			path := filepath.Join(catalogDir, rel)
			if _, err := catalog.Load(path); err != nil {
				rep.Error("", "", "%s: %s", path, err)
			} else {
				rep.Info("", "", "Fächertabelle %s in Ordnung", path)
			}
		}
	}

	templates, err := template.LoadDir(cfg.TemplateDir)
	if err != nil {
		rep.Error("", "", "%s", err)
	} else {
		for _, key := range templates.Keys() {
			rep.Info("", "", "Vorlage %s geladen", key)
		}
	}

	f := output.NewConsoleFormatter(os.Stdout, cfg.Quiet, cfg.Verbose)
	if err := f.Format(rep); err != nil {
		return err
	}
	f.Summary(rep)
	if rep.HasErrors() {
		return fmt.Errorf("Prüfung mit Fehlern beendet")
	}
	return nil
}
