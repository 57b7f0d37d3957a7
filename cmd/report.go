package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wzreports/zeugnis/internal/diag"
	"github.com/wzreports/zeugnis/internal/gradestore"
	"github.com/wzreports/zeugnis/internal/output"
	"github.com/wzreports/zeugnis/internal/report"
	"github.com/wzreports/zeugnis/internal/template"
)

var (
	reportStream string
	reportTerm   string
	reportPids   []string
)

var reportCmd = &cobra.Command{
	Use:   "report <Klasse>",
	Short: "Notenzeugnisse für eine Klasse zusammenstellen",
	Long: `Stellt die Zeugnisdaten für alle Schüler einer Klasse (oder einer
Klasse.Maßstab-Gruppe) zusammen. Die Schüler werden nach aufgelöstem
Zeugnistyp gruppiert; Fehler einzelner Schüler brechen den Lauf nicht ab.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(args[0])
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportStream, "stream", "s", "", "Maßstab (Gym|RS|HS, leer = alle)")
	reportCmd.Flags().StringVarP(&reportTerm, "term", "t", "2", "Halbjahr")
	reportCmd.Flags().StringSliceVarP(&reportPids, "pid", "p", nil, "nur diese Schüler (mehrfach möglich)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(class string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := gradestore.Open(filepath.Join(cfg.DataDir, fmt.Sprintf("%d.sqlite", cfg.SchoolYear)))
	if err != nil {
		return err
	}
	defer store.Close()

	templates, err := template.LoadDir(cfg.TemplateDir)
	if err != nil {
		return err
	}

	rep := diag.NewReport()
	builder := report.NewBuilder(store, cfg, templates)
	batches, err := builder.BuildGroup(context.Background(), class, reportStream, reportTerm, reportPids, rep)
	if err != nil {
		return err
	}

	f := output.NewConsoleFormatter(os.Stdout, cfg.Quiet, cfg.Verbose)
	if err := f.Format(rep); err != nil {
		return err
	}
	if !cfg.Quiet {
		rtypes := make([]string, 0, len(batches))
		for rtype := range batches {
			rtypes = append(rtypes, rtype)
		}
		sort.Strings(rtypes)
		for _, rtype := range rtypes {
			reports := batches[rtype]
			fmt.Printf("%s (%s): %d Schüler\n", rtype, reports[0].Template.Name, len(reports))
			if cfg.Verbose {
				for _, r := range reports {
					fmt.Printf("  %s  %s %s\n", r.PID,
						r.Fields["FIRSTNAMES"], r.Fields["LASTNAME"])
				}
			}
		}
	}
	f.Summary(rep)
	if rep.HasErrors() {
		return fmt.Errorf("Lauf mit Fehlern beendet")
	}
	return nil
}
