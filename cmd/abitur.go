package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wzreports/zeugnis/internal/diag"
	"github.com/wzreports/zeugnis/internal/gradestore"
	"github.com/wzreports/zeugnis/internal/output"
	"github.com/wzreports/zeugnis/internal/report"
)

var abiturCmd = &cobra.Command{
	Use:   "abitur <PID>",
	Short: "Abiturergebnis eines Schülers berechnen",
	Long: `Berechnet aus den Noten des Abitur-Halbjahrs die gewichteten
Punktsummen, prüft die Bestehensbedingungen und ermittelt die Endnote.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAbitur(args[0])
	},
}

func init() {
	rootCmd.AddCommand(abiturCmd)
}

func runAbitur(pid string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := gradestore.Open(filepath.Join(cfg.DataDir, fmt.Sprintf("%d.sqlite", cfg.SchoolYear)))
	if err != nil {
		return err
	}
	defer store.Close()

	rep := diag.NewReport()
	builder := report.NewBuilder(store, cfg, nil)
	result, err := builder.BuildAbitur(context.Background(), pid, rep)

	f := output.NewConsoleFormatter(os.Stdout, cfg.Quiet, cfg.Verbose)
	if ferr := f.Format(rep); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	if !cfg.Quiet {
		for i := 1; i <= 8; i++ {
			fmt.Printf("%-30s %3s  E%d = %s\n",
				result.Fields[fmt.Sprintf("F%d", i)],
				result.Fields[fmt.Sprintf("S%d", i)],
				i,
				result.Fields[fmt.Sprintf("E%d", i)])
		}
		fmt.Printf("TOTAL1 = %s, TOTAL2 = %s\n",
			result.Fields["TOTAL1"], result.Fields["TOTAL2"])
	}
	if result.Pass {
		fmt.Printf("Bestanden, Note %s,%s (%s)\n",
			result.Fields["Grade1"], result.Fields["Grade2"], result.Fields["GradeT"])
	} else {
		fmt.Println("Abitur nicht bestanden")
	}
	return nil
}
