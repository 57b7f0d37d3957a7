package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wzreports/zeugnis/internal/config"
)

var (
	dataDir string
	quiet   bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "zeugnis",
	Short: "Notenverwaltung und Zeugniserstellung",
	Long: `zeugnis verwaltet Noten und erstellt Notenzeugnisse: Noten werden
gegen die Fächertabelle der Klasse geprüft, Sammelfächer gemittelt,
Versetzungs- und Abschlussregeln angewendet und die Zeugnisdaten für die
Vorlagen zusammengestellt.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Datenverzeichnis (überschreibt die Konfiguration)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "nur Fehler und Warnungen ausgeben")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "ausführliche Ausgabe")

	viper.BindPFlag("dataDir", rootCmd.PersistentFlags().Lookup("data"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	configPaths := []string{".zeugnisrc.json", ".zeugnisrc.yaml", ".zeugnisrc.yml"}
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "Fehler in der Konfigurationsdatei: %v\n", err)
				os.Exit(1)
			}
			break
		}
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(dataDir)
	if err != nil {
		return nil, err
	}
	if quiet {
		cfg.Quiet = true
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}
