package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "baseera",
	Short: "Retrieval-augmented question answering over Quran and Hadith",
	Long: `Baseera ingests Quranic verses and authentic Hadith narrations from
their upstream APIs, builds a hybrid lexical+semantic index over them,
and answers natural-language questions grounded strictly in the
retrieved passages.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".baseera.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
