package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatbotctl",
	Short: "Run and manage the permission request chatbot",
	Long: `Run and manage the chatbot that lets room members ask to join
permission groups and lets existing members approve or reject those requests.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
