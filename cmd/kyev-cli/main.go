// Command kyev-cli is an interactive REPL client for a kyev-server.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jffjs/kyev/cmd/kyev-cli/tui"
)

var targetAddr string

var rootCmd = &cobra.Command{
	Use:   "kyev-cli",
	Short: "Interactive client for a kyev-server",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := tea.NewProgram(tui.New(targetAddr))
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&targetAddr, "addr", "a", "127.0.0.1:8080", "kyev-server address")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
