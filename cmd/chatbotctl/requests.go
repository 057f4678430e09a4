package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/socvr/chatbot-go/pkg/config"
	"github.com/socvr/chatbot-go/pkg/store"
)

// requestsCmd represents the requests command
var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Inspect permission requests",
	Long:  `Inspect permission requests.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'requests' requires a subcommand (list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

// requestsListCmd represents the requests list command
var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending permission requests",
	Long: `List the permission requests that are waiting for a decision, oldest
first. Reads the database at DATABASE_URL.

Example:
  chatbotctl requests list`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := listRequests(cmd.Context(), cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list requests: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(requestsCmd)
	requestsCmd.AddCommand(requestsListCmd)
}

func listRequests(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := openStore(ctx, storePostgres, cfg, false, zap.NewNop())
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	return printRequests(ctx, w, st, time.Now())
}

func printRequests(ctx context.Context, w io.Writer, r store.Reader, now time.Time) error {
	pending, err := r.ListPendingRequests(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(w, "No pending requests")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tGROUP\tAGE")
	for _, req := range pending {
		age := now.Sub(req.CreatedOn).Truncate(time.Hour)
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", req.ID, req.RequestingUserID, req.RequestedGroup, age)
	}
	return tw.Flush()
}
