package cmd

import (
	"fmt"

	"github.com/labshare/server/internal/cli/api"
	"github.com/spf13/cobra"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox [sender]",
	Short: "List received files grouped by sender (doctors and patients)",
	Long: `Without arguments, lists conversations ordered by most recent file.
With a sender username, lists that sender's files newest first.

  labshare inbox
  labshare inbox researcher1`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if len(args) == 1 {
			var resp api.Response[api.Conversation]
			if err := apiClient.Get("/files/inbox/"+args[0], nil, &resp); err != nil {
				return fmt.Errorf("fetching conversation: %w", err)
			}
			if flagJSON {
				printJSON(resp.Data)
				return nil
			}
			printConversation(resp.Data)
			return nil
		}

		var resp api.Response[[]api.Conversation]
		if err := apiClient.Get("/files/inbox", nil, &resp); err != nil {
			return fmt.Errorf("fetching inbox: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}

		if len(resp.Data) == 0 {
			fmt.Println("No files received yet")
			return nil
		}

		for _, conversation := range resp.Data {
			fmt.Printf("%s: %d file(s), %d unread, latest %s\n",
				conversation.Counterparty,
				len(conversation.Files),
				conversation.UnreadCount,
				conversation.LatestAt.Format("Jan 2, 2006"),
			)
		}
		return nil
	},
}

func printConversation(conversation api.Conversation) {
	fmt.Printf("Conversation with %s (%d unread)\n", conversation.Counterparty, conversation.UnreadCount)
	for _, file := range conversation.Files {
		marker := " "
		if !file.IsRead {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  %s\n", marker, file.ID, file.UploadedAt.Format("Jan 2, 2006"), file.FileName)
		fmt.Printf("    %s\n", file.Caption)
	}
}

func init() {
	rootCmd.AddCommand(inboxCmd)
}
