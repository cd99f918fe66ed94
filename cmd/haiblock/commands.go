package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	haiblock "github.com/haiblock/gosdk"
)

// --- upload ---

func newUploadCmd(opts *globalOptions) *cobra.Command {
	var meta map[string]string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file for processing",
		Long: `Upload a file for processing.

Examples:
  haiblock upload ./about-us.txt
  haiblock upload ./faq.pdf --meta source=website --meta owner=marketing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := opts.client()
			if err != nil {
				return err
			}
			defer done()

			var metadata map[string]any
			if len(meta) > 0 {
				metadata = make(map[string]any, len(meta))
				for k, v := range meta {
					metadata[k] = v
				}
			}

			content, err := client.UploadFile(cmd.Context(), args[0], metadata)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == outputJSON {
				return printJSON(out, content)
			}
			printSuccess(out, "Uploaded %s", content.Filename)
			printContent(out, content)
			return nil
		},
	}
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "metadata key=value pairs sent with the file")
	return cmd
}

// --- content ---

func newContentCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Manage uploaded content",
	}
	cmd.AddCommand(newContentGetCmd(opts), newContentListCmd(opts), newContentDeleteCmd(opts))
	return cmd
}

func newContentGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <content-id>",
		Short: "Show one piece of content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := opts.client()
			if err != nil {
				return err
			}
			defer done()

			content, err := client.GetContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), content)
			}
			printContent(cmd.OutOrStdout(), content)
			return nil
		},
	}
}

func newContentListCmd(opts *globalOptions) *cobra.Command {
	var (
		limit  int
		offset int
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := opts.client()
			if err != nil {
				return err
			}
			defer done()

			var items []haiblock.Content
			if all {
				for content, err := range client.ListContentIter(cmd.Context(), limit) {
					if err != nil {
						return err
					}
					items = append(items, *content)
				}
			} else {
				items, err = client.ListContent(cmd.Context(), &haiblock.ListContentRequest{Limit: limit, Offset: offset})
				if err != nil {
					return err
				}
			}

			if opts.output == outputJSON {
				if items == nil {
					items = []haiblock.Content{}
				}
				return printJSON(cmd.OutOrStdout(), items)
			}
			return printContentTable(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of items to skip")
	cmd.Flags().BoolVar(&all, "all", false, "follow every page")
	return cmd
}

func newContentDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <content-id>",
		Short: "Delete a piece of content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := opts.client()
			if err != nil {
				return err
			}
			defer done()

			deleted, err := client.DeleteContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": args[0], "deleted": deleted})
			}
			printSuccess(cmd.OutOrStdout(), "Deleted %s", args[0])
			return nil
		},
	}
}

// --- transform ---

func newTransformCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transform <content-id>",
		Short: "Transform content for AI consumption",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := opts.client()
			if err != nil {
				return err
			}
			defer done()

			result, err := client.TransformContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if opts.output == outputJSON {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				printTransformation(cmd.OutOrStdout(), args[0], result)
			}
			// An unsuccessful transformation still exits non-zero.
			return result.Err()
		},
	}
}

// --- submit ---

func newSubmitCmd(opts *globalOptions) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "submit <content-id>",
		Short: "Submit content to an AI provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := opts.client()
			if err != nil {
				return err
			}
			defer done()

			submission, err := client.SubmitToModel(cmd.Context(), args[0], haiblock.Provider(provider))
			if err != nil {
				return err
			}

			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), submission)
			}
			printSuccess(cmd.OutOrStdout(), "Submitted %s to %s", args[0], submission.Provider)
			printSubmission(cmd.OutOrStdout(), submission)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", haiblock.ProviderBedrock.String(), "AI provider")
	return cmd
}

// --- submissions ---

func newSubmissionsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "Inspect submissions",
	}
	cmd.AddCommand(newSubmissionsGetCmd(opts), newSubmissionsListCmd(opts))
	return cmd
}

func newSubmissionsGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <submission-id>",
		Short: "Show one submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := opts.client()
			if err != nil {
				return err
			}
			defer done()

			submission, err := client.GetSubmission(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), submission)
			}
			printSubmission(cmd.OutOrStdout(), submission)
			return nil
		},
	}
}

func newSubmissionsListCmd(opts *globalOptions) *cobra.Command {
	var (
		contentID string
		limit     int
		offset    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := opts.client()
			if err != nil {
				return err
			}
			defer done()

			req := haiblock.NewListSubmissionsRequestBuilder().
				ContentID(contentID).
				Limit(limit).
				Offset(offset).
				Build()

			items, err := client.ListSubmissions(cmd.Context(), req)
			if err != nil {
				return err
			}

			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No submissions.")
				return nil
			}
			return printSubmissionTable(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().StringVar(&contentID, "content-id", "", "only list submissions of this content")
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of items to skip")
	return cmd
}

// --- analytics ---

func newAnalyticsCmd(opts *globalOptions) *cobra.Command {
	var contentLimit int

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show the analytics dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := opts.client()
			if err != nil {
				return err
			}
			defer done()

			analytics, err := client.GetAnalytics(cmd.Context())
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), analytics)
			}

			var contents []haiblock.Content
			if contentLimit > 0 {
				contents, err = client.ListContent(cmd.Context(), &haiblock.ListContentRequest{Limit: contentLimit})
				if err != nil {
					return fmt.Errorf("listing content for dashboard: %w", err)
				}
			}
			renderDashboard(cmd.OutOrStdout(), analytics, contents)
			return nil
		},
	}
	cmd.Flags().IntVar(&contentLimit, "content-limit", 50, "content items to summarise (0 skips the content section)")
	return cmd
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
