package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alextreichler/portfolio/internal/imaging"
	"github.com/alextreichler/portfolio/internal/models"
	"github.com/alextreichler/portfolio/internal/projects"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List, add and delete portfolio projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		list, err := db.ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No projects.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tBRAND\tTAGS\tCREATED")
		for _, p := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Brand, strings.Join(p.Tags, ","), p.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var addFlags struct {
	brand       string
	description string
	tags        string
	link        string
	image       string
}

var projectsAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft := projects.Draft{
			Title:       args[0],
			Brand:       addFlags.brand,
			Description: addFlags.description,
			Tags:        addFlags.tags,
			Link:        addFlags.link,
		}
		if addFlags.image != "" {
			uri, err := imageFile(addFlags.image)
			if err != nil {
				return err
			}
			draft.ImageURL = uri
		}

		record, err := draft.Record()
		if err != nil {
			return err
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		p, err := db.InsertProject(cmd.Context(), record)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Project %q added with id %s\n", p.Title, p.ID)
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteProject(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Project %s deleted.\n", args[0])
		return nil
	},
}

var heroCmd = &cobra.Command{
	Use:   "hero",
	Short: "Manage the hero image",
}

var heroSetCmd = &cobra.Command{
	Use:   "set <image-file>",
	Short: "Downscale an image and use it as the hero artwork",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uri, err := imageFile(args[0])
		if err != nil {
			return err
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SetSiteConfig(cmd.Context(), models.HeroImageKey, uri); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Hero image updated.")
		return nil
	},
}

var contactLimit int

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Read the contact log",
}

var contactListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent contact messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		msgs, err := db.ListContactMessages(cmd.Context(), contactLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, m := range msgs {
			fmt.Fprintf(out, "[%s] %s <%s>\n%s\n\n", m.CreatedAt.Format("2006-01-02 15:04"), m.Name, m.Email, m.Message)
		}
		if len(msgs) == 0 {
			fmt.Fprintln(out, "No messages.")
		}
		return nil
	},
}

// imageFile runs a local image through the same preprocessing as uploads.
func imageFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	uri, err := imaging.Preprocess(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return uri, nil
}

func init() {
	projectsAddCmd.Flags().StringVar(&addFlags.brand, "brand", "", "client or brand name")
	projectsAddCmd.Flags().StringVar(&addFlags.description, "description", "", "markdown description")
	projectsAddCmd.Flags().StringVar(&addFlags.tags, "tags", "", "comma separated tags")
	projectsAddCmd.Flags().StringVar(&addFlags.link, "link", "", "project URL (defaults to #)")
	projectsAddCmd.Flags().StringVar(&addFlags.image, "image", "", "image file to downscale and embed")

	contactListCmd.Flags().IntVar(&contactLimit, "limit", 20, "number of messages to show")

	projectsCmd.AddCommand(projectsListCmd, projectsAddCmd, projectsDeleteCmd)
	heroCmd.AddCommand(heroSetCmd)
	contactCmd.AddCommand(contactListCmd)
}
