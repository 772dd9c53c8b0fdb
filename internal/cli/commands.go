package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clawhub/clawhub/internal/skillfile"
)

func newLoginCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "login <token>",
		Short: "Save a publish token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			cfg.Token = args[0]
			if server != "" {
				cfg.ServerURL = server
			}

			// Fail early on a bad token instead of at first publish.
			if _, err := NewClient(cfg).Me(cmd.Context()); err != nil {
				return fmt.Errorf("token verification failed: %w", err)
			}

			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Println(successStyle.Render("logged in"))
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "registry URL (default "+DefaultServerURL+")")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			user, err := NewClient(cfg).Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(titleStyle.Render(user.Name))
			if user.Email != "" {
				fmt.Println(mutedStyle.Render(user.Email))
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List skills on the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			skills, err := NewClient(cfg).ListSkills(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(skills) == 0 {
				fmt.Println(mutedStyle.Render("no skills published yet"))
				return nil
			}
			for _, s := range skills {
				fmt.Printf("%s %s\n", slugStyle.Render(s.Slug), mutedStyle.Render("v"+s.Version))
				if s.Description != "" {
					fmt.Printf("  %s\n", s.Description)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of skills to list")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <slug>",
		Short: "Show a skill and its readme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			skill, err := NewClient(cfg).GetSkill(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(titleStyle.Render(skill.Name) + " " + mutedStyle.Render("v"+skill.Version))
			if skill.Description != "" {
				fmt.Println(skill.Description)
			}
			if skill.Readme != "" {
				fmt.Println()
				fmt.Println(skill.Readme)
			}
			return nil
		},
	}
}

func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <SKILL.md>",
		Short: "Publish a skill from a SKILL.md file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			// Parse locally first for a fast, offline failure on a broken
			// manifest. The server parses again; its answer is the truth.
			if _, _, err := skillfile.Parse(string(content)); err != nil {
				return fmt.Errorf("invalid SKILL.md: %w", err)
			}

			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			if cfg.Token == "" {
				return fmt.Errorf("not logged in; run: claw login <token>")
			}

			skill, err := NewClient(cfg).Publish(cmd.Context(), string(content))
			if err != nil {
				return err
			}
			fmt.Println(successStyle.Render("published ") + slugStyle.Render(skill.Slug) +
				mutedStyle.Render(" v"+skill.Version))
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete one of your skills",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]
			if !yes {
				fmt.Printf("delete %s? [y/N] ", slugStyle.Render(slug))
				var answer string
				fmt.Scanln(&answer)
				if !strings.HasPrefix(strings.ToLower(answer), "y") {
					fmt.Println(mutedStyle.Render("aborted"))
					return nil
				}
			}

			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			if err := NewClient(cfg).DeleteSkill(cmd.Context(), slug); err != nil {
				return err
			}
			fmt.Println(successStyle.Render("deleted ") + slugStyle.Render(slug))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
