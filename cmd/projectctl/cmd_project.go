package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lovestory/lovestory/backend/go-services/internal/content"
	"github.com/lovestory/lovestory/backend/go-services/internal/projects"
)

var projectFlags struct {
	owner         string
	code          string
	slug          string
	template      string
	seedPath      string
	editableUntil string
	id            string
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project for an existing owner",
	RunE:  runProjectCreate,
}

var projectPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Make a project's share link resolve",
	RunE:  runProjectPublish,
}

var projectDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default document as YAML, a starting point for --seed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeSeedYAML(cmd.OutOrStdout(), content.Defaults())
	},
}

func init() {
	f := projectCreateCmd.Flags()
	f.StringVar(&projectFlags.owner, "owner", "", "Owner email (required)")
	f.StringVar(&projectFlags.code, "code", "", "Template code that unlocks the editor (required)")
	f.StringVar(&projectFlags.slug, "slug", "", "Share link slug (required)")
	f.StringVar(&projectFlags.template, "template", "", "Template type (default CONTENT_TEMPLATE_TYPE)")
	f.StringVar(&projectFlags.seedPath, "seed", "", "Initial content, YAML or JSON")
	f.StringVar(&projectFlags.editableUntil, "editable-until", "", "RFC3339 time after which saves are refused")
	for _, name := range []string{"owner", "code", "slug"} {
		_ = projectCreateCmd.MarkFlagRequired(name)
	}

	projectPublishCmd.Flags().StringVar(&projectFlags.id, "id", "", "Project id (required)")
	_ = projectPublishCmd.MarkFlagRequired("id")

	projectCmd.AddCommand(projectCreateCmd, projectPublishCmd, projectDefaultsCmd)
}

func runProjectCreate(cmd *cobra.Command, _ []string) error {
	in := projects.NewCreate{
		OwnerEmail:   projectFlags.owner,
		TemplateType: projectFlags.template,
		TemplateCode: projectFlags.code,
		Slug:         projectFlags.slug,
	}
	if projectFlags.seedPath != "" {
		seed, err := loadSeed(projectFlags.seedPath)
		if err != nil {
			return err
		}
		in.Seed = seed
	}
	if projectFlags.editableUntil != "" {
		t, err := time.Parse(time.RFC3339, projectFlags.editableUntil)
		if err != nil {
			return fmt.Errorf("--editable-until: %w", err)
		}
		in.EditableUntil = &t
	}

	return withBackends(cmd, func(ctx context.Context, b *backends) error {
		if in.TemplateType == "" {
			in.TemplateType = b.cfg.Content.TemplateType
		}
		if b.users != nil {
			u, err := b.users.GetByEmail(ctx, in.OwnerEmail)
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("no owner %s; create it with `projectctl owner create`", in.OwnerEmail)
			}
		}
		p, err := b.projects.Create(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created project %s\nshare link (after publish): %s\n", p.ID, projects.ShareLink(b.cfg.Server.PublicBaseURL, p))
		return nil
	})
}

func runProjectPublish(cmd *cobra.Command, _ []string) error {
	return withBackends(cmd, func(ctx context.Context, b *backends) error {
		if err := b.projects.Publish(ctx, projectFlags.id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published %s\n", projectFlags.id)
		return nil
	})
}
