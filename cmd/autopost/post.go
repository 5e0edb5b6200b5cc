package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/autopost/autopost/internal/adapter"
	"github.com/autopost/autopost/internal/app"
	"github.com/autopost/autopost/internal/config"
	"github.com/autopost/autopost/internal/orchestrator"
	"github.com/autopost/autopost/internal/platform"
	"github.com/spf13/cobra"
)

var (
	postPlatforms    []string
	postText         string
	postMediaPath    string
	postMediaType    string
	postVisibility   string
	postArticleURL   string
	postArticleTitle string
	postArticleDesc  string
	postTitle        string
	postSubtitle     string
	postDraft        bool
	postDryRun       bool
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Submit a post to one or more platforms",
	Long: `Submit a post to the selected platforms in parallel.

Examples:
  autopost post --platform x --text "hello world"
  autopost post --platform linkedin --platform x --platform substack \
      --text "big news" --title "Big News"
  autopost post --platform linkedin --text "look" --media photo.jpg
  autopost post --platform substack --text "draft body" --title "WIP" --draft`,
	RunE: runPost,
}

func init() {
	postCmd.Flags().StringSliceVarP(&postPlatforms, "platform", "p", nil, "Target platform (repeatable): linkedin, x, substack")
	postCmd.Flags().StringVarP(&postText, "text", "t", "", "Post body text")
	postCmd.Flags().StringVar(&postMediaPath, "media", "", "Path to an image or video file (single non-X platform only)")
	postCmd.Flags().StringVar(&postMediaType, "media-type", "", "Override detected media type: IMAGE or VIDEO")
	postCmd.Flags().StringVar(&postVisibility, "visibility", "PUBLIC", "LinkedIn visibility: PUBLIC, CONNECTIONS, LOGGED_IN_MEMBERS")
	postCmd.Flags().StringVar(&postArticleURL, "article-url", "", "LinkedIn article URL to share")
	postCmd.Flags().StringVar(&postArticleTitle, "article-title", "", "LinkedIn article title")
	postCmd.Flags().StringVar(&postArticleDesc, "article-description", "", "LinkedIn article description")
	postCmd.Flags().StringVar(&postTitle, "title", "", "Substack post title (required when posting to Substack)")
	postCmd.Flags().StringVar(&postSubtitle, "subtitle", "", "Substack post subtitle")
	postCmd.Flags().BoolVar(&postDraft, "draft", false, "Save the Substack post as a draft instead of publishing")
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "Validate and show what would be posted without posting")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForPosting(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	req, err := buildRequest()
	if err != nil {
		return err
	}

	if postDryRun {
		printDryRun(req)
		return nil
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	slog.Info("submitting post", "platforms", postPlatforms)

	resp, err := a.Orchestrator.Submit(ctx, *req)
	if err != nil {
		if resp != nil {
			printResults(resp.Results)
		}
		return err
	}

	printResults(resp.Results)
	fmt.Println()
	fmt.Println(resp.Message)
	return nil
}

func buildRequest() (*orchestrator.Request, error) {
	if len(postPlatforms) == 0 {
		return nil, fmt.Errorf("at least one --platform is required")
	}

	platforms := make([]platform.Platform, 0, len(postPlatforms))
	for _, s := range postPlatforms {
		p, err := platform.Parse(s)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}

	content := orchestrator.Content{
		Text:      postText,
		MediaType: platform.MediaTypeText,
	}

	if postMediaPath != "" {
		data, err := os.ReadFile(postMediaPath)
		if err != nil {
			return nil, fmt.Errorf("read media file: %w", err)
		}
		content.Media = data
		content.MediaFileName = filepath.Base(postMediaPath)
		content.MediaType = mediaTypeFor(postMediaPath)
		if postMediaType != "" {
			content.MediaType = platform.MediaType(strings.ToUpper(postMediaType))
		}
	}

	visibility := platform.Visibility(strings.ToUpper(postVisibility))
	linkedin := &adapter.LinkedInOptions{Visibility: visibility}
	if postArticleURL != "" {
		content.MediaType = platform.MediaTypeArticle
		linkedin.Article = &adapter.Article{
			URL:         postArticleURL,
			Title:       postArticleTitle,
			Description: postArticleDesc,
		}
	}

	req := &orchestrator.Request{
		Platforms: platforms,
		Content:   content,
		LinkedIn:  linkedin,
	}
	if postTitle != "" || postSubtitle != "" || postDraft {
		req.Substack = &adapter.SubstackOptions{
			Title:    postTitle,
			Subtitle: postSubtitle,
			Draft:    postDraft,
		}
	}
	return req, nil
}

func mediaTypeFor(path string) platform.MediaType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".webm", ".avi":
		return platform.MediaTypeVideo
	default:
		return platform.MediaTypeImage
	}
}

func printDryRun(req *orchestrator.Request) {
	fmt.Println("=== DRY RUN - Not posting ===")
	fmt.Println()
	fmt.Printf("Platforms: %v\n", req.Platforms)
	fmt.Printf("Text: %s\n", req.Content.Text)
	if len(req.Content.Media) > 0 {
		fmt.Printf("Media: %s (%d bytes, %s)\n", req.Content.MediaFileName, len(req.Content.Media), req.Content.MediaType)
	}
	if req.Substack != nil && req.Substack.Title != "" {
		fmt.Printf("Substack title: %s\n", req.Substack.Title)
	}
}

func printResults(results []adapter.Result) {
	for _, r := range results {
		if r.Success {
			fmt.Printf("  %-9s ok\n", r.Platform)
		} else {
			fmt.Printf("  %-9s failed: %s\n", r.Platform, r.Error)
		}
	}
}
