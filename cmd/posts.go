/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/ptyxes/recipebook/types"
	"github.com/spf13/cobra"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Browse meal posts",
}

var (
	searchQuery      string
	searchDifficulty string
	searchTime       string
	searchDietary    string
	searchSort       string
	searchPage       int
	searchPageSize   int
)

var postsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the post feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, _, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.Close()

		filter := types.PostFilter{
			Query:      searchQuery,
			Difficulty: searchDifficulty,
			Time:       types.TimeFilter(searchTime),
			Dietary:    searchDietary,
		}
		page, err := eng.Posts.Search(cmd.Context(), filter, types.SortMode(searchSort), searchPage, searchPageSize)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(page.Posts) == 0 {
			fmt.Fprintln(out, "No posts found.")
		}
		for _, p := range page.Posts {
			fmt.Fprintf(out, "#%d %s by %s\n", p.ID, p.Title, p.AuthorName)
			fmt.Fprintf(out, "   %s, %s, %d min, %d upvotes\n", p.Difficulty, p.DietaryType, p.TotalTime(), p.Upvotes)
			fmt.Fprintln(out, strings.Repeat("-", 50))
		}
		fmt.Fprintf(out, "page %d of %d (%d posts)\n", page.Page+1, page.TotalPages(), page.Total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsSearchCmd)

	postsSearchCmd.Flags().StringVar(&searchQuery, "query", "", "text to look for in titles and descriptions")
	postsSearchCmd.Flags().StringVar(&searchDifficulty, "difficulty", types.FilterAll, "Easy, Medium, Hard or All")
	postsSearchCmd.Flags().StringVar(&searchTime, "time", types.FilterAll, "Quick, Medium, Long or All")
	postsSearchCmd.Flags().StringVar(&searchDietary, "dietary", types.FilterAll, "dietary label or All")
	postsSearchCmd.Flags().StringVar(&searchSort, "sort", string(types.SortDate), "Date, Reputation, Preparation Time or Cooking Time")
	postsSearchCmd.Flags().IntVar(&searchPage, "page", 0, "zero-based page index")
	postsSearchCmd.Flags().IntVar(&searchPageSize, "page-size", 0, "posts per page (defaults to the configured page size)")
}
