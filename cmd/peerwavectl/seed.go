package main

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/peerwave/backend/internal/database"
	"github.com/peerwave/backend/internal/models"
	"github.com/peerwave/backend/internal/social"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var userCount int
	var postCount int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with fake users and posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(); err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			engine := social.NewEngine(database.DB)
			ctx := context.Background()

			wallets := make([]string, 0, userCount)
			for i := 0; i < userCount; i++ {
				wallet := fakeWallet()
				username := fmt.Sprintf("%s%d", gofakeit.Word(), gofakeit.Number(10, 9999))

				if _, err := engine.UpsertProfile(ctx, wallet, username,
					gofakeit.Sentence(8), models.AccountStandard); err != nil {
					return fmt.Errorf("failed to seed user %d: %w", i, err)
				}
				wallets = append(wallets, wallet)
			}

			postIDs := make([]string, 0, postCount)
			for i := 0; i < postCount; i++ {
				author := wallets[gofakeit.Number(0, len(wallets)-1)]
				post, err := engine.CreatePost(ctx, author, gofakeit.Sentence(12), "", "")
				if err != nil {
					return fmt.Errorf("failed to seed post %d: %w", i, err)
				}
				postIDs = append(postIDs, post.ID)
			}

			// Scatter likes and comments so feeds look lived-in.
			for _, postID := range postIDs {
				for i := 0; i < gofakeit.Number(0, 5); i++ {
					wallet := wallets[gofakeit.Number(0, len(wallets)-1)]
					if _, err := engine.ToggleLike(ctx, wallet, postID); err != nil {
						return fmt.Errorf("failed to seed like: %w", err)
					}
				}
				for i := 0; i < gofakeit.Number(0, 3); i++ {
					wallet := wallets[gofakeit.Number(0, len(wallets)-1)]
					if _, err := engine.AddComment(ctx, wallet, postID, gofakeit.Sentence(6), ""); err != nil {
						return fmt.Errorf("failed to seed comment: %w", err)
					}
				}
			}

			fmt.Printf("seeded %d users and %d posts\n", userCount, postCount)
			return nil
		},
	}

	cmd.Flags().IntVar(&userCount, "users", 25, "number of users to create")
	cmd.Flags().IntVar(&postCount, "posts", 100, "number of posts to create")

	return cmd
}

func fakeWallet() string {
	return fmt.Sprintf("0x%020x%020x", gofakeit.Uint64(), gofakeit.Uint64())
}
