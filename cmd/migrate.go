/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/studydeck/internal/infrastructure/config"
	"github.com/eslsoft/studydeck/internal/infrastructure/database"
	"github.com/eslsoft/studydeck/internal/usecase/deck"
)

const (
	migrateDeckKey     = "migrate.deck"
	migrateLearnerKey  = "migrate.learner_id"
	migrateSheetKey    = "migrate.sheet"
	migrateStartRowKey = "migrate.start_row"
)

// migrateCmd applies the schema and optionally seeds a deck of cards
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and optionally seed a deck",
	Long: `Creates missing tables and indexes. With --deck, cards are read from an
.xlsx or .csv file (question, answer, category, difficulty, tags in columns
A to E) and inserted for --learner. Note: go-sqlite3 requires CGO_ENABLED=1.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, cleanup, err := database.OpenSQL(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := database.MigrateSQL(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		cmd.Println("database schema is up to date")

		deckPath := viper.GetString(migrateDeckKey)
		if deckPath == "" {
			return nil
		}

		readCfg := deck.DefaultReadConfig()
		if sheet := viper.GetString(migrateSheetKey); sheet != "" {
			readCfg.SheetName = sheet
		}
		if start := viper.GetInt(migrateStartRowKey); start > 0 {
			readCfg.StartRow = start
		}
		rows, rowErrs, err := deck.ReadFile(deckPath, readCfg)
		if err != nil {
			return fmt.Errorf("read deck: %w", err)
		}
		for _, rowErr := range rowErrs {
			cmd.PrintErrln("skipped", rowErr.Error())
		}

		res, err := deck.Seed(cmd.Context(), db, viper.GetInt64(migrateLearnerKey), rows, time.Now())
		if err != nil {
			return fmt.Errorf("seed deck: %w", err)
		}
		cmd.Printf("seeded %s: %d processed, %d created, %d skipped, %d categories created\n",
			deckPath, res.Processed, res.Created, res.Skipped+len(rowErrs), res.CategoriesCreated)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().String("deck", "", "deck file (.xlsx or .csv) to seed after migrating")
	migrateCmd.Flags().Int64("learner", 0, "learner that owns the seeded cards")
	migrateCmd.Flags().String("sheet", "", "worksheet to read from an .xlsx deck (default Sheet1)")
	migrateCmd.Flags().Int("start-row", 0, "first data row, 1-based (default 2)")

	bindFlags(migrateCmd.Flags(), map[string]string{
		"deck":      migrateDeckKey,
		"learner":   migrateLearnerKey,
		"sheet":     migrateSheetKey,
		"start-row": migrateStartRowKey,
	})
}
