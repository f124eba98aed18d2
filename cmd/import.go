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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/studydeck/internal/infrastructure/config"
	"github.com/eslsoft/studydeck/internal/infrastructure/database"
	"github.com/eslsoft/studydeck/internal/usecase/backup"
)

const (
	importInputKey  = "backup.import.input"
	importGzipKey   = "backup.import.gzip"
	importTablesKey = "backup.import.tables"
	importBatchKey  = "backup.import.batch_size"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an NDJSON backup into the database",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := migrateSchema(cmd, cfg); err != nil {
			return err
		}
		service, err := newBackupService(cfg, viper.GetInt(importBatchKey))
		if err != nil {
			return err
		}

		path := viper.GetString(importInputKey)
		r, cls, err := openBackupSource(cmd, path, wantsGzip(path, viper.GetBool(importGzipKey)))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := cls.close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		opts := []backup.ImportOption{
			backup.WithImportProgress(backup.NewTextProgress(cmd.ErrOrStderr(), "import")),
			backup.WithImportTables(tableList(importTablesKey)),
		}
		if err := service.Import(ctx, r, opts...); err != nil {
			return fmt.Errorf("import backup: %w", err)
		}
		cmd.Printf("import finished: %s\n", describePath(path, "read from stdin"))
		return nil
	},
}

// migrateSchema brings the target database up to date so the backup's schema
// hash can match.
func migrateSchema(cmd *cobra.Command, cfg *config.Config) error {
	db, cleanup, err := database.OpenSQL(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := database.MigrateSQL(cmd.Context(), db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringP("input", "i", "", "backup file path, - for stdin")
	importCmd.Flags().Bool("gzip", false, "input is gzip compressed")
	importCmd.Flags().StringSlice("tables", nil, "only import these tables (comma separated or repeated)")
	importCmd.Flags().Int("batch-size", 0, "rows per batch (default 512)")

	bindFlags(importCmd.Flags(), map[string]string{
		"input":      importInputKey,
		"gzip":       importGzipKey,
		"tables":     importTablesKey,
		"batch-size": importBatchKey,
	})
}
