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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/studydeck/internal/infrastructure/config"
	"github.com/eslsoft/studydeck/internal/usecase/backup"
)

const (
	exportOutputKey = "backup.export.output"
	exportGzipKey   = "backup.export.gzip"
	exportTablesKey = "backup.export.tables"
	exportBatchKey  = "backup.export.batch_size"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cards, sessions and answer history as an NDJSON backup",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		service, err := newBackupService(cfg, viper.GetInt(exportBatchKey))
		if err != nil {
			return err
		}

		path := viper.GetString(exportOutputKey)
		gz := viper.GetBool(exportGzipKey)
		if path == "" {
			path = backupFilename(time.Now(), gz)
		}
		w, cls, err := createBackupSink(cmd, path, wantsGzip(path, gz))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := cls.close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		opts := []backup.ExportOption{
			backup.WithProgressReporter(backup.NewTextProgress(cmd.ErrOrStderr(), "export")),
			backup.WithTables(tableList(exportTablesKey)),
		}
		if err := service.Export(cmd.Context(), w, opts...); err != nil {
			return fmt.Errorf("export backup: %w", err)
		}
		cmd.Printf("export finished: %s\n", describePath(path, "written to stdout"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "backup output path, - for stdout")
	exportCmd.Flags().Bool("gzip", false, "gzip the output")
	exportCmd.Flags().StringSlice("tables", nil, "only export these tables (comma separated or repeated)")
	exportCmd.Flags().Int("batch-size", 0, "rows per select batch (default 512)")

	bindFlags(exportCmd.Flags(), map[string]string{
		"output":     exportOutputKey,
		"gzip":       exportGzipKey,
		"tables":     exportTablesKey,
		"batch-size": exportBatchKey,
	})
}
