package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docrag/src/core/rag"
	"docrag/src/fsutil"
	"docrag/src/infrastructure/log"
	"docrag/src/reader"
	"docrag/src/storage/postgres/documentctrl"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files or directories]",
	Short: "Import documents into the collection from the local filesystem",
	Long: `The ingest command imports local files synchronously, without going
through the upload bucket and job queue. Directories are walked recursively.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	settingDefaultConfig()
}

func runIngest(cmd *cobra.Command, args []string) error {
	paths, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files found under the given paths")
	}

	oc := newOllamaClient()
	provider := newOllamaProvider(oc)

	store := newWeaviateStore()
	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection schema: %v", err)
	}

	chunker, err := newChunkerFromConfig()
	if err != nil {
		return err
	}

	// The document registry is optional for local imports
	var recorder rag.Recorder
	if db, err := openPostgres(); err == nil {
		if err := db.AutoMigrate(&documentctrl.Document{}); err != nil {
			return fmt.Errorf("failed to migrate database: %v", err)
		}
		documentService, err := documentctrl.NewDocumentService(db)
		if err != nil {
			return err
		}
		recorder = documentService
	} else {
		log.Info("postgres unavailable, documents will not be registered", "error", err.Error())
	}

	ragService, err := rag.NewService(chunker, provider, store, recorder)
	if err != nil {
		return err
	}

	fs := fsutil.NewLocalFileStore()
	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("importing documents"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	total := 0
	for _, path := range paths {
		r := reader.ForPath(path, fs)
		count, err := ragService.ImportFile(ctx, r, path, filepath.Base(path), "")
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		total += count
		bar.Add(1)
	}

	fmt.Printf("\nImported %d chunks from %d files\n", total, len(paths))
	return nil
}

func collectFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	return paths, nil
}
