package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	internalApp "github.com/haierkeys/flownote-service/internal/app"
	"github.com/haierkeys/flownote-service/internal/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type exportFlags struct {
	config   string
	uid      int64
	clientID string
	output   string
}

func init() {
	flags := new(exportFlags)

	var exportCommand = &cobra.Command{
		Use:   "export (--uid 1 | --client-id ID) [-o dir]",
		Short: "Export a user's notes to a JSON file // 导出用户笔记",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.uid <= 0 && flags.clientID == "" {
				return fmt.Errorf("one of --uid or --client-id is required")
			}
			if flags.config == "" {
				flags.config = findConfig()
			}
			if flags.config == "" {
				return fmt.Errorf("config file not found")
			}

			a, err := openApp(cmd.Context(), flags.config)
			if err != nil {
				return err
			}
			defer a.Close()

			file, err := a.NoteService.Export(cmd.Context(), domain.Identity{UID: flags.uid, ClientID: flags.clientID}, time.Now())
			if err != nil {
				return err
			}

			if err := os.MkdirAll(flags.output, 0754); err != nil {
				return err
			}
			dst := filepath.Join(flags.output, file.FileName)
			if err := os.WriteFile(dst, file.Data, 0644); err != nil {
				return err
			}
			bootstrapLogger.Info("notes exported", zap.String("file", dst), zap.Int("bytes", len(file.Data)))
			return nil
		},
	}

	fs := exportCommand.Flags()
	fs.StringVarP(&flags.config, "config", "c", "", "config file")
	fs.Int64Var(&flags.uid, "uid", 0, "owner of the remote notes")
	fs.StringVar(&flags.clientID, "client-id", "", "client whose local notes are exported")
	fs.StringVarP(&flags.output, "output", "o", ".", "output directory")
	rootCmd.AddCommand(exportCommand)
}

// openApp builds an App Container for one-shot commands
// openApp 为一次性命令创建 App Container
func openApp(ctx context.Context, configPath string) (*internalApp.App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, _, err := internalApp.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return buildApp(ctx, cfg, bootstrapLogger)
}
