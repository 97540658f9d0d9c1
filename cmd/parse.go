package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/haierkeys/flownote-service/internal/service"

	"github.com/bytedance/sonic"
	"github.com/gookit/goutil/dump"
	"github.com/spf13/cobra"
)

func init() {
	var debug bool

	var parseCommand = &cobra.Command{
		Use:   "parse [content]",
		Short: "Print the title, tags and mentions derived from note content // 解析笔记内容",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			if len(args) == 1 {
				content = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				content = strings.TrimRight(string(data), "\n")
			}

			result := service.ParseNote(content)
			if debug {
				d := dump.NewDumper(cmd.OutOrStdout(), 3)
				d.NoColor = true
				d.ShowFlag = dump.Fnopos
				d.Dump(result)
				return nil
			}

			out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	parseCommand.Flags().BoolVar(&debug, "debug", false, "dump the Go value instead of JSON")
	rootCmd.AddCommand(parseCommand)
}
