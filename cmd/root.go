package cmd

import (
	"fmt"
	"os"

	"github.com/haierkeys/flownote-service/pkg/fileurl"

	"github.com/spf13/cobra"
)

var configDefault string
var rootCmd = &cobra.Command{
	Use:   "flownote-service",
	Short: "FlowNote Service",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpTemplate()
		cmd.Help()
	},
}

func Execute(c string) {
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// findConfig returns the first config file that exists, or "" when none does
// findConfig 按优先级查找配置文件，均不存在时返回空
func findConfig() string {
	for _, p := range []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"} {
		if fileurl.IsExist(p) {
			return p
		}
	}
	return ""
}
