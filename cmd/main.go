package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quka-ai/workbench/cmd/service"
	_ "github.com/quka-ai/workbench/pkg/plugins/mock"
	_ "github.com/quka-ai/workbench/pkg/plugins/standard"
)

func main() {
	root := &cobra.Command{
		Use:   "workbench",
		Short: "workbench",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("empty command")
		},
	}

	root.AddCommand(service.NewCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
