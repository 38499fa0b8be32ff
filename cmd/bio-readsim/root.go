package main

import (
	"github.com/grailbio/base/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bio-readsim",
		Short:         "Simulate sequencing reads of virus integration sites",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd(viper.New()), newIndexCmd())
	return root
}

// Execute runs the command named on the command line.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
