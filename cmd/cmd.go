package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spuzmc/spuz-get/cmd/assets"
	"github.com/spuzmc/spuz-get/cmd/job"
	"github.com/spuzmc/spuz-get/cmd/root"
	"github.com/spuzmc/spuz-get/cmd/verify"
	"github.com/spuzmc/spuz-get/cmd/version"
)

func GetRootCommand() *cobra.Command {
	rootCMD := root.GetCommand()
	rootCMD.AddCommand(job.GetCommand())
	rootCMD.AddCommand(assets.GetCommand())
	rootCMD.AddCommand(verify.GetCommand())
	rootCMD.AddCommand(version.VersionCMD)
	return rootCMD
}
