package job

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spuzmc/spuz-get/pkg/cli"
	"github.com/spuzmc/spuz-get/pkg/config"
	"github.com/spuzmc/spuz-get/pkg/download"
	"github.com/spuzmc/spuz-get/pkg/logging"
	"github.com/spuzmc/spuz-get/pkg/manifest"
)

const longDesc = `
job

Download every file listed in a manifest. Each line of the manifest names a url and a destination, optionally followed
by attributes:

  <url> <dest> [size=<bytes>] [codec=<codec>] [sha1=<hex>]

Blank lines and lines starting with # are ignored. Use - to read the manifest from stdin.
`

func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "job [flags] <manifest-file>",
		Short:   "download files listed in a manifest",
		Long:    longDesc,
		Args:    cobra.ExactArgs(1),
		RunE:    runJobCMD,
		Example: `  spuz-get job manifest.txt`,
	}
	cmd.SetUsageTemplate(cli.UsageTemplate)
	return cmd
}

func runJobCMD(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	logger := logging.GetLogger()

	file, err := manifest.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()
	tasks, err := manifest.Parse(file)
	if err != nil {
		return err
	}

	// Existing files are expected on reruns against a state file.
	checkDest := viper.GetString(config.OptStateFile) == ""
	builder := download.NewJobBuilder()
	for _, task := range tasks {
		if checkDest {
			if err := cli.EnsureDestinationNotExist(task.Dest); err != nil {
				return err
			}
		}
		builder.PushTask(task)
	}
	job := builder.Build()
	logger.Info().
		Str("manifest", args[0]).
		Int("tasks", job.TaskCount()).
		Str("concurrency", viper.GetString(config.OptConcurrency)).
		Msg("Initiating")

	httpClient, err := cli.NewHTTPClient()
	if err != nil {
		return err
	}
	getter, err := cli.NewGetter(httpClient)
	if err != nil {
		return err
	}
	return cli.RunJob(cmd.Context(), getter, job)
}
