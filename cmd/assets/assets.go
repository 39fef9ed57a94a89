package assets

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spuzmc/spuz-get/pkg/cli"
	"github.com/spuzmc/spuz-get/pkg/config"
	"github.com/spuzmc/spuz-get/pkg/download"
	"github.com/spuzmc/spuz-get/pkg/fetch"
	"github.com/spuzmc/spuz-get/pkg/logging"
	"github.com/spuzmc/spuz-get/pkg/manifest"
)

const longDesc = `
assets

Download every object of a game asset index into <dir>/objects/<hash[0:2]>/<hash>. Objects are verified against the
SHA-1 the index lists for them. With --keep-index the index itself is saved to <dir>/indexes/<id>.json.
`

func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assets [flags] <index-url> <dir>",
		Short:   "download the objects of an asset index",
		Long:    longDesc,
		Args:    cobra.ExactArgs(2),
		RunE:    runAssetsCMD,
		Example: `  spuz-get assets https://piston-meta.mojang.com/v1/packages/<hash>/17.json ~/.minecraft/assets --keep-index 17`,
	}
	cmd.Flags().String(config.OptBaseURL, manifest.DefaultAssetBaseURL, "Host the asset objects are downloaded from")
	cmd.Flags().String(config.OptKeepIndex, "", "Save the raw index as indexes/<id>.json")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	cmd.SetUsageTemplate(cli.UsageTemplate)
	return cmd
}

func runAssetsCMD(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	logger := logging.GetLogger()
	indexURL, dir := args[0], args[1]

	httpClient, err := cli.NewHTTPClient()
	if err != nil {
		return err
	}
	tasks, err := manifest.ResolveAssets(cmd.Context(), fetch.New(httpClient), indexURL, dir, manifest.AssetOptions{
		BaseURL: viper.GetString(config.OptBaseURL),
		IndexID: viper.GetString(config.OptKeepIndex),
	})
	if err != nil {
		return err
	}

	builder := download.NewJobBuilder()
	for _, task := range tasks {
		builder.PushTask(task)
	}
	job := builder.Build()
	logger.Info().
		Str("index", indexURL).
		Int("objects", job.TaskCount()).
		Str("size", humanize.Bytes(job.TotalBytes())).
		Msg("Initiating")

	getter, err := cli.NewGetter(httpClient)
	if err != nil {
		return err
	}
	return cli.RunJob(cmd.Context(), getter, job)
}
