package root

import (
	"fmt"
	"net/url"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spuzmc/spuz-get/pkg/cli"
	"github.com/spuzmc/spuz-get/pkg/config"
	"github.com/spuzmc/spuz-get/pkg/decompress"
	"github.com/spuzmc/spuz-get/pkg/download"
	"github.com/spuzmc/spuz-get/pkg/logging"
)

const rootLongDesc = `
spuz-get

spuz-get downloads many files at once under a fixed concurrency limit, streaming each one straight to disk and
decompressing it on the way when asked to. It is built for game launcher style workloads: thousands of small content
addressed assets, a handful of large runtime archives and libraries.

Every file is a task. Tasks run concurrently, each writes only its own destination, and a failing task never stops its
siblings. Files with a known SHA-1 are verified once downloaded and can be recorded in a state file so later runs skip
them.

Use the job subcommand to download a manifest of files, and the assets subcommand to download an asset index.
`

func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spuz-get [flags] <url> <dest>",
		Short: "spuz-get",
		Long:  rootLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.PersistentStartupProcessFlags()
		},
		RunE:    runRootCMD,
		Args:    cobra.ExactArgs(2),
		Example: `  spuz-get https://example.com/runtime.lzma runtime/java.tar --codec lzma`,
	}
	cmd.Flags().String(config.OptCodec, decompress.None.String(), "Decompress the response body (none, lzma, xz, lz4, gzip, bzip2, auto)")
	cmd.SetUsageTemplate(cli.UsageTemplate)
	err := config.AddRootPersistentFlags(cmd)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return cmd
}

func runRootCMD(cmd *cobra.Command, args []string) error {
	// After we run through the PreRun functions we want to silence usage from being printed
	// on all errors
	cmd.SilenceUsage = true
	logger := logging.GetLogger()

	urlString := args[0]
	dest := args[1]

	codec, err := decompress.ParseCodec(viper.GetString(config.OptCodec))
	if err != nil {
		return err
	}
	logger.Info().Str("url", urlString).
		Str("dest", dest).
		Str("codec", codec.String()).
		Str("buffer_size", viper.GetString(config.OptBufferSize)).
		Msg("Initiating")

	if err := cli.EnsureDestinationNotExist(dest); err != nil {
		return err
	}
	u, err := url.Parse(urlString)
	if err != nil {
		return fmt.Errorf("error parsing url %s: %w", urlString, err)
	}

	httpClient, err := cli.NewHTTPClient()
	if err != nil {
		return err
	}
	getter, err := cli.NewGetter(httpClient)
	if err != nil {
		return err
	}
	job := download.NewJobBuilder().PushTask(download.NewTask(u, dest, 0).WithCodec(codec)).Build()
	if err := cli.RunJob(cmd.Context(), getter, job); err != nil {
		return err
	}

	if info, err := os.Stat(dest); err == nil {
		logger.Info().Str("dest", dest).Str("size", humanize.Bytes(uint64(info.Size()))).Msg("Complete")
	}
	return nil
}
