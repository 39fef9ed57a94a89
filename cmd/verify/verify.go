package verify

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spuzmc/spuz-get/pkg/cli"
	"github.com/spuzmc/spuz-get/pkg/integrity"
	"github.com/spuzmc/spuz-get/pkg/logging"
)

func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <state-file>",
		Short: "re-verify every file recorded in a state file",
		Long:  "Hash every tracked file again. Missing or changed files are reported and dropped from the state file.",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerifyCMD,
	}
	cmd.SetUsageTemplate(cli.UsageTemplate)
	return cmd
}

func runVerifyCMD(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	state, err := integrity.Load(args[0])
	if err != nil {
		return err
	}
	bad, err := Verify(state)
	if err != nil {
		return err
	}
	if err := state.Save(); err != nil {
		return err
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d tracked files failed verification", bad, len(state.Tracked())+bad)
	}
	return nil
}

// Verify rehashes every tracked path and untracks the ones that are missing
// or no longer match. It returns how many were untracked.
func Verify(state *integrity.Statefile) (int, error) {
	logger := logging.GetLogger()
	paths := state.Tracked()
	results := make([]error, len(paths))

	errGroup := new(errgroup.Group)
	errGroup.SetLimit(8)
	for i, path := range paths {
		digest, _ := state.Lookup(path)
		i, path := i, path
		errGroup.Go(func() error {
			results[i] = integrity.Verify(path, digest)
			return nil
		})
	}
	_ = errGroup.Wait()

	bad := 0
	for i, err := range results {
		switch {
		case err == nil:
			continue
		case errors.Is(err, integrity.ErrDigestMismatch), errors.Is(err, fs.ErrNotExist):
			logger.Warn().Err(err).Str("dest", paths[i]).Msg("Untracked")
			state.Untrack(paths[i])
			bad++
		default:
			return bad, err
		}
	}
	logger.Info().Int("tracked", len(paths)-bad).Int("untracked", bad).Msg("Verified")
	return bad, nil
}
