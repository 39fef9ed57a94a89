package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/viper"

	spuz "github.com/spuzmc/spuz-get/pkg"
	"github.com/spuzmc/spuz-get/pkg/client"
	"github.com/spuzmc/spuz-get/pkg/config"
	"github.com/spuzmc/spuz-get/pkg/download"
	"github.com/spuzmc/spuz-get/pkg/integrity"
	"github.com/spuzmc/spuz-get/pkg/logging"
	"github.com/spuzmc/spuz-get/pkg/mirror"
)

// NewHTTPClient builds the shared client from flags and environment.
func NewHTTPClient() (*http.Client, error) {
	clientOpts, err := config.ClientOptions()
	if err != nil {
		return nil, err
	}
	return client.NewHTTPClient(clientOpts), nil
}

// NewGetter wires a Getter from flags and environment around httpClient.
func NewGetter(httpClient *http.Client) (*spuz.Getter, error) {
	downloadOpts, err := config.DownloadOptions()
	if err != nil {
		return nil, err
	}
	router, err := newRouter()
	if err != nil {
		return nil, err
	}
	getter := &spuz.Getter{
		Worker: download.NewWorker(httpClient, downloadOpts),
		Router: router,
	}
	if path := viper.GetString(config.OptStateFile); path != "" {
		state, err := integrity.Load(path)
		if err != nil {
			return nil, err
		}
		getter.State = state
	}
	return getter, nil
}

func newRouter() (*mirror.Router, error) {
	var table mirror.RoutingTable
	if path := viper.GetString(config.OptRoutingTable); path != "" {
		parsed, err := mirror.ParseRoutingTable(path)
		if err != nil {
			return nil, err
		}
		table = parsed
	}
	mirrors := viper.GetStringSlice(config.OptMirror)
	if srvName := viper.GetString(config.OptMirrorSRV); srvName != "" {
		hosts, err := LookupMirrorHosts(srvName)
		if err != nil {
			return nil, err
		}
		for _, host := range hosts {
			mirrors = append(mirrors, "http://"+host)
		}
	}
	return mirror.NewRouter(table, mirrors)
}

// RunJob runs job under the PID file lock, if one is configured, and logs
// the outcome.
func RunJob(ctx context.Context, getter *spuz.Getter, job download.Job) error {
	logger := logging.GetLogger()
	if path := viper.GetString(config.OptPIDFile); path != "" {
		pid := NewPIDFile(path)
		if err := pid.Acquire(); err != nil {
			return err
		}
		defer func() {
			if err := pid.Release(); err != nil {
				logger.Warn().Err(err).Msg("Releasing PID file")
			}
		}()
	}

	result, err := getter.Run(ctx, job)
	for index, taskErr := range result.Failed {
		logger.Error().Err(taskErr).Str("dest", result.Tasks[index].Dest).Msg("Failed")
	}
	if err != nil {
		return fmt.Errorf("error running job: %w", err)
	}
	return nil
}
