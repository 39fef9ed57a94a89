package config

import (
	"fmt"
	"net"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spuzmc/spuz-get/pkg/client"
	"github.com/spuzmc/spuz-get/pkg/download"
	"github.com/spuzmc/spuz-get/pkg/logging"
)

const envPrefix = "SPUZ"

func AddRootPersistentFlags(cmd *cobra.Command) error {
	// Persistent Flags (applies to all commands/subcommands)
	cmd.PersistentFlags().IntP(OptConcurrency, "c", runtime.GOMAXPROCS(0)*4, "Maximum number of files downloaded at the same time")
	cmd.PersistentFlags().Duration(OptConnTimeout, 5*time.Second, "Timeout for establishing a connection, format is <number><unit>, e.g. 10s")
	cmd.PersistentFlags().String(OptBufferSize, "16KiB", "Size of the read buffer used per file (e.g. 64KiB)")
	cmd.PersistentFlags().BoolP(OptForce, "f", false, "Force download, overwriting existing files")
	cmd.PersistentFlags().StringSlice(OptResolve, []string{}, "Resolve hostnames to specific IPs, format is <hostname>:<port>:<ip>")
	cmd.PersistentFlags().IntP(OptRetries, "r", 0, "Number of transport-level retries for a failed request")
	cmd.PersistentFlags().Int(OptMaxConnPerHost, 0, "Maximum number of connections per host (0 means unlimited)")
	cmd.PersistentFlags().Bool(OptCountFailed, false, "Count failed files as settled, so the job reports failure instead of never finishing")
	cmd.PersistentFlags().Bool(OptCountCancelled, false, "Count cancelled files as settled")
	cmd.PersistentFlags().StringSlice(OptMirror, []string{}, "Mirror base URLs to spread downloads over")
	cmd.PersistentFlags().String(OptMirrorSRV, "", "SRV record listing mirror hosts, e.g. assets.internal")
	cmd.PersistentFlags().String(OptRoutingTable, "", "JSON file of host overrides ([{\"key\": host, \"value\": host}])")
	cmd.PersistentFlags().String(OptStateFile, "", "TOML state file recording verified files")
	cmd.PersistentFlags().String(OptPIDFile, "", "Lock file preventing concurrent runs against the same state")
	cmd.PersistentFlags().BoolP(OptVerbose, "v", false, "Verbose mode (equivalent to --log-level debug)")
	cmd.PersistentFlags().String(OptLoggingLevel, "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(OptLogFile, "", "Also write logs to this file (rotated)")
	cmd.PersistentFlags().Bool(OptForceHTTP2, false, "Force HTTP/2")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		return fmt.Errorf("failed to bind persistent flags: %w", err)
	}

	// Hide flags from help, these are intended to be used for testing/internal benchmarking/debugging only
	if err := cmd.PersistentFlags().MarkHidden(OptForceHTTP2); err != nil {
		return fmt.Errorf("failed to hide flag %s: %w", OptForceHTTP2, err)
	}
	return nil
}

func PersistentStartupProcessFlags() error {
	if viper.GetBool(OptVerbose) {
		viper.Set(OptLoggingLevel, "debug")
	}
	if logFile := viper.GetString(OptLogFile); logFile != "" {
		logging.AddFileOutput(logFile)
	}
	setLogLevel(viper.GetString(OptLoggingLevel))
	return nil
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// ResolveOverridesToMap parses `--resolve` values (<hostname>:<port>:<ip>)
// into a map of host:port to ip:port.
func ResolveOverridesToMap(resolveOverrides []string) (map[string]string, error) {
	logger := logging.GetLogger()
	resolveOverrideMap := make(map[string]string)

	if len(resolveOverrides) == 0 {
		return nil, nil
	}

	for _, resolveHost := range resolveOverrides {
		split := strings.SplitN(resolveHost, ":", 3)
		if len(split) != 3 {
			return nil, fmt.Errorf("invalid resolve host format, expected <hostname>:port:<ip>, got: %s", resolveHost)
		}
		host, port, addr := split[0], split[1], split[2]
		if net.ParseIP(host) != nil {
			return nil, fmt.Errorf("invalid hostname specified, looks like an IP address: %s", host)
		}
		hostPort := net.JoinHostPort(host, port)
		if net.ParseIP(addr) == nil {
			return nil, fmt.Errorf("invalid IP address: %s", addr)
		}
		target := net.JoinHostPort(addr, port)
		if existing, ok := resolveOverrideMap[hostPort]; ok && existing != target {
			return nil, fmt.Errorf("duplicate host:port specified: %s", hostPort)
		}
		resolveOverrideMap[hostPort] = target
	}
	if logger.GetLevel() == zerolog.DebugLevel {
		for key, elem := range resolveOverrideMap {
			logger.Debug().Str("host_port", key).Str("resolve_target", elem).Msg("Config")
		}
	}
	return resolveOverrideMap, nil
}

// ClientOptions collects the HTTP client settings from flags and environment.
func ClientOptions() (client.Options, error) {
	overrides, err := ResolveOverridesToMap(viper.GetStringSlice(OptResolve))
	if err != nil {
		return client.Options{}, err
	}
	return client.Options{
		ForceHTTP2:       viper.GetBool(OptForceHTTP2),
		MaxRetries:       viper.GetInt(OptRetries),
		ConnectTimeout:   viper.GetDuration(OptConnTimeout),
		MaxConnPerHost:   viper.GetInt(OptMaxConnPerHost),
		ResolveOverrides: overrides,
	}, nil
}

// DownloadOptions collects the worker settings from flags and environment.
func DownloadOptions() (download.Options, error) {
	bufferSize, err := humanize.ParseBytes(viper.GetString(OptBufferSize))
	if err != nil {
		return download.Options{}, fmt.Errorf("unable to parse buffer size: %w", err)
	}
	if bufferSize == 0 {
		return download.Options{}, fmt.Errorf("buffer size must be positive")
	}
	concurrency := viper.GetInt(OptConcurrency)
	if concurrency < 0 {
		return download.Options{}, fmt.Errorf("concurrency must not be negative, got %d", concurrency)
	}
	return download.Options{
		Concurrency: concurrency,
		BufferSize:  int(bufferSize),
		Policy: download.CompletionPolicy{
			CountFailed:    viper.GetBool(OptCountFailed),
			CountCancelled: viper.GetBool(OptCountCancelled),
		},
	}, nil
}
