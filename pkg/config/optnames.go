package config

const (
	OptBaseURL        = "base-url"
	OptBufferSize     = "buffer-size"
	OptCodec          = "codec"
	OptConcurrency    = "concurrency"
	OptConnTimeout    = "connect-timeout"
	OptCountCancelled = "count-cancelled"
	OptCountFailed    = "count-failed"
	OptForce          = "force"
	OptForceHTTP2     = "force-http2"
	OptKeepIndex      = "keep-index"
	OptLogFile        = "log-file"
	OptLoggingLevel   = "log-level"
	OptMaxConnPerHost = "max-conn-per-host"
	OptMirror         = "mirror"
	OptMirrorSRV      = "mirror-srv"
	OptPIDFile        = "pid-file"
	OptResolve        = "resolve"
	OptRetries        = "retries"
	OptRoutingTable   = "routing-table"
	OptStateFile      = "state-file"
	OptVerbose        = "verbose"
)
