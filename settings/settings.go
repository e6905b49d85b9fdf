/*
Package settings controls reading configuration from environment and assigning defaults
*/
package settings

import (
	"github.com/go-viper/mapstructure/v2"

	bedsettings "github.com/AustralianCyberSecurityCentre/azul-bedrock/v9/gosrc/settings"
)

var Settings *DSSettings
var Sketch *DSSketch
var Store *DSStore

type DSSketch struct {
	// Minimum size of the sketch, rounded up to the next power of two
	SizeBytes bedsettings.HumanReadableBytes `koanf:"size_bytes"`
	// Number of probes per line. Larger values are more precise, but slower
	Probes uint32 `koanf:"probes"`
	// Probe hash family: metro or xxhash
	Hash string `koanf:"hash"`
	// Estimated count at which filter emits a line
	Threshold uint8 `koanf:"threshold"`
	// Use NUL bytes as line delimiters instead of newlines
	ZeroTerminated bool `koanf:"zero_terminated"`
}

type DSStoreS3 struct {
	// S3 server address
	Endpoint string `koanf:"endpoint"`
	// Access key to auth against S3 bucket, empty to use IAM
	AccessKey string `koanf:"access_key"`
	// Secret key to auth against S3 bucket
	SecretKey string `koanf:"secret_key"`
	// Whether to utilise HTTPS for S3 transport
	Secure bool `koanf:"secure"`
	// S3 region or empty if unsupported by server
	Region string `koanf:"region"`
}

type DSStoreAzure struct {
	// format: https://<storage-account-name>.blob.core.windows.net/
	Endpoint string `koanf:"endpoint"`
	// optional, extracted from endpoint when empty (must be set for Azurite)
	StorageAccount string `koanf:"storage_account"`
	// shared key, empty to use DefaultAzureCredential
	AccessKey string `koanf:"access_key"`
}

type DSStoreRedis struct {
	Endpoint                 string `koanf:"endpoint"`
	Username                 string `koanf:"username"`
	Password                 string `koanf:"password"`
	DB                       int    `koanf:"db"`
	ConnectionTimeoutSeconds int    `koanf:"connection_timeout_seconds"`
}

type DSStore struct {
	S3    DSStoreS3    `koanf:"s3"`
	Azure DSStoreAzure `koanf:"azure"`
	Redis DSStoreRedis `koanf:"redis"`
}

type DSMetrics struct {
	// write metrics in node exporter textfile format to this path after each run
	Textfile string `koanf:"textfile"`
	// prometheus pushgateway to push metrics to after each run
	PushURL string `koanf:"push_url"`
	// job label used when pushing
	Job string `koanf:"job"`
}

type DSServer struct {
	// restapi server will listen for connections from this address
	ListenAddr string `koanf:"listen_addr"`
	// largest request body accepted by the query endpoints
	RequestMaxBytes bedsettings.HumanReadableBytes `koanf:"request_max_bytes"`
}

type DSSettings struct {
	// zerolog level name
	LogLevel string `koanf:"log_level"`
	// if set, also log to a rotating file in this folder
	LogPath string    `koanf:"log_path"`
	Sketch  DSSketch  `koanf:"sketch"`
	Store   DSStore   `koanf:"store"`
	Metrics DSMetrics `koanf:"metrics"`
	Server  DSServer  `koanf:"server"`
}

var defaults DSSettings = DSSettings{
	LogLevel: "info",
	LogPath:  "",
	Sketch: DSSketch{
		SizeBytes:      bedsettings.HumanToBytesFatal("8Mi"),
		Probes:         2,
		Hash:           "metro",
		Threshold:      2,
		ZeroTerminated: false,
	},
	Store: DSStore{
		S3: DSStoreS3{
			Secure: true,
		},
		Redis: DSStoreRedis{
			DB:                       0,
			ConnectionTimeoutSeconds: 5,
		},
	},
	Metrics: DSMetrics{
		Job: "dupsketch",
	},
	Server: DSServer{
		ListenAddr:      ":8111",
		RequestMaxBytes: bedsettings.HumanToBytesFatal("64Mi"),
	},
}

func ResetSettings() {
	Settings = bedsettings.ParseSettings(defaults, "DS", []mapstructure.DecodeHookFunc{bedsettings.HumanReadableBytesHookFunc()})
	setupLoggers(Settings)
	Sketch = &Settings.Sketch
	Store = &Settings.Store
}

func init() {
	ResetSettings()
}
