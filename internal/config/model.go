package config

import "time"

// Jobs are the transform keys accepted both at the top level (shared
// defaults) and on each file entry. Pointer fields are nil when the key is
// absent from the document.
type Jobs struct {
	Width        *int     `mapstructure:"width"`
	Height       *int     `mapstructure:"height"`
	ResizeFilter *string  `mapstructure:"resize_filter"`
	Blur         *float64 `mapstructure:"blur"`
	Sharpen      *int     `mapstructure:"sharpen"`
	Contrast     *float64 `mapstructure:"contrast"`
	Brighten     *int     `mapstructure:"brighten"`
	HueRotate    *int     `mapstructure:"huerotate"`

	FlipV     bool `mapstructure:"flipv"`
	FlipH     bool `mapstructure:"fliph"`
	Rotate90  bool `mapstructure:"rotate90"`
	Rotate180 bool `mapstructure:"rotate180"`
	Rotate270 bool `mapstructure:"rotate270"`
	Grayscale bool `mapstructure:"grayscale"`
	Invert    bool `mapstructure:"invert"`
}

type FileEntry struct {
	Path   string `mapstructure:"path"`
	Output string `mapstructure:"output"` // derived from Path when empty
	Jobs   `mapstructure:",squash"`
}

// Mirror configures uploading outputs to an S3-compatible bucket.
type Mirror struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Events configures publishing processed-image events to Kafka.
type Events struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Config struct {
	Jobs  `mapstructure:",squash"`
	Files []FileEntry `mapstructure:"files"`

	PollInterval time.Duration `mapstructure:"poll_interval"`
	Notify       bool          `mapstructure:"notify"`
	JPEGQuality  int           `mapstructure:"jpeg_quality"`
	StateDB      string        `mapstructure:"state_db"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`
	APIAddr      string        `mapstructure:"api_addr"`

	Mirror Mirror `mapstructure:"mirror"`
	Events Events `mapstructure:"events"`
}
