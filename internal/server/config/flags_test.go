package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		start    Config
		expected Config
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:8081", "-r", "127.0.0.1:9090", "-store", "mongo",
				"-d", "db", "-m", "mongodb://m", "-n", "chat", "-s", "secret", "-t", "15",
				"-upload", "s3", "-o", "/tmp/up", "-u", "user", "-p", "password",
				"-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint", "-l", "debug",
			},
			expected: Config{
				EndpointAddrHTTP:            "127.0.0.1:8081",
				EndpointAddrGRPC:            "127.0.0.1:9090",
				StorageBackend:              "mongo",
				DatabaseDSN:                 "db",
				MongoURI:                    "mongodb://m",
				MongoDatabase:               "chat",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: 15 * time.Minute,
				UploadBackend:               "s3",
				UploadDir:                   "/tmp/up",
				S3RootUser:                  "user",
				S3RootPassword:              "password",
				S3Bucket:                    "bucket",
				S3Region:                    "us-west-1",
				S3BaseEndpoint:              "http://endpoint",
				LogLevel:                    "debug",
			},
		},
		{
			name:     "sub-minute ttl survives when -t is absent",
			args:     []string{"-a", ":1"},
			start:    Config{AccessTokenValidityDuration: 90 * time.Second},
			expected: Config{EndpointAddrHTTP: ":1", AccessTokenValidityDuration: 90 * time.Second},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-c", "cfg.json", "-x", "1", "-s", "k"},
			expected: Config{SecretKey: "k"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.start
			require.NoError(t, parseFlags(&cfg, tt.args))
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseFlags_BadValue(t *testing.T) {
	cfg := &Config{}
	err := parseFlags(cfg, []string{"-t", "soon"})
	require.ErrorContains(t, err, "parse flags")
}
