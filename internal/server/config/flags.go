package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
)

var knownFlags = []string{
	"-a", "-r", "-store", "-d", "-m", "-n", "-s", "-t", "-upload", "-o",
	"-u", "-p", "-b", "-g", "-e", "-l",
}

// parseFlags overlays values from command-line flags.
//
//	-a string      HTTP bind address
//	-r string      gRPC health bind address
//	-store string  storage backend: postgres, mongo or memory
//	-d string      PostgreSQL DSN
//	-m string      MongoDB URI
//	-n string      MongoDB database name
//	-s string      JWT HMAC secret key
//	-t int         access token validity, minutes
//	-upload string upload backend: local or s3
//	-o string      local upload directory
//	-u, -p string  S3 credentials
//	-b string      S3 bucket
//	-g string      S3 region
//	-e string      S3 base endpoint
//	-l string      log level
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "r", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.StorageBackend, "store", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.StringVar(&config.UploadBackend, "upload", config.UploadBackend, "upload backend")
	fs.StringVar(&config.UploadDir, "o", config.UploadDir, "upload directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
		}
	})

	return nil
}
