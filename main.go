package main

import (
	"flag"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
	"github.com/prebid/tcstring/config"
	"github.com/prebid/tcstring/router"
	"github.com/prebid/tcstring/server"
	"github.com/spf13/viper"
)

// Rev holds binary revision string
// Set manually at build time using:
//    go build -ldflags "-X main.Rev=`git rev-parse --short HEAD`"
var Rev string

// Version is the release the binary was built from. Set it at build time the same way as Rev.
var Version string

func main() {
	flag.Parse() // required for glog flags and testing package flags

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	serve(Version, Rev, cfg)
}

const configFileName = "tcstring"

// envFilePattern matches the dotenv files whose TCS_ variables are loaded before the configuration.
// Variables already present in the environment win.
const envFilePattern = "config/*.env"

func loadConfig() (*config.Configuration, error) {
	if envFiles, _ := filepath.Glob(envFilePattern); len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			glog.Warningf("Failed to load env files %v: %v", envFiles, err)
		}
	}

	v := viper.New()
	config.SetupViper(v, configFileName)
	return config.New(v)
}

func serve(version, revision string, cfg *config.Configuration) {
	r := router.New(cfg, version, revision)
	corsRouter := router.SupportCORS(r)
	server.Listen(cfg, router.NoCache{Handler: corsRouter}, router.Admin(version, revision), r.MetricsEngine)
}
