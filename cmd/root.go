// This file is part of site-backup
//
// Copyright (C) 2026  SiteOps
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>

package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/siteops/site-backup/pkg/siteapi"
)

var (
	cfgFile string
	siteID  string
	envID   string
	debug   bool
	logger  *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "site-backup",
	Short: "Backup catalog client for the hosting platform.",
	Long:  `site-backup lists the backups of a hosted environment, resolves signed download urls and dispatches restore workflows.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cmd.Help(); err != nil {
			fmt.Println(err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if debug {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.site-backup.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug (default is false)")
	rootCmd.PersistentFlags().StringVar(&siteID, "site", "", "the site to operate on")
	rootCmd.PersistentFlags().StringVar(&envID, "env", "", "the environment to operate on")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	newLogger := zap.NewProduction
	if debug {
		newLogger = zap.NewDevelopment
	}
	var err error
	if logger, err = newLogger(); err != nil {
		panic(err)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}

		// Search config in home directory with name ".site-backup" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".site-backup")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logger.Info("Using config file: " + viper.ConfigFileUsed())
	}

	if siteID == "" {
		siteID = viper.GetString("site")
	}
	if envID == "" {
		envID = viper.GetString("environment")
	}
}

// newAPIClient builds the API client from flags and config.
func newAPIClient() (*siteapi.Client, error) {
	httpc := &http.Client{
		Transport: siteapi.Transport(siteapi.TransportOptions{
			Connect:        30 * time.Second,
			ConnKeepAlive:  30 * time.Second,
			ResponseHeader: 10 * time.Second,
			TLSHandshake:   10 * time.Second,
			MaxElapsedTime: 30 * time.Second,
		}),
	}

	opts := []siteapi.ClientOption{
		siteapi.WithHTTPClient(httpc),
		siteapi.WithSiteID(siteID),
		siteapi.WithEnvironment(envID),
		siteapi.WithLogger(logger),
	}
	if serverURL := viper.GetString("server_url"); serverURL != "" {
		opts = append(opts, siteapi.WithServerURL(serverURL))
	}
	if host := viper.GetString("host"); host != "" {
		opts = append(opts, siteapi.WithHost(host))
	}
	if token := viper.GetString("session_token"); token != "" {
		opts = append(opts, siteapi.WithSessionToken(token))
	}
	return siteapi.NewClient(opts...)
}
