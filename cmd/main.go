/*
Copyright 2025 Kobpay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kobpay/wpayz"
	"github.com/kobpay/wpayz/config"
	"github.com/kobpay/wpayz/database"
	"github.com/kobpay/wpayz/internal/notification"
)

// Wpayz represents the CLI application, encapsulating the root Cobra command.
type Wpayz struct {
	cmd *cobra.Command
}

// wpayzInstance holds the adapter instance and its configuration for use by
// the subcommands.
type wpayzInstance struct {
	wpayz *wpayz.Wpayz
	db    database.IDataSource
	cnf   *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the adapter before any
// subcommand runs.
func preRun(app *wpayzInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("wpayz.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newWpayz, db, err := setupWpayz(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.wpayz = newWpayz
		app.db = db
		app.cnf = cnf

		return nil
	}
}

// setupWpayz connects the data source and builds the adapter instance.
func setupWpayz(cfg *config.Configuration) (*wpayz.Wpayz, database.IDataSource, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newWpayz, err := wpayz.NewWpayz(db)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating wpayz: %v", err)
	}
	return newWpayz, db, nil
}

// NewCLI creates the command-line interface for the adapter.
func NewCLI() *Wpayz {
	var configFile string
	w := &wpayzInstance{}

	var rootCmd = &cobra.Command{
		Use:   "wpayz",
		Short: "Wpayz payment provider adapter",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./wpayz.json", "Configuration file for the adapter")
	rootCmd.PersistentPreRunE = preRun(w)

	rootCmd.AddCommand(serverCommands(w))
	rootCmd.AddCommand(workerCommands(w))

	return &Wpayz{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur.
func (w Wpayz) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
