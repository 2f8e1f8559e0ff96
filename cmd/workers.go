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
	"context"
	"log"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/kobpay/wpayz"
	"github.com/kobpay/wpayz/config"
	trace "github.com/kobpay/wpayz/internal/traces"
)

func initializeWorkerServer(conf *config.Configuration) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{Addr: conf.Redis.Dns},
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				wpayz.SETTLEMENT_QUEUE: 3,
			},
		},
	)
}

// workerCommands defines the "workers" command. The workers drain the
// settlement queue and deliver notifications to the back office.
func workerCommands(w *wpayzInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start wpayz workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			shutdown, err := trace.SetupTracing(ctx, conf.ProjectName+"-workers", conf.Otel.Endpoint)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("Error during tracing shutdown: %v", err)
				}
			}()

			srv := initializeWorkerServer(conf)

			mux := asynq.NewServeMux()
			mux.HandleFunc(wpayz.SETTLEMENT_QUEUE, wpayz.ProcessSettlement)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
