package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/denisbrodbeck/machineid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/srand/beam/worker/pkg/log"
	"github.com/srand/beam/worker/pkg/plasma"
	"github.com/srand/beam/worker/pkg/protocol"
	"github.com/srand/beam/worker/pkg/rpc"
	"github.com/srand/beam/worker/pkg/store"
	"github.com/srand/beam/worker/pkg/transport"
	"github.com/srand/beam/worker/pkg/utils"
	"golang.org/x/sync/errgroup"
)

var config *Config

var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "Beam remote task execution worker",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		viper.SetEnvPrefix("beam")
		viper.AutomaticEnv()

		viper.SetConfigName("worker.yaml")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/beam/")
		viper.AddConfigPath("$HOME/.config/beam")
		viper.AddConfigPath(".")

		viper.ReadInConfig()

		var err error
		if config, err = LoadConfig(); err != nil {
			log.Fatal(err)
		}

		verbosity, err := cmd.Flags().GetCount("verbose")
		if err != nil {
			panic(err)
		}

		switch {
		case verbosity >= 2:
			log.SetLevel(log.TraceLevel)
		case verbosity >= 1:
			log.SetLevel(log.DebugLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.Validate(); err != nil {
			log.Fatal(err)
		}
		config.Log()

		workerId, err := machineid.ProtectedID("beam-worker")
		if err != nil {
			log.Fatal(err)
		}

		// Create filesystem storage for spilled objects.
		var fs afero.Fs
		if config.PlasmaDir != "" {
			fs = afero.NewBasePathFs(afero.NewOsFs(), config.PlasmaDir)
		} else {
			log.Warn("No plasma directory configured, spilling to memory")
			fs = afero.NewMemMapFs()
		}

		spill, err := plasma.NewFileStore(fs)
		if err != nil {
			log.Fatal(err)
		}

		memoryStore := store.NewMemoryStore(spill.Put)

		// Connect to the scheduler's lease service.
		conn, err := rpc.Dial(config.SchedulerGrpcUri, &config.Grpc)
		if err != nil {
			log.Fatal(err)
		}

		leaseClient := rpc.NewLeaseClient(conn)

		submitter := transport.NewDirectTaskSubmitter(memoryStore, leaseClient,
			func(addr protocol.WorkerAddress) transport.CoreWorkerClient {
				workerConn, err := rpc.DialWorker(addr, &config.Grpc)
				if err != nil {
					log.Fatal(err)
				}
				return rpc.NewCoreWorkerClient(workerConn)
			})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eg, ctx := errgroup.WithContext(ctx)

		// Forward granted leases to the submitter.
		eg.Go(func() error {
			return rpc.WatchLeases(ctx, conn, workerId, submitter.HandleWorkerLeaseGranted)
		})

		// Serve statistics over HTTP.
		for _, uri := range config.ListenHttp {
			host, err := utils.ParseHttpUrl(uri)
			if err != nil {
				log.Fatal(err)
			}

			log.Info("Listening on http", host)

			r := echo.New()
			r.HideBanner = true
			r.Use(utils.HttpLogger)
			newHttpHandler(memoryStore, submitter, spill, r)

			eg.Go(func() error {
				return http.ListenAndServe(host, r)
			})
		}

		if err := eg.Wait(); err != nil && ctx.Err() == nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.Flags().StringSliceP("listen-http", "l", []string{"tcp://:8080"}, "Addresses to listen on for HTTP connections")
	rootCmd.Flags().StringP("scheduler", "s", "", "URI of the scheduler lease service")
	rootCmd.Flags().CountP("verbose", "v", "Verbosity (repeatable)")

	viper.BindPFlag("listen_http", rootCmd.Flags().Lookup("listen-http"))
	viper.BindPFlag("scheduler_grpc_uri", rootCmd.Flags().Lookup("scheduler"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
