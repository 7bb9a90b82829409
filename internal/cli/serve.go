package cli

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve WebVTT captions for stored clips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			dataDir, _ := cmd.Flags().GetString("data")
			maxWords, _ := cmd.Flags().GetInt("max-words")

			log, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			srv := server.New(
				server.NewDirSource(dataDir),
				captions.Options{MaxWordsPerLine: maxWords},
				log,
			)
			log.Info("caption server listening", zap.String("addr", addr))
			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			return httpSrv.ListenAndServe()
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().String("data", "data/clips", "Directory of <clipID>.json transcript files")
	cmd.Flags().Int("max-words", captions.DefaultMaxWordsPerLine, "Max words per caption line")
	return cmd
}
