package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/config"
	"github.com/eshwanthkartitr/sih-draft/internal/loader"
	"github.com/eshwanthkartitr/sih-draft/internal/logger"
	"github.com/eshwanthkartitr/sih-draft/internal/server"
	"github.com/eshwanthkartitr/sih-draft/internal/tui"
	"github.com/eshwanthkartitr/sih-draft/internal/upload"
	"github.com/eshwanthkartitr/sih-draft/internal/views"
	"github.com/eshwanthkartitr/sih-draft/pkg/models"
)

var (
	flags     config.Flags
	imagePath string
	outDir    string
)

func main() {
	cmd := &cobra.Command{
		Use:   "sihdraft",
		Short: "Terminal 3D model viewer and image-to-model client",
		Long: `sihdraft - Terminal 3D model viewer and image-to-model client

Starts on the 2D/3D toggle, then shows the model viewer and the upload page.

Controls:
  Mouse drag  - Rotate model
  Scroll      - Zoom in/out
  +/-         - Zoom in/out
  W/S/A/D     - Pitch and yaw
  R           - Reset view
  Ctrl+R      - Retry a failed load
  O / G       - Save the model as OBJ+MTL / GLB
  P           - Save a PNG snapshot
  U / V       - Upload the --image file / view the result
  N           - Next page
  ?           - Toggle HUD overlay
  Esc, Q      - Quit`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), views.ViewToggle, "", "")
		},
	}
	flags.Register(cmd.PersistentFlags())
	cmd.Flags().StringVar(&imagePath, "image", "", "image sent to the backend from the upload page")
	cmd.Flags().StringVar(&outDir, "out", "", "directory downloads are saved to")

	appCmd := &cobra.Command{
		Use:   "app",
		Short: "Run the toggle, viewer and upload pages (the default)",
		Args:  cobra.NoArgs,
		RunE:  cmd.RunE,
	}
	appCmd.Flags().StringVar(&imagePath, "image", "", "image sent to the backend from the upload page")
	appCmd.Flags().StringVar(&outDir, "out", "", "directory downloads are saved to")

	viewCmd := &cobra.Command{
		Use:   "view [materials.mtl] <geometry.obj|model.glb>",
		Short: "Open the model viewer directly",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var materials, geometry string
			switch len(args) {
			case 1:
				geometry = args[0]
			case 2:
				materials, geometry = args[0], args[1]
			}
			return runApp(cmd.Context(), views.ViewHome, materials, geometry)
		},
	}
	viewCmd.Flags().StringVar(&outDir, "out", "", "directory downloads are saved to")

	uploadCmd := &cobra.Command{
		Use:   "upload <image>",
		Short: "Convert an image to a model and download it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), args[0])
		},
	}
	uploadCmd.Flags().StringVar(&outDir, "out", "", "directory the model files are saved to")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the placeholder image-to-model backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	infoCmd := &cobra.Command{
		Use:   "info [materials.mtl] <geometry.obj|model.glb>",
		Short: "Display model information",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			materials, geometry := "", args[0]
			if len(args) == 2 {
				materials, geometry = args[0], args[1]
			}
			return runInfo(cmd.Context(), materials, geometry)
		},
	}

	cmd.AddCommand(appCmd, viewCmd, uploadCmd, serveCmd, infoCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(&flags)
	if err != nil {
		return nil, err
	}
	if outDir != "" {
		cfg.Upload.DownloadDir = outDir
	}
	return cfg, nil
}

// runApp drives the terminal UI. Logs only go to the log file: the
// terminal belongs to the UI.
func runApp(ctx context.Context, start views.View, materials, geometry string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if geometry == "" {
		materials, geometry = cfg.Assets.MaterialsURL, cfg.Assets.GeometryURL
	}

	log := logger.New(logger.Options{
		Level: cfg.Logging.Level,
		File:  logger.DefaultFileConfig(cfg.Logging.LogFile),
	})
	defer log.Sync()

	var session *upload.Session
	client, err := upload.NewClient(cfg.Upload.Endpoint, cfg.Upload.Timeout, log)
	if err != nil {
		log.Warn("uploads disabled", zap.Error(err))
	} else {
		wsURL, err := progressURL(cfg.Upload)
		if err != nil {
			return err
		}
		session = upload.NewSession(client, upload.SessionOptions{ProgressURL: wsURL}, log)
	}

	return tui.RunTerminal(ctx, tui.Options{
		Start:       start,
		Lifecycle:   lifecycleOptions(cfg, materials, geometry),
		Loader:      loader.New(nil, log),
		Session:     session,
		ImagePath:   imagePath,
		DownloadDir: cfg.Upload.DownloadDir,
		Seed:        uint64(time.Now().UnixNano()),
		Log:         log,
	})
}

func runUpload(ctx context.Context, path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Stderr(cfg.Logging.Level, cfg.Logging.LogFile)
	defer log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	client, err := upload.NewClient(cfg.Upload.Endpoint, cfg.Upload.Timeout, log)
	if err != nil {
		return err
	}
	wsURL, err := progressURL(cfg.Upload)
	if err != nil {
		return err
	}

	session := upload.NewSession(client, upload.SessionOptions{ProgressURL: wsURL}, log)
	session.OnState(func(st loader.State, stage upload.Stage) {
		if st.Phase == loader.Loading {
			fmt.Fprintf(os.Stderr, "\r%-16s %s", stage, views.ProgressBar(st.Progress, 30))
		}
	})

	err = session.Upload(ctx, filepath.Base(path), data)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return errors.New(views.Message(err))
	}

	files, err := session.Download(ctx, cfg.Upload.DownloadDir)
	if err != nil {
		return errors.New(views.Message(err))
	}
	fmt.Printf("Saved %s and %s\n", files.OBJ, files.MTL)
	return nil
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Stderr(cfg.Logging.Level, cfg.Logging.LogFile)
	defer log.Sync()

	srv, err := server.New(server.Options{
		Addr:            cfg.Server.Addr,
		UploadDir:       cfg.Server.UploadDir,
		ProcessingDelay: cfg.Server.ProcessingDelay,
		MaxUploadBytes:  cfg.Server.MaxUploadMB << 20,
	}, log)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

func runInfo(ctx context.Context, materials, geometry string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Stderr(cfg.Logging.Level, cfg.Logging.LogFile)
	defer log.Sync()

	st, err := loader.New(nil, log).Load(ctx, materials, geometry).Wait(ctx)
	if err != nil {
		return err
	}
	if st.Phase == loader.Failed {
		return errors.New(views.Message(st.Err))
	}
	printInfo(geometry, st.Model)
	return nil
}

func printInfo(geometry string, m *models.Model) {
	mesh := m.Mesh
	size, center := mesh.Size(), mesh.Center()
	ext := strings.TrimPrefix(filepath.Ext(geometry), ".")

	fmt.Printf("File:       %s\n", filepath.Base(geometry))
	fmt.Printf("Format:     %s\n", strings.ToUpper(ext))
	fmt.Println()
	fmt.Printf("Vertices:   %d\n", mesh.VertexCount())
	fmt.Printf("Triangles:  %d\n", mesh.TriangleCount())
	fmt.Printf("Materials:  %d\n", mesh.MaterialCount())
	fmt.Println()
	fmt.Printf("Size:       %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Printf("Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)
	fmt.Printf("View scale: %.2f\n", m.Scale.X)
}
