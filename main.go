package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ftpserver "github.com/fclairamb/ftpserverlib"
	log "github.com/fclairamb/go-log"
	gologrus "github.com/fclairamb/go-log/logrus"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/OffBroadway/sdfatfs/pkg/cardfs"
	"github.com/OffBroadway/sdfatfs/pkg/diskio"
	"github.com/OffBroadway/sdfatfs/pkg/sdcard"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	fmt.Println("Done!")
}

func newLogger(debug bool) log.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return gologrus.NewWrap(l)
}

// openDisk opens the card image and builds the diskio adapter for it.
func openDisk(fs afero.Fs, cfg *config, logger log.Logger) (*sdcard.ImageCard, *diskio.Disk, error) {
	if cfg.CreateBlock > 0 {
		if _, err := fs.Stat(cfg.Image); os.IsNotExist(err) {
			logger.Info("Creating image", "path", cfg.Image, "blocks", cfg.CreateBlock)
			if err := sdcard.CreateImage(fs, cfg.Image, uint32(cfg.CreateBlock)); err != nil {
				return nil, nil, err
			}
		}
	}

	cardOpts := []sdcard.ImageOption{
		sdcard.WithBusyPolls(cfg.BusyPolls),
		sdcard.WithImageLogger(logger.With("component", "sdcard")),
	}
	if cfg.MultiBlock {
		cardOpts = append(cardOpts, sdcard.WithMultiBlock())
	}
	card, err := sdcard.OpenImage(fs, cfg.Image, cardOpts...)
	if err != nil {
		return nil, nil, err
	}

	diskOpts := []diskio.Option{
		diskio.WithTimeout(cfg.Timeout),
		diskio.WithWaiter(diskio.PollWaiter{Interval: cfg.PollInterval, Timeout: cfg.PollTimeout}),
		diskio.WithLogger(logger.With("component", "diskio")),
	}
	if cfg.ReadOnly {
		diskOpts = append(diskOpts, diskio.WithReadOnly())
	}
	if cfg.StrictIoctl {
		diskOpts = append(diskOpts, diskio.WithStrictIoctl())
	}
	return card, diskio.New(card, diskOpts...), nil
}

func run(cfg *config) error {
	logger := newLogger(cfg.Debug)

	card, disk, err := openDisk(afero.NewOsFs(), cfg, logger)
	if err != nil {
		return err
	}
	defer card.Close()

	pdrv := uint8(cfg.Drive)
	diskio.RegisterBlockDevice(pdrv, disk)
	defer diskio.UnregisterBlockDevice(pdrv)

	if res := disk.Initialize(pdrv); res != diskio.ResultOK {
		return errors.Wrapf(res, "initialize drive %d", pdrv)
	}
	logger.Info("Card ready", "drive", pdrv,
		"sectors", disk.SectorCount(), "sectorSize", disk.SectorSize())

	fs := cardfs.New(diskio.Default(), logger.With("component", "cardfs"))
	errCh := make(chan error, 2)

	var ftpSrv *ftpserver.FtpServer
	if cfg.FTPAddr != "" {
		ftpSrv = ftpserver.NewFtpServer(&FTPServer{
			Settings: &ftpserver.Settings{
				ListenAddr: cfg.FTPAddr,
			},
			FileSystem: fs,
			User:       cfg.User,
			Pass:       cfg.Pass,
			Logger:     logger.With("component", "ftp"),
		})
		ftpSrv.Logger = logger.With("component", "ftpserver")
		go func() {
			errCh <- errors.Wrap(ftpSrv.ListenAndServe(), "ftp")
		}()
	}

	var davSrv *http.Server
	if cfg.WebDAVAddr != "" {
		ln, err := net.Listen("tcp", cfg.WebDAVAddr)
		if err != nil {
			return errors.Wrap(err, "webdav listen")
		}
		davSrv = newWebDAVServer(fs, os.Stdout)
		logger.Info("Serving WebDAV", "addr", ln.Addr().String(), "prefix", webdavPrefix)
		go func() {
			err := davSrv.Serve(ln)
			if err == http.ErrServerClosed {
				err = nil
			}
			errCh <- errors.Wrap(err, "webdav")
		}()
	}

	// Handle SIGINT and SIGTERM.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		logger.Info("Shutting down", "signal", s.String())
	case err = <-errCh:
	}

	if ftpSrv != nil {
		if stopErr := ftpSrv.Stop(); stopErr != nil {
			logger.Warn("FTP stop", "err", stopErr)
		}
	}
	if davSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if stopErr := davSrv.Shutdown(ctx); stopErr != nil {
			logger.Warn("WebDAV shutdown", "err", stopErr)
		}
	}
	return err
}
