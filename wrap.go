package main

import (
	"io"
	stdlog "log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/spf13/afero"
	"golang.org/x/net/webdav"

	"github.com/OffBroadway/sdfatfs/pkg/cardfs"
)

const webdavPrefix = "/mount"

func newHandler(fs webdav.FileSystem, prefix string, access io.Writer) http.Handler {
	h := &webdav.Handler{
		Prefix:     prefix,
		FileSystem: fs,
		LockSystem: webdav.NewMemLS(),
	}
	return handlers.LoggingHandler(access, h)
}

func newWebDAVServer(fs afero.Fs, access io.Writer) *http.Server {
	return &http.Server{
		Handler:  newHandler(cardfs.AsWebDAV(fs), webdavPrefix, access),
		ErrorLog: stdlog.New(access, "http: ", stdlog.LstdFlags),
	}
}
