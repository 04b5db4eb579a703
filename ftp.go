package main

import (
	"crypto/tls"
	"errors"

	ftpserver "github.com/fclairamb/ftpserverlib"
	log "github.com/fclairamb/go-log"
	"github.com/spf13/afero"
)

var errBadCredentials = errors.New("bad credentials")

// FTPServer is the ftpserverlib main driver handing every authenticated
// client the card filesystem.
type FTPServer struct {
	Settings   *ftpserver.Settings
	FileSystem afero.Fs
	User       string
	Pass       string
	Logger     log.Logger
}

var _ ftpserver.MainDriver = (*FTPServer)(nil)

func (s *FTPServer) GetSettings() (*ftpserver.Settings, error) {
	return s.Settings, nil
}

func (s *FTPServer) ClientConnected(cc ftpserver.ClientContext) (string, error) {
	s.Logger.Info("Client connected", "clientId", cc.ID(), "remoteAddr", cc.RemoteAddr())
	return "sdfatfs card server", nil
}

func (s *FTPServer) ClientDisconnected(cc ftpserver.ClientContext) {
	s.Logger.Info("Client disconnected", "clientId", cc.ID())
}

// AuthUser accepts anyone when no user is configured.
func (s *FTPServer) AuthUser(cc ftpserver.ClientContext, user, pass string) (ftpserver.ClientDriver, error) {
	if s.User != "" && (user != s.User || pass != s.Pass) {
		s.Logger.Warn("Authentication failed", "user", user)
		return nil, errBadCredentials
	}
	return s.FileSystem, nil
}

func (s *FTPServer) GetTLSConfig() (*tls.Config, error) {
	return nil, errors.New("TLS is not configured")
}
