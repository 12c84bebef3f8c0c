package main

import (
	"testing"

	"github.com/pasuper/supercron/pkg/config"
)

func TestFTPConfigsUseTheirOwnHosts(t *testing.T) {
	cfg := &config.Config{
		FTP: config.FTPConfig{
			Hostname: "ftp.pasuper.local",
			Username: "inventory",
			Password: "inv-secret",
			Port:     21,
		},
		ESL: config.ESLConfig{
			Hostname: "esl-ftp.pasuper.local",
			Username: "esl",
			Password: "esl-secret",
			Port:     2121,
		},
	}

	store := storeFTPConfig(cfg)
	if store.Hostname != "ftp.pasuper.local" || store.Username != "inventory" ||
		store.Password != "inv-secret" || store.Port != 21 {
		t.Errorf("store FTP config = %+v, want company FTP settings", store)
	}

	label := labelFTPConfig(cfg)
	if label.Hostname != "esl-ftp.pasuper.local" || label.Username != "esl" ||
		label.Password != "esl-secret" || label.Port != 2121 {
		t.Errorf("label FTP config = %+v, want ESL FTP settings", label)
	}
}
